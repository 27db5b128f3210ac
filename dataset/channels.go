package dataset

import (
	"strconv"
	"strings"
)

// ChannelPair matches an up-looking column with its down-looking twin.
type ChannelPair struct {
	Up     string
	Down   string
	Suffix string // shared name part after the Up_/Dw_ prefix, e.g. "630_1"
	// WavelengthNM is the leading numeric token of Suffix, or 0.
	WavelengthNM int
}

// Name returns a short label for the pair.
func (p ChannelPair) Name() string {
	return p.Suffix
}

// channelPrefix splits "Up_630_1" into ("up", "630_1").
func channelPrefix(name string) (prefix, suffix string, ok bool) {
	i := strings.IndexByte(name, '_')
	if i <= 0 || i == len(name)-1 {
		return "", "", false
	}
	switch p := strings.ToLower(name[:i]); p {
	case "up", "dw":
		return p, name[i+1:], true
	}
	return "", "", false
}

// PairChannels pairs Up_<suffix> columns with Dw_<suffix> columns. The
// prefix match is case-insensitive, the suffix match is exact. Pairs are
// returned in the order of their up column; columns without a twin (or
// without an Up/Dw prefix) are returned in unmatched, in input order.
func PairChannels(names []string) (pairs []ChannelPair, unmatched []string) {
	downs := make(map[string]string)
	for _, name := range names {
		if p, s, ok := channelPrefix(name); ok && p == "dw" {
			if _, dup := downs[s]; !dup {
				downs[s] = name
			}
		}
	}

	used := make(map[string]bool)
	for _, name := range names {
		p, s, ok := channelPrefix(name)
		if !ok || p != "up" || used[name] {
			continue
		}
		down, found := downs[s]
		if !found || used[down] {
			continue
		}
		used[name] = true
		used[down] = true
		pairs = append(pairs, ChannelPair{
			Up:           name,
			Down:         down,
			Suffix:       s,
			WavelengthNM: leadingNumber(s),
		})
	}

	for _, name := range names {
		if !used[name] {
			unmatched = append(unmatched, name)
		}
	}
	return pairs, unmatched
}

func leadingNumber(s string) int {
	tok := s
	if i := strings.IndexByte(s, '_'); i >= 0 {
		tok = s[:i]
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
