package report

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FilenameLayout is the timestamp prefix of generated output names.
const FilenameLayout = "2006-01-02T150405"

// Filename returns "<time>_<station>_<name>_<uuid>.dat". Empty station or
// name parts are skipped; path separators and spaces become '-'.
func Filename(station, name string, now time.Time) string {
	parts := []string{now.Format(FilenameLayout)}
	for _, p := range []string{station, name} {
		if p = sanitize(p); p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, uuid.NewString())
	return strings.Join(parts, "_") + ".dat"
}

func sanitize(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', '\t', ':':
			return '-'
		}
		return r
	}, s)
}
