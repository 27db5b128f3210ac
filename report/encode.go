package report

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format selects the encoding of a Calibration.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat accepts "yaml", "yml" and "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.Errorf("unknown report format %q", s)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	if f == FormatJSON {
		return ".json"
	}
	return ".yaml"
}

// Encode writes cal to w.
func Encode(w io.Writer, cal Calibration, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cal); err != nil {
			return errors.Wrap(err, "encoding yaml report")
		}
		return errors.Wrap(enc.Close(), "flushing yaml report")
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(cal), "encoding json report")
	}
	return errors.Errorf("unknown report format %q", string(format))
}

// Decode reads a Calibration written by Encode.
func Decode(r io.Reader, format Format) (Calibration, error) {
	var cal Calibration
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&cal); err != nil {
			return Calibration{}, errors.Wrap(err, "decoding yaml report")
		}
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&cal); err != nil {
			return Calibration{}, errors.Wrap(err, "decoding json report")
		}
	default:
		return Calibration{}, errors.Errorf("unknown report format %q", string(format))
	}
	return cal, nil
}
