package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultTimestampColumn is the logger timestamp column name.
	DefaultTimestampColumn = "TIMESTAMP"
	// DefaultTimestampLayout is the logger timestamp layout.
	DefaultTimestampLayout = "2006-01-02 15:04:05"

	toa5Marker = "TOA5"
)

// DefaultExcludedColumns are logger housekeeping columns that never hold
// channel readings.
var DefaultExcludedColumns = []string{
	"TIMESTAMP",
	"RECORD",
	"BattV_Min",
	"PTemp_C_Avg",
	"Temp_Avg",
	"Temp",
	"PTemp",
}

// Table is a parsed logger export. All values are kept as text until a
// column is extracted.
type Table struct {
	FileInfo []string // TOA5 environment line, empty for plain files
	Header   []string
	Units    []string // TOA5 units line, empty for plain files
	Rows     [][]string

	timestampColumn string
	timestampLayout string
	index           map[string]int
}

type readConfig struct {
	delimiter       rune
	headerRow       int
	timestampColumn string
	timestampLayout string
}

// ReadOption configures Read.
type ReadOption func(*readConfig)

// WithDelimiter sets the field delimiter. Default ','.
func WithDelimiter(d rune) ReadOption {
	return func(cfg *readConfig) {
		if d != 0 {
			cfg.delimiter = d
		}
	}
}

// WithHeaderRow sets the zero-based line holding column names for plain
// (non-TOA5) files. Lines before it are skipped.
func WithHeaderRow(row int) ReadOption {
	return func(cfg *readConfig) {
		if row >= 0 {
			cfg.headerRow = row
		}
	}
}

// WithTimestamp sets the timestamp column name and layout.
func WithTimestamp(column, layout string) ReadOption {
	return func(cfg *readConfig) {
		if column != "" {
			cfg.timestampColumn = column
		}
		if layout != "" {
			cfg.timestampLayout = layout
		}
	}
}

// Read parses a logger export.
func Read(r io.Reader, opts ...ReadOption) (*Table, error) {
	cfg := readConfig{
		delimiter:       ',',
		timestampColumn: DefaultTimestampColumn,
		timestampLayout: DefaultTimestampLayout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	cr := csv.NewReader(r)
	cr.Comma = cfg.delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading delimited records")
	}
	if len(records) == 0 {
		return nil, errors.New("empty input")
	}

	t := &Table{
		timestampColumn: cfg.timestampColumn,
		timestampLayout: cfg.timestampLayout,
	}

	if len(records[0]) > 0 && strings.TrimSpace(records[0][0]) == toa5Marker {
		if len(records) < 4 {
			return nil, errors.Errorf("TOA5 preamble truncated: %d lines", len(records))
		}
		t.FileInfo = records[0]
		t.Header = trimAll(records[1])
		t.Units = records[2]
		t.Rows = records[4:]
	} else {
		if cfg.headerRow >= len(records) {
			return nil, errors.Errorf("header row %d beyond end of input (%d lines)", cfg.headerRow, len(records))
		}
		t.Header = trimAll(records[cfg.headerRow])
		t.Rows = records[cfg.headerRow+1:]
	}

	t.index = make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		if _, dup := t.index[name]; dup {
			return nil, errors.Errorf("duplicate column %q", name)
		}
		t.index[name] = i
	}

	return t, nil
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// Columns returns the column names in file order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.Header...)
}

// Channels returns the columns not listed in exclude.
func (t *Table) Channels(exclude []string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[name] = true
	}

	var out []string
	for _, name := range t.Header {
		if !skip[name] {
			out = append(out, name)
		}
	}
	return out
}

// HasColumn reports whether name is a column of t.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// DeleteRows removes the data rows at the given positions and returns the
// number removed. Out-of-range and repeated positions are ignored.
func (t *Table) DeleteRows(rows ...int) int {
	drop := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r >= 0 && r < len(t.Rows) {
			drop[r] = true
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := t.Rows[:0]
	for i, row := range t.Rows {
		if !drop[i] {
			kept = append(kept, row)
		}
	}
	t.Rows = kept
	return len(drop)
}

func (t *Table) field(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

// Float64s parses a column. Empty and "NAN" fields become NaN; any other
// unparsable field is an error.
func (t *Table) Float64s(name string) ([]float64, error) {
	col, ok := t.index[name]
	if !ok {
		return nil, errors.Errorf("unknown column %q", name)
	}

	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		f := t.field(row, col)
		if f == "" || strings.EqualFold(f, "nan") {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q row %d", name, i)
		}
		out[i] = v
	}
	return out, nil
}

// Timestamps parses the timestamp column. Rows whose timestamp is empty or
// unparsable are returned in bad and get the zero time.
func (t *Table) Timestamps() (ts []time.Time, bad []int, err error) {
	col, ok := t.index[t.timestampColumn]
	if !ok {
		return nil, nil, errors.Errorf("timestamp column %q not found", t.timestampColumn)
	}

	ts = make([]time.Time, len(t.Rows))
	for i, row := range t.Rows {
		v, perr := time.Parse(t.timestampLayout, t.field(row, col))
		if perr != nil {
			bad = append(bad, i)
			continue
		}
		ts[i] = v
	}
	return ts, bad, nil
}

// Readings holds one channel pair extracted from a table. Row[i] is the
// data row that produced Up[i] and Down[i].
type Readings struct {
	Pair    ChannelPair
	Up      []float64
	Down    []float64
	Row     []int
	Dropped []int
}

// Extract returns the readings of pair, skipping rows where either channel
// is missing or not finite. Skipped rows are listed in Dropped.
func (t *Table) Extract(pair ChannelPair) (Readings, error) {
	up, err := t.Float64s(pair.Up)
	if err != nil {
		return Readings{}, errors.Wrap(err, "up channel")
	}
	down, err := t.Float64s(pair.Down)
	if err != nil {
		return Readings{}, errors.Wrap(err, "down channel")
	}

	rd := Readings{Pair: pair}
	for i := range up {
		if !finite(up[i]) || !finite(down[i]) {
			rd.Dropped = append(rd.Dropped, i)
			continue
		}
		rd.Up = append(rd.Up, up[i])
		rd.Down = append(rd.Down, down[i])
		rd.Row = append(rd.Row, i)
	}
	sort.Ints(rd.Dropped)
	return rd, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
