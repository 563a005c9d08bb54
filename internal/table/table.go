// Package table reads and writes the keyword CSV files kwvolume enriches.
//
// A Table keeps the header and every row exactly as read. Only the
// search-volume column is ever changed by callers, and rows are never
// reordered or dropped.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column names recognised in the input header.
const (
	KeywordColumn      = "Keyword"
	SearchVolumeColumn = "Search Volume"
)

// utf8BOM is stripped from the first header cell so spreadsheet exports match.
const utf8BOM = "\ufeff"

// Table is a header plus ordered rows, with the positions of the keyword and
// search-volume columns resolved.
type Table struct {
	Header []string
	Rows   [][]string

	// KeywordIndex is the position of the keyword column.
	KeywordIndex int
	// VolumeIndex is the position of the search-volume column, or -1.
	VolumeIndex int
}

// HasVolumeColumn reports whether the search-volume column is present.
func (t *Table) HasVolumeColumn() bool {
	return t.VolumeIndex >= 0
}

// Keywords returns the keyword of every row in row order, duplicates included.
func (t *Table) Keywords() []string {
	keywords := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		keywords[i] = row[t.KeywordIndex]
	}
	return keywords
}

// AppendVolumeColumn adds the search-volume column to the header and fills
// each row with values[i]. It is a no-op returning false when the column
// already exists.
func (t *Table) AppendVolumeColumn(values []string) (bool, error) {
	if t.HasVolumeColumn() {
		return false, nil
	}
	if len(values) != len(t.Rows) {
		return false, fmt.Errorf("got %d values for %d rows", len(values), len(t.Rows))
	}

	t.Header = append(t.Header, SearchVolumeColumn)
	t.VolumeIndex = len(t.Header) - 1
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], values[i])
	}
	return true, nil
}

// Load parses CSV from r. The first record is the header and must contain a
// keyword column; every following record must have the header's field count.
func Load(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: input is empty", ErrNoKeywordColumn)
		}
		return nil, toParseError(err, 1)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	t := &Table{
		Header:       header,
		KeywordIndex: indexOf(header, KeywordColumn),
		VolumeIndex:  indexOf(header, SearchVolumeColumn),
	}
	if t.KeywordIndex < 0 {
		return nil, fmt.Errorf("%w: found columns %q", ErrNoKeywordColumn, header)
	}

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, toParseError(readErr, len(t.Rows)+2)
		}
		t.Rows = append(t.Rows, record)
	}

	return t, nil
}

// LoadFile opens path and parses it with Load.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open input file", Path: path, Err: err}
	}
	defer f.Close()

	return Load(f)
}

// toParseError converts csv reader errors into ParseError, preferring the
// line number the csv package reports.
func toParseError(err error, fallbackLine int) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &ParseError{Line: csvErr.StartLine, Err: csvErr.Err}
	}
	return &ParseError{Line: fallbackLine, Err: err}
}

func indexOf(header []string, name string) int {
	for i, col := range header {
		if col == name {
			return i
		}
	}
	return -1
}
