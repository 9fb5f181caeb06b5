package io

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/praxa/docsegment/internal/errors"
)

// Table is a raw loaded table: header plus string-valued rows in load
// order. Values are untouched by the loader; sentinel substitution and
// typing are the cleaner's contract.
type Table struct {
	Name        string
	Header      []string
	Rows        [][]string
	Fingerprint uint64

	index map[string]int
}

// ColumnIndex returns the position of the named column, or -1 when absent.
func (t *Table) ColumnIndex(name string) int {
	if idx, ok := t.index[name]; ok {
		return idx
	}
	return -1
}

// Value returns the cell at (row, column name). The column must exist;
// short rows yield the empty string.
func (t *Table) Value(row int, name string) string {
	idx := t.ColumnIndex(name)
	if idx < 0 || idx >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][idx]
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// RequireColumns fails with a SchemaError when any named column is
// missing from the header.
func (t *Table) RequireColumns(op string, names ...string) error {
	for _, name := range names {
		if t.ColumnIndex(name) < 0 {
			return errors.NewMissingColumnError(op, t.Name, name)
		}
	}
	return nil
}

// Read loads the table, fingerprinting the raw bytes before parsing.
func (r *TableReader) Read() (*Table, error) {
	data, err := io.ReadAll(r.reader)
	if err != nil {
		return nil, errors.NewInternalError("ReadTable", fmt.Errorf("reading %s: %w", r.name, err))
	}

	digest := xxhash.Sum64(data)

	csvReader := csv.NewReader(bytes.NewReader(data))
	csvReader.Comma = r.options.Delimiter
	csvReader.Comment = r.options.Comment
	csvReader.TrimLeadingSpace = r.options.SkipInitialSpace

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.NewSchemaError("ReadTable", r.name, "",
			fmt.Sprintf("parsing CSV: %v", err))
	}

	if len(records) == 0 {
		return nil, errors.NewSchemaError("ReadTable", r.name, "", "empty input: no header row")
	}

	var header []string
	var rows [][]string

	if r.options.Header {
		header = records[0]
		rows = records[1:]
	} else {
		numCols := len(records[0])
		header = make([]string, numCols)
		for i := range numCols {
			header[i] = fmt.Sprintf("column_%d", i)
		}
		rows = records
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	return &Table{
		Name:        r.name,
		Header:      header,
		Rows:        rows,
		Fingerprint: digest,
		index:       index,
	}, nil
}

// ReadTableFile loads one raw table from a CSV file on disk.
func ReadTableFile(path, name string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInternalError("ReadTableFile", fmt.Errorf("opening %s: %w", path, err))
	}
	defer f.Close()

	return NewTableReader(f, name, DefaultCSVOptions()).Read()
}
