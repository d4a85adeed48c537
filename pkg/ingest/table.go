package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ritzau/dystonia-kg/pkg/model"
)

// naTokens are the cell spellings read as missing values, matching the
// default NA set of the tools that produced the source tables.
var naTokens = map[string]bool{
	"": true, "#N/A": true, "#N/A N/A": true, "#NA": true, "-1.#IND": true,
	"-1.#QNAN": true, "-NaN": true, "-nan": true, "1.#IND": true, "1.#QNAN": true,
	"<NA>": true, "N/A": true, "NA": true, "NULL": true, "NaN": true,
	"None": true, "n/a": true, "nan": true, "null": true,
}

// Table is a parsed CSV file with per-column typed values.
type Table struct {
	Path   string
	Header []string
	Rows   [][]model.Value
	Raw    [][]string
	Lines  []int // source line of each row
	Kinds  []model.Kind
	index  map[string]int
}

// Index returns the position of a column, or -1.
func (t *Table) Index(column string) int {
	if i, ok := t.index[column]; ok {
		return i
	}
	return -1
}

// Text returns the raw cell text, "" for missing cells.
func (t *Table) Text(row, col int) string {
	cell := t.Raw[row][col]
	if isNA(cell) {
		return ""
	}
	return cell
}

// ReadTable opens and parses a CSV file.
func ReadTable(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	t, err := ParseTable(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

// ParseTable reads a header row followed by data rows. Column types are
// inferred over the whole column: integers, then floats, then booleans,
// falling back to strings. An integer column with missing cells becomes a
// float column.
func ParseTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // short rows are padded with missing cells

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty file", model.ErrMalformedTable)
		}
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedTable, err)
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var raw [][]string
	var lines []int
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", model.ErrMalformedTable, err)
		}
		line, _ := reader.FieldPos(0)
		if len(record) > len(header) {
			return nil, fmt.Errorf("%w: line %d: expected %d fields, saw %d",
				model.ErrMalformedTable, line, len(header), len(record))
		}
		row := make([]string, len(header))
		copy(row, record)
		for i := len(record); i < len(header); i++ {
			row[i] = ""
		}
		raw = append(raw, row)
		lines = append(lines, line)
	}

	t := &Table{
		Header: header,
		Raw:    raw,
		Lines:  lines,
		Kinds:  make([]model.Kind, len(header)),
		index:  make(map[string]int, len(header)),
	}
	for i, col := range header {
		if _, dup := t.index[col]; !dup {
			t.index[col] = i
		}
		t.Kinds[i] = inferKind(raw, i)
	}

	t.Rows = make([][]model.Value, len(raw))
	for r, row := range raw {
		values := make([]model.Value, len(header))
		for c, cell := range row {
			values[c] = convert(cell, t.Kinds[c])
		}
		t.Rows[r] = values
	}

	return t, nil
}

func isNA(cell string) bool {
	return naTokens[cell]
}

func inferKind(rows [][]string, col int) model.Kind {
	allInt, allFloat, allBool := true, true, true
	seen, missing := false, false

	for _, row := range rows {
		cell := row[col]
		if isNA(cell) {
			missing = true
			continue
		}
		seen = true
		if allInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat && !isFloat(cell) {
			allFloat = false
		}
		if allBool && !isBool(cell) {
			allBool = false
		}
	}

	switch {
	case !seen:
		return model.KindFloat // an all-missing column holds only missing values
	case allInt && !missing:
		return model.KindInt
	case allInt, allFloat:
		return model.KindFloat
	case allBool:
		return model.KindBool
	}
	return model.KindString
}

func isFloat(cell string) bool {
	if strings.ContainsAny(cell, "_xXpP") {
		return false
	}
	_, err := strconv.ParseFloat(cell, 64)
	return err == nil
}

func isBool(cell string) bool {
	switch cell {
	case "True", "TRUE", "true", "False", "FALSE", "false":
		return true
	}
	return false
}

func convert(cell string, kind model.Kind) model.Value {
	if isNA(cell) {
		return model.NullValue()
	}
	switch kind {
	case model.KindInt:
		i, _ := strconv.ParseInt(cell, 10, 64)
		return model.IntValue(i)
	case model.KindFloat:
		f, _ := strconv.ParseFloat(cell, 64)
		return model.FloatValue(f)
	case model.KindBool:
		return model.BoolValue(strings.EqualFold(cell, "true"))
	}
	return model.StringValue(cell)
}
