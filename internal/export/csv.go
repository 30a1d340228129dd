// Copyright (c) 2025 sfquery
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package export writes flattened query results to CSV files and PostgreSQL
// tables.
package export

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrNoRecords is returned instead of creating an empty export.
var ErrNoRecords = errors.New("no records to export")

// UnknownColumnError names an order entry that matches no column.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column %q is not in the result", e.Column)
}

// Columns picks the export columns. Without an order every key of the first
// record is used, sorted. Order entries are matched against the first
// record's keys; an entry that differs only in case is corrected.
func Columns(records []map[string]any, order []string) ([]string, error) {
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	first := records[0]
	if len(order) == 0 {
		cols := make([]string, 0, len(first))
		for k := range first {
			cols = append(cols, k)
		}
		sort.Strings(cols)
		return cols, nil
	}

	cols := make([]string, len(order))
	for i, want := range order {
		if _, ok := first[want]; ok {
			cols[i] = want
			continue
		}
		fixed := ""
		for k := range first {
			if strings.EqualFold(k, want) && (fixed == "" || k < fixed) {
				fixed = k
			}
		}
		if fixed == "" {
			return nil, &UnknownColumnError{Column: want}
		}
		cols[i] = fixed
	}
	return cols, nil
}

// FormatValue renders one cell. Null is empty; lists and maps are JSON.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case []any, map[string]any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

// WriteCSV writes a header row and one row per record. Every field is quoted;
// records missing a column get an empty cell.
func WriteCSV(w io.Writer, records []map[string]any, order []string) error {
	cols, err := Columns(records, order)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	writeRow(bw, cols)
	row := make([]string, len(cols))
	for _, r := range records {
		for i, c := range cols {
			row[i] = FormatValue(r[c])
		}
		writeRow(bw, row)
	}
	return bw.Flush()
}

// WriteCSVFile writes records to path. No file is created when there are no
// records.
func WriteCSVFile(path string, records []map[string]any, order []string) error {
	if _, err := Columns(records, order); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, records, order); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeRow(w *bufio.Writer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(f, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteString("\r\n")
}
