package sources

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// table is a header-addressed view of a delimited export.
type table struct {
	columns map[string]int
	rows    [][]string
}

// readTable loads a CSV, TSV, or semicolon-separated file. The delimiter is
// sniffed from the header line; header names are matched case-insensitively.
func readTable(path string) (*table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("file is empty")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, exists := t.columns[key]; !exists {
			t.columns[key] = i
		}
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

func sniffDelimiter(data []byte) rune {
	line, _, _ := bufio.NewReader(bytes.NewReader(data)).ReadLine()
	best, bestCount := ',', 0
	for _, candidate := range []rune{',', '\t', ';'} {
		if n := strings.Count(string(line), string(candidate)); n > bestCount {
			best, bestCount = candidate, n
		}
	}
	return best
}

// has reports whether any of names is a column.
func (t *table) has(names ...string) bool {
	for _, name := range names {
		if _, ok := t.columns[strings.ToLower(name)]; ok {
			return true
		}
	}
	return false
}

// get returns the first non-empty value among the named columns.
func (t *table) get(row []string, names ...string) string {
	for _, name := range names {
		idx, ok := t.columns[strings.ToLower(name)]
		if !ok || idx >= len(row) {
			continue
		}
		if value := strings.TrimSpace(row[idx]); value != "" {
			return value
		}
	}
	return ""
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// record is a loosely typed JSON object from hand-made or third-party exports.
type record map[string]any

// str returns the first key holding a non-empty string or number. Objects
// with a "name" or "title" key are unwrapped.
func (r record) str(keys ...string) string {
	for _, key := range keys {
		if value := stringValue(r[key]); value != "" {
			return value
		}
	}
	return ""
}

func stringValue(v any) string {
	switch typed := v.(type) {
	case string:
		return strings.TrimSpace(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		return typed.String()
	case map[string]any:
		return record(typed).str("name", "title")
	case []any:
		var parts []string
		for _, elem := range typed {
			if s := stringValue(elem); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// boolPtr reads an optional boolean.
func (r record) boolPtr(key string) *bool {
	if b, ok := r[key].(bool); ok {
		return &b
	}
	return nil
}

// records extracts a list of objects from data: either the top-level array or
// the first of keys holding an array.
func records(data any, keys ...string) []record {
	var list []any
	switch typed := data.(type) {
	case []any:
		list = typed
	case map[string]any:
		for _, key := range keys {
			if candidate, ok := typed[key].([]any); ok {
				list = candidate
				break
			}
		}
	}
	out := make([]record, 0, len(list))
	for _, elem := range list {
		if obj, ok := elem.(map[string]any); ok {
			out = append(out, record(obj))
		}
	}
	return out
}
