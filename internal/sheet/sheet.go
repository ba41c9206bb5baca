// Package sheet decodes uploaded spreadsheet and CSV files into header-keyed rows.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"trivia-quiz-service/internal/domain"

	"github.com/xuri/excelize/v2"
)

// Cell is one non-blank value of a row, keyed by its column header.
type Cell struct {
	Header string
	Value  string
}

// Row is a decoded record. Cells keep the column order of the source file.
type Row []Cell

// Get returns the value stored under the exact header.
func (r Row) Get(header string) (string, bool) {
	for _, c := range r {
		if c.Header == header {
			return c.Value, true
		}
	}
	return "", false
}

var zipMagic = []byte("PK\x03\x04")

// Decode reads the first sheet of an XLSX workbook, or a delimited text file,
// and returns one Row per non-blank data line. The first line is the header.
// Any read failure is reported as domain.ErrDecode.
func Decode(r io.Reader, filename string) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %v", domain.ErrDecode, err)
	}

	var records [][]string
	if isWorkbook(data, filename) {
		records, err = readWorkbook(data)
	} else {
		records, err = readDelimited(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	return buildRows(records), nil
}

func isWorkbook(data []byte, filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return true
	case ".csv", ".tsv", ".txt":
		return false
	}
	return bytes.HasPrefix(data, zipMagic)
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

func readDelimited(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !isText(data) {
		return nil, errors.New("file is not delimited text")
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

// isText rejects binary payloads (NUL bytes) that encoding/csv would happily accept.
func isText(data []byte) bool {
	limit := len(data)
	if limit > 4096 {
		limit = 4096
	}
	return bytes.IndexByte(data[:limit], 0) < 0
}

func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func buildRows(records [][]string) []Row {
	if len(records) == 0 {
		return []Row{}
	}
	headers := uniqueHeaders(records[0])

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, 0, len(rec))
		for i, v := range rec {
			if i >= len(headers) || strings.TrimSpace(v) == "" {
				continue
			}
			row = append(row, Cell{Header: headers[i], Value: v})
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// uniqueHeaders names blank headers __EMPTY, __EMPTY_1, ... and suffixes repeats
// with _1, _2, ..., skipping any name already taken by another column.
func uniqueHeaders(raw []string) []string {
	out := make([]string, len(raw))
	taken := make(map[string]bool, len(raw))
	suffix := make(map[string]int, len(raw))
	for i, h := range raw {
		base := h
		if strings.TrimSpace(base) == "" {
			base = "__EMPTY"
		}
		name := base
		for taken[name] {
			suffix[base]++
			name = base + "_" + strconv.Itoa(suffix[base])
		}
		taken[name] = true
		out[i] = name
	}
	return out
}
