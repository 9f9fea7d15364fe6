package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "footlens/internal/errors"
	"footlens/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RawTable is the source table as text cells, addressed by header name
type RawTable struct {
	Source string
	Header []string
	Rows   [][]string
	index  map[string]int
}

// NewRawTable indexes header and pads short rows. Header cells are trimmed.
func NewRawTable(source string, header []string, rows [][]string) *RawTable {
	t := &RawTable{
		Source: source,
		Header: make([]string, len(header)),
		index:  make(map[string]int, len(header)),
	}
	for i, h := range header {
		h = strings.TrimSpace(h)
		t.Header[i] = h
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}

	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if len(row) < len(header) {
			padded := make([]string, len(header))
			copy(padded, row)
			row = padded
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Has reports whether the header contains column
func (t *RawTable) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Cell returns the raw text of column in row i, or "" when the column is absent
func (t *RawTable) Cell(i int, column string) string {
	idx, ok := t.index[column]
	if !ok || idx >= len(t.Rows[i]) {
		return ""
	}
	return t.Rows[i][idx]
}

// Missing returns the columns of want that the header lacks, in order
func (t *RawTable) Missing(want []string) []string {
	var missing []string
	for _, c := range want {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// ReadTable reads a CSV or XLSX file. Any failure to obtain a usable table,
// including a header without the required columns, is a load error.
func ReadTable(path string) (*RawTable, error) {
	var (
		t   *RawTable
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		t, err = readXLSX(path)
	case ".csv", ".txt", "":
		t, err = readCSV(path)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, apperrors.NewLoadError(path, err)
	}

	if missing := t.Missing(domain.RequiredColumns); len(missing) > 0 {
		return nil, apperrors.NewLoadError(path, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", ")))
	}
	return t, nil
}

func readCSV(path string) (*RawTable, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("malformed CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	return NewRawTable(path, records[0], records[1:]), nil
}

func readXLSX(path string) (*RawTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var date1904 bool
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	// The first sheet whose first non-blank row looks like the injury header wins
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		for i, row := range rows {
			if isBlankRow(row) {
				continue
			}
			if looksLikeHeader(row) {
				body := rows[i+1:]
				convertDateSerials(row, body, date1904)
				return NewRawTable(path, row, body), nil
			}
			break
		}
	}
	return nil, fmt.Errorf("no sheet with an injury header row")
}

// convertDateSerials rewrites date-typed cells, which read raw as Excel serial
// numbers, into DateLayout text. Text dates are left for ParseDate.
func convertDateSerials(header []string, rows [][]string, date1904 bool) {
	for col, name := range header {
		switch strings.TrimSpace(name) {
		case domain.ColInjuryDate, domain.ColReturnDate:
		default:
			continue
		}
		for _, row := range rows {
			if col >= len(row) {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
			if err != nil {
				continue
			}
			t, err := excelize.ExcelDateToTime(serial, date1904)
			if err != nil {
				continue
			}
			row[col] = t.Format(domain.DateLayout)
		}
	}
}

func looksLikeHeader(row []string) bool {
	var name, injury bool
	for _, cell := range row {
		switch strings.TrimSpace(cell) {
		case domain.ColName:
			name = true
		case domain.ColInjury:
			injury = true
		}
	}
	return name && injury
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
