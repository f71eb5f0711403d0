package refdata

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"

	"payments-register/internal/domain"
)

// NormalizeHeader trims, uppercases and collapses whitespace so headers from
// different spreadsheet exports compare equal.
func NormalizeHeader(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// ReadTable reads the first sheet of a reference file into a Table. The file
// format is chosen by extension.
func ReadTable(name, path string) (domain.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Table{}, &domain.ConfigError{Source: name, Err: fmt.Errorf("file not found: %s", filepath.Base(path))}
		}
		return domain.Table{}, &domain.ConfigError{Source: name, Err: err}
	}

	var (
		raw [][]string
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		raw, err = readXLSX(path)
	case ".xls":
		raw, err = readXLS(path)
	case ".csv":
		raw, err = readCSV(path)
	default:
		err = fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	if err != nil {
		return domain.Table{}, &domain.ConfigError{Source: name, Err: err}
	}

	t := buildTable(name, raw)
	if len(t.Headers) == 0 {
		return domain.Table{}, &domain.ConfigError{Source: name, Err: errors.New("no header row")}
	}
	return t, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readXLS(path string) ([][]string, error) {
	book, err := xls.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet, err := book.GetSheet(0)
	if err != nil || sheet == nil {
		return nil, errors.New("no sheets found")
	}

	var rows [][]string
	for _, r := range sheet.GetRows() {
		var vals []string
		for _, c := range r.GetCols() {
			vals = append(vals, c.GetString())
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	first, _ := br.Peek(4096)
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if line, _, _ := strings.Cut(string(first), "\n"); strings.Count(line, ";") > strings.Count(line, ",") {
		cr.Comma = ';'
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

func buildTable(name string, raw [][]string) domain.Table {
	t := domain.Table{Name: name}

	start := -1
	for i, r := range raw {
		if !blank(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return t
	}

	// column index -> header; duplicates after normalization keep the first
	index := make(map[int]string)
	seen := make(map[string]bool)
	for i, h := range raw[start] {
		n := NormalizeHeader(h)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		index[i] = n
		t.Headers = append(t.Headers, n)
	}

	for _, r := range raw[start+1:] {
		if blank(r) {
			continue
		}
		row := make(domain.Row, len(t.Headers))
		for _, h := range t.Headers {
			row[h] = ""
		}
		for i, v := range r {
			if h, ok := index[i]; ok {
				row[h] = v
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func blank(r []string) bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
