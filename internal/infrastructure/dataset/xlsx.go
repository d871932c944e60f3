package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
)

// XLSXSource reads school rows from a spreadsheet export: header row
// first, one school per following row. An empty sheet name selects the
// first sheet.
type XLSXSource struct {
	path  string
	sheet string
}

func NewXLSXSource(path, sheet string) *XLSXSource {
	return &XLSXSource{path: path, sheet: sheet}
}

func (s *XLSXSource) Rows(_ context.Context) ([]domain.Row, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", s.path, err)
	}
	defer f.Close()

	sheet := s.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read xlsx sheet %s: %w", sheet, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := make([]string, len(records[0]))
	for i, cell := range records[0] {
		header[i] = strings.TrimSpace(cell)
	}

	rows := make([]domain.Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(domain.Row, len(header))
		for i, column := range header {
			if column == "" {
				continue
			}
			if i < len(record) {
				row[column] = strings.TrimSpace(record[i])
			} else {
				row[column] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
