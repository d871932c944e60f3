// Package dataset loads school rows from tabular sources. The canonical
// export is a semicolon-delimited CSV; spreadsheet exports are accepted
// as-is via the XLSX source.
package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
)

type CSVSource struct {
	path string
}

func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Rows reads all records. The export format is semicolon-delimited with
// quoted headers and an optional UTF-8 BOM; blank and N/A cells become
// missing values at lookup time, not here.
func (s *CSVSource) Rows(_ context.Context) ([]domain.Row, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", s.path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	if err := skipBOM(br); err != nil {
		return nil, fmt.Errorf("read csv %s: %w", s.path, err)
	}

	reader := csv.NewReader(br)
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.Trim(strings.TrimSpace(header[i]), `"`)
	}

	var rows []domain.Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv record: %w", err)
		}
		row := make(domain.Row, len(header))
		for i, column := range header {
			if i >= len(record) {
				break
			}
			row[column] = strings.Trim(strings.TrimSpace(record[i]), `"`)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func skipBOM(br *bufio.Reader) error {
	head, err := br.Peek(3)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if len(head) == 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		if _, err := br.Discard(3); err != nil {
			return err
		}
	}
	return nil
}
