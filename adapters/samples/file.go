package samples

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bayesview/domain/dataset"
	"bayesview/internal"

	"github.com/xuri/excelize/v2"
)

// FileSource reads a delimited text file or an .xlsx workbook
type FileSource struct {
	Path    string
	Options Options
	logger  *internal.Logger
}

// NewFileSource creates a file-backed sample source
func NewFileSource(path string, opts Options) *FileSource {
	return &FileSource{Path: path, Options: opts, logger: internal.DefaultLogger.WithPrefix("samples")}
}

// Samples implements ports.SampleSource
func (s *FileSource) Samples(ctx context.Context) (*dataset.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		records [][]string
		err     error
	)
	ext := strings.ToLower(filepath.Ext(s.Path))
	if ext == ".xlsx" {
		records, err = readWorkbook(s.Path, s.Options.Sheet)
	} else {
		records, err = readDelimited(s.Path, s.delimiter(ext))
	}
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: no header row", filepath.Base(s.Path))
	}

	table, err := build(records[0], records[1:], s.Options)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(s.Path), err)
	}
	s.logger.Info("loaded %d rows x %d columns from %s", table.Rows(), len(table.Names()), s.Path)
	return table, nil
}

func (s *FileSource) delimiter(ext string) rune {
	if s.Options.Delimiter != 0 {
		return s.Options.Delimiter
	}
	if ext == ".csv" {
		return ','
	}
	return '\t'
}

func readDelimited(path string, delimiter rune) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sample file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read sample file: %w", err)
		}
		records = append(records, record)
	}
	return dropIndexColumn(records), nil
}

// dropIndexColumn removes a leading unnamed column, which is how pandas
// writes its row index
func dropIndexColumn(records [][]string) [][]string {
	if len(records) == 0 || len(records[0]) < 2 || strings.TrimSpace(records[0][0]) != "" {
		return records
	}
	for i, r := range records {
		if len(r) > 0 {
			records[i] = r[1:]
		}
	}
	return records
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", filepath.Base(path))
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return dropIndexColumn(rows), nil
}
