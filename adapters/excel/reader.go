package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gowelch/domain/core"
	"gowelch/internal"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
	source   io.Reader
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	return &DataReader{
		filePath: filePath,
		fileType: fileTypeOf(filePath),
		logger:   internal.DefaultLogger.Named("DataReader"),
	}
}

// NewStreamReader reads from r, using name only to pick the file type. It is
// used for uploaded files that never touch disk.
func NewStreamReader(r io.Reader, name string) *DataReader {
	dr := NewDataReader(name)
	dr.source = r
	return dr
}

// WithSheet selects a worksheet; the default is the first sheet in the workbook.
func (r *DataReader) WithSheet(sheet string) *DataReader {
	r.sheet = sheet
	return r
}

func fileTypeOf(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".csv" {
		return "csv"
	}
	return "xlsx"
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("Starting to read %s file: %s", r.fileType, r.filePath)

	src := r.source
	if src == nil {
		file, err := os.Open(r.filePath)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %s file: %w", r.fileType, err)
		}
		defer file.Close()
		src = file
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData(src)
	default:
		return r.readExcelData(src)
	}
}

// readExcelData reads the selected sheet into structured format
func (r *DataReader) readExcelData(src io.Reader) (*ExcelData, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, core.NewValidationError("sheet", "workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	r.logger.Debug("%s read in %.2fms (%d rows)", sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, core.NewValidationError("file", "Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData(src io.Reader) (*ExcelData, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, core.NewValidationError("file", "CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRowData, len(headers))
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Info("%s file processed (%d columns, %d rows)", strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// ReadGroups reads the file and extracts exactly two groups per spec.
func (r *DataReader) ReadGroups(spec ColumnSpec) ([2]GroupSamples, error) {
	if spec.Sheet != "" {
		r.WithSheet(spec.Sheet)
	}
	data, err := r.ReadData()
	if err != nil {
		return [2]GroupSamples{}, err
	}
	return ExtractGroups(data, spec)
}

// ExtractGroups splits sheet rows into two groups of numeric observations.
// Empty cells are skipped; any other non-numeric cell is an error.
func ExtractGroups(data *ExcelData, spec ColumnSpec) ([2]GroupSamples, error) {
	if spec.IsWide() {
		return extractWide(data, spec.Columns)
	}
	return extractLong(data, spec.GroupColumn, spec.ValueColumn)
}

func extractWide(data *ExcelData, columns []string) ([2]GroupSamples, error) {
	var out [2]GroupSamples
	if len(columns) != 2 {
		return out, core.NewValidationError("columns", fmt.Sprintf("expected 2 value columns, got %d", len(columns)))
	}
	for i, col := range columns {
		if !hasHeader(data, col) {
			return out, core.NewValidationError("columns", fmt.Sprintf("column %q not found", col))
		}
		out[i].Label = col
		for rowIdx, row := range data.Rows {
			v, ok, err := parseCell(row[col], col, rowIdx)
			if err != nil {
				return out, err
			}
			if ok {
				out[i].Values = append(out[i].Values, v)
			}
		}
	}
	return out, nil
}

func extractLong(data *ExcelData, groupCol, valueCol string) ([2]GroupSamples, error) {
	var out [2]GroupSamples
	if groupCol == "" || valueCol == "" {
		return out, core.NewValidationError("columns", "group_column and value_column are required unless columns is set")
	}
	for _, col := range []string{groupCol, valueCol} {
		if !hasHeader(data, col) {
			return out, core.NewValidationError("columns", fmt.Sprintf("column %q not found", col))
		}
	}

	index := make(map[string]int, 2)
	var labels []string
	values := make(map[string][]float64)
	for rowIdx, row := range data.Rows {
		label := row[groupCol]
		v, ok, err := parseCell(row[valueCol], valueCol, rowIdx)
		if err != nil {
			return out, err
		}
		if label == "" || !ok {
			continue
		}
		if _, seen := index[label]; !seen {
			index[label] = len(labels)
			labels = append(labels, label)
		}
		values[label] = append(values[label], v)
	}

	if len(labels) != 2 {
		return out, core.NewValidationError(groupCol, fmt.Sprintf("expected exactly 2 groups, found %d (%s)", len(labels), strings.Join(labels, ", ")))
	}
	for i, label := range labels {
		out[i] = GroupSamples{Label: label, Values: values[label]}
	}
	return out, nil
}

func hasHeader(data *ExcelData, name string) bool {
	for _, h := range data.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// parseCell returns ok=false for empty cells. rowIdx is zero-based over data
// rows; messages use spreadsheet numbering with the header as row 1.
func parseCell(cell, column string, rowIdx int) (float64, bool, error) {
	if cell == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(cell, ",", ""), 64)
	if err != nil {
		return 0, false, core.NewValidationError(column, fmt.Sprintf("row %d: %q is not a number", rowIdx+2, cell))
	}
	return v, true, nil
}
