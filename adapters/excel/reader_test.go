package excel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gowelch/domain/core"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "groups.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadGroups_LongWorkbook(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]interface{}{
		{"arm", "score"},
		{"treatment", 12.5},
		{"control", 10},
		{"treatment", 13.5},
		{"control", 11},
		{"control", ""},
	})

	groups, err := NewDataReader(path).ReadGroups(ColumnSpec{GroupColumn: "arm", ValueColumn: "score"})
	require.NoError(t, err)

	assert.Equal(t, "treatment", groups[0].Label)
	assert.Equal(t, []float64{12.5, 13.5}, groups[0].Values)
	assert.Equal(t, "control", groups[1].Label)
	assert.Equal(t, []float64{10, 11}, groups[1].Values)
}

func TestReadGroups_WideWorkbookNamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Trial", [][]interface{}{
		{"before", "after"},
		{1, 2},
		{3, 4},
		{5, nil},
	})

	groups, err := NewDataReader(path).ReadGroups(ColumnSpec{Columns: []string{"before", "after"}, Sheet: "Trial"})
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 3, 5}, groups[0].Values)
	assert.Equal(t, []float64{2, 4}, groups[1].Values)
}

func TestReadGroups_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.csv")
	content := "group,value\na,1\nb,2\na,3\nb,4\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	groups, err := NewDataReader(path).ReadGroups(ColumnSpec{GroupColumn: "group", ValueColumn: "value"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, groups[0].Values)
	assert.Equal(t, []float64{2, 4}, groups[1].Values)
}

func TestStreamReader_CSV(t *testing.T) {
	r := strings.NewReader("\ufeffx,y\n1,2\n3,4\n")
	groups, err := NewStreamReader(r, "upload.csv").ReadGroups(ColumnSpec{Columns: []string{"x", "y"}})
	require.NoError(t, err)
	assert.Equal(t, "x", groups[0].Label)
	assert.Equal(t, []float64{2, 4}, groups[1].Values)
}

func TestExtractGroups_Errors(t *testing.T) {
	data := &ExcelData{
		Headers: []string{"g", "v"},
		Rows: []RawRowData{
			{"g": "a", "v": "1"},
			{"g": "b", "v": "2"},
			{"g": "c", "v": "3"},
		},
	}

	tests := []struct {
		name string
		spec ColumnSpec
	}{
		{"three groups", ColumnSpec{GroupColumn: "g", ValueColumn: "v"}},
		{"missing column", ColumnSpec{GroupColumn: "g", ValueColumn: "score"}},
		{"no columns", ColumnSpec{}},
		{"one wide column", ColumnSpec{Columns: []string{"v"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ExtractGroups(data, tt.spec)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
}

func TestExtractGroups_NonNumericCell(t *testing.T) {
	data := &ExcelData{
		Headers: []string{"x", "y"},
		Rows:    []RawRowData{{"x": "1", "y": "2"}, {"x": "n/a", "y": "3"}},
	}
	_, err := ExtractGroups(data, ColumnSpec{Columns: []string{"x", "y"}})
	require.ErrorIs(t, err, core.ErrInvalidInput)
	assert.Contains(t, err.Error(), "row 3")
}

func TestReadData_MissingFile(t *testing.T) {
	_, err := NewDataReader(filepath.Join(t.TempDir(), "nope.xlsx")).ReadData()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "XLSX file not found")
}

func TestReadData_HeaderOnly(t *testing.T) {
	_, err := NewStreamReader(strings.NewReader("a,b\n"), "x.csv").ReadData()
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}
