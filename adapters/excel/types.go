package excel

// RawRowData represents a row of raw sheet data as header -> cell pairs
type RawRowData map[string]string

// ExcelData represents the complete sheet
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// ColumnSpec describes where the two groups live in a sheet. Set GroupColumn
// and ValueColumn for long data (one row per observation, labelled by group),
// or Columns for wide data (one value column per group).
type ColumnSpec struct {
	GroupColumn string   `json:"group_column,omitempty" form:"group_column"`
	ValueColumn string   `json:"value_column,omitempty" form:"value_column"`
	Columns     []string `json:"columns,omitempty" form:"columns"`
	Sheet       string   `json:"sheet,omitempty" form:"sheet"`
}

// IsWide reports whether the spec names per-group value columns.
func (s ColumnSpec) IsWide() bool {
	return len(s.Columns) > 0
}

// GroupSamples holds one group's raw observations in sheet order.
type GroupSamples struct {
	Label  string
	Values []float64
}
