package domain

// ColumnType names the storage type of a table column
type ColumnType string

const (
	ColumnString ColumnType = "string"
	ColumnInt    ColumnType = "int"
	ColumnFloat  ColumnType = "float"
	ColumnBool   ColumnType = "bool"
)

// ColumnInfo describes a single column of a table
type ColumnInfo struct {
	Name    string     `json:"name"`
	Type    ColumnType `json:"type"`
	NonNull int        `json:"non_null"`
	Null    int        `json:"null"`
}

// TableInfo is the schema summary of a table: row count plus one entry per column
type TableInfo struct {
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
}

// ColumnNames returns the column names in table order
func (t TableInfo) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Complete reports whether no column holds missing values
func (t TableInfo) Complete() bool {
	for _, c := range t.Columns {
		if c.Null > 0 {
			return false
		}
	}
	return true
}

// StepReport captures the table schema after a named workflow step
type StepReport struct {
	Step string    `json:"step"`
	Info TableInfo `json:"info"`
}
