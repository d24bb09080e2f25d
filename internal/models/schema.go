package models

// ColumnType is the semantic category of a column, used to gate which filter
// operators apply to it.
type ColumnType string

const (
	TypeString   ColumnType = "string"
	TypeNumeric  ColumnType = "numeric"
	TypeBoolean  ColumnType = "boolean"
	TypeDatetime ColumnType = "datetime"
)

type Column struct {
	Name       string     `json:"name"`
	DataType   string     `json:"type"`
	Category   ColumnType `json:"category"`
	Nullable   bool       `json:"nullable"`
	PrimaryKey bool       `json:"primary_key"`
}

// ForeignKey is a directed constraint from a source table to a referenced
// table. FromColumns and ToColumns correspond positionally; composite keys
// carry multiple pairs.
type ForeignKey struct {
	ConstraintName string   `json:"-"`
	FromTable      string   `json:"from_table"`
	FromColumns    []string `json:"from_columns"`
	ToTable        string   `json:"to_table"`
	ToColumns      []string `json:"to_columns"`
}

type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Schema is the normalized snapshot of the active dataset's structure. It is
// rebuilt wholesale on every dataset activation and never mutated afterwards.
type Schema struct {
	Tables        []Table      `json:"tables"`
	Relationships []ForeignKey `json:"relationships"`
}

// Table returns the named table, or nil.
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// PrimaryKeyColumns returns the primary key column names in declaration order.
func (t *Table) PrimaryKeyColumns() []string {
	var pks []string
	for i := range t.Columns {
		if t.Columns[i].PrimaryKey {
			pks = append(pks, t.Columns[i].Name)
		}
	}
	return pks
}
