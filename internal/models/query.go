package models

// FilterOperator enumerates the comparison operators a ColumnFilter may use.
type FilterOperator string

const (
	OpEq         FilterOperator = "eq"
	OpNe         FilterOperator = "ne"
	OpGt         FilterOperator = "gt"
	OpLt         FilterOperator = "lt"
	OpGte        FilterOperator = "gte"
	OpLte        FilterOperator = "lte"
	OpContains   FilterOperator = "contains"
	OpStartsWith FilterOperator = "startswith"
	OpEndsWith   FilterOperator = "endswith"
	OpIsNull     FilterOperator = "is_null"
	OpIsNotNull  FilterOperator = "is_not_null"
)

// RequiresValue reports whether the operator needs a comparison value.
func (op FilterOperator) RequiresValue() bool {
	switch op {
	case OpIsNull, OpIsNotNull:
		return false
	}
	return true
}

// ValidFor reports whether the operator applies to a column of the given
// semantic category.
func (op FilterOperator) ValidFor(cat ColumnType) bool {
	switch op {
	case OpEq, OpNe, OpIsNull, OpIsNotNull:
		return true
	case OpGt, OpLt, OpGte, OpLte:
		return cat == TypeNumeric || cat == TypeDatetime
	case OpContains, OpStartsWith, OpEndsWith:
		return cat == TypeString
	}
	return false
}

// ColumnFilter constrains one column of one table. Filters referencing a
// table other than the query target are resolved through the relationship
// graph. Composition across filters is implicit AND.
type ColumnFilter struct {
	Table    string         `json:"table" binding:"required"`
	Column   string         `json:"column" binding:"required"`
	Operator FilterOperator `json:"operator" binding:"required"`
	Value    any            `json:"value,omitempty"`
}

type SortConfig struct {
	Column    string `json:"column" binding:"required"`
	Direction string `json:"direction" binding:"omitempty,oneof=asc desc"`
}

type QueryRequest struct {
	Table   string         `json:"table" binding:"required"`
	Filters []ColumnFilter `json:"filters"`
	Sort    *SortConfig    `json:"sort"`
	Offset  uint64         `json:"offset"`
	Limit   uint64         `json:"limit"`
}

type QueryResponse struct {
	Data   []map[string]any `json:"data"`
	Total  int64            `json:"total"`
	Offset uint64           `json:"offset"`
	Limit  uint64           `json:"limit"`
}
