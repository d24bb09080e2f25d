package services

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/accoumar12/dashboard/internal/models"
)

// predicateBuilder translates a flat list of column filters plus a target
// table into a single boolean predicate. Same-table filters become direct
// comparisons; cross-table filters become correlated EXISTS subqueries that
// follow the relationship path hop by hop, so target rows are witnessed
// rather than joined (and therefore never duplicated).
type predicateBuilder struct {
	schema          *models.Schema
	graph           *RelationshipGraph
	caseInsensitive bool
}

func newPredicateBuilder(schema *models.Schema, graph *RelationshipGraph, caseInsensitive bool) *predicateBuilder {
	return &predicateBuilder{schema: schema, graph: graph, caseInsensitive: caseInsensitive}
}

// Build validates every filter and composes their predicates with AND. The
// build is all-or-nothing: one invalid filter or unreachable table fails the
// whole call. An empty filter list yields a nil predicate (match all rows).
func (b *predicateBuilder) Build(targetTable string, filters []models.ColumnFilter) (sq.Sqlizer, error) {
	if b.schema.Table(targetTable) == nil {
		return nil, &models.FilterValidationError{Table: targetTable, Reason: "table does not exist"}
	}

	var conds []sq.Sqlizer
	for _, filter := range filters {
		if err := b.validateFilter(filter); err != nil {
			return nil, err
		}

		if filter.Table == targetTable {
			conds = append(conds, b.comparison(quoteIdent(targetTable), filter))
			continue
		}

		path := b.graph.FindPath(targetTable, filter.Table)
		if path == nil {
			return nil, &models.FilterPathError{FromTable: filter.Table, ToTable: targetTable}
		}
		exists, err := b.buildExists(targetTable, path, filter)
		if err != nil {
			return nil, err
		}
		conds = append(conds, exists)
	}

	if len(conds) == 0 {
		return nil, nil
	}
	return sq.And(conds), nil
}

func (b *predicateBuilder) validateFilter(filter models.ColumnFilter) error {
	table := b.schema.Table(filter.Table)
	if table == nil {
		return &models.FilterValidationError{
			Table: filter.Table, Column: filter.Column, Operator: filter.Operator,
			Reason: "table does not exist",
		}
	}
	column := table.Column(filter.Column)
	if column == nil {
		return &models.FilterValidationError{
			Table: filter.Table, Column: filter.Column, Operator: filter.Operator,
			Reason: "column does not exist",
		}
	}
	if !filter.Operator.ValidFor(column.Category) {
		return &models.FilterValidationError{
			Table: filter.Table, Column: filter.Column, Operator: filter.Operator,
			Reason: fmt.Sprintf("operator %q is not valid for %s columns", filter.Operator, column.Category),
		}
	}
	if filter.Operator.RequiresValue() && filter.Value == nil {
		return &models.FilterValidationError{
			Table: filter.Table, Column: filter.Column, Operator: filter.Operator,
			Reason: fmt.Sprintf("operator %q requires a value", filter.Operator),
		}
	}
	if !filter.Operator.RequiresValue() && filter.Value != nil {
		return &models.FilterValidationError{
			Table: filter.Table, Column: filter.Column, Operator: filter.Operator,
			Reason: fmt.Sprintf("operator %q takes no value", filter.Operator),
		}
	}
	switch filter.Operator {
	case models.OpContains, models.OpStartsWith, models.OpEndsWith:
		if _, ok := filter.Value.(string); !ok {
			return &models.FilterValidationError{
				Table: filter.Table, Column: filter.Column, Operator: filter.Operator,
				Reason: fmt.Sprintf("operator %q requires a string value", filter.Operator),
			}
		}
	}
	return nil
}

// buildExists walks the path from the target table outwards, each hop adding
// a join to the next table. The condition of the first hop correlates the
// subquery with the outer target table; the filter comparison lands on the
// last table. Association edges insert the association table between the two
// endpoints of the hop.
func (b *predicateBuilder) buildExists(targetTable string, path *Path, filter models.ColumnFilter) (sq.Sqlizer, error) {
	aliasCounter := 0
	nextAlias := func() string {
		aliasCounter++
		return fmt.Sprintf("t%d", aliasCounter)
	}

	var sub sq.SelectBuilder
	started := false
	var correlation []string

	addTable := func(table, alias string, conds []string) {
		clause := fmt.Sprintf("%s AS %s", quoteIdent(table), alias)
		if !started {
			// The first table anchors the FROM clause; its conditions
			// reference the outer query and belong in WHERE.
			sub = sq.Select("1").From(clause)
			started = true
			correlation = conds
			return
		}
		sub = sub.JoinClause("JOIN " + clause + " ON " + strings.Join(conds, " AND "))
	}

	prev := quoteIdent(targetTable)
	for _, edge := range path.Edges {
		if edge.IsAssociation {
			via := nextAlias()
			addTable(edge.Via.Table, via, joinConds(prev, edge.FromColumns, via, edge.Via.FromColumns))
			next := nextAlias()
			addTable(edge.ToTable, next, joinConds(via, edge.Via.ToColumns, next, edge.ToColumns))
			prev = next
			continue
		}
		next := nextAlias()
		addTable(edge.ToTable, next, joinConds(prev, edge.FromColumns, next, edge.ToColumns))
		prev = next
	}

	for _, cond := range correlation {
		sub = sub.Where(sq.Expr(cond))
	}
	sub = sub.Where(b.comparison(prev, filter))

	sql, args, err := sub.ToSql()
	if err != nil {
		return nil, &models.QueryExecutionError{Err: err}
	}
	return sq.Expr("EXISTS ("+sql+")", args...), nil
}

// joinConds equates the column pairs of one hop. Both sides are identifiers
// produced from the validated schema, never user values.
func joinConds(leftQual string, leftCols []string, rightQual string, rightCols []string) []string {
	conds := make([]string, 0, len(leftCols))
	for i := range leftCols {
		conds = append(conds, fmt.Sprintf("%s.%s = %s.%s",
			leftQual, quoteIdent(leftCols[i]), rightQual, quoteIdent(rightCols[i])))
	}
	return conds
}

// comparison builds the leaf predicate for a filter against a qualified
// table reference (either the quoted target table or a subquery alias).
func (b *predicateBuilder) comparison(qualifier string, filter models.ColumnFilter) sq.Sqlizer {
	ident := qualifier + "." + quoteIdent(filter.Column)
	value := filter.Value

	switch filter.Operator {
	case models.OpEq:
		return sq.Eq{ident: value}
	case models.OpNe:
		return sq.NotEq{ident: value}
	case models.OpGt:
		return sq.Gt{ident: value}
	case models.OpLt:
		return sq.Lt{ident: value}
	case models.OpGte:
		return sq.GtOrEq{ident: value}
	case models.OpLte:
		return sq.LtOrEq{ident: value}
	case models.OpContains:
		return b.like(ident, "%"+escapeLike(value.(string))+"%")
	case models.OpStartsWith:
		return b.like(ident, escapeLike(value.(string))+"%")
	case models.OpEndsWith:
		return b.like(ident, "%"+escapeLike(value.(string)))
	case models.OpIsNull:
		return sq.Eq{ident: nil}
	case models.OpIsNotNull:
		return sq.NotEq{ident: nil}
	}
	// Unreachable: operators are validated before building.
	return sq.Expr("1=0")
}

func (b *predicateBuilder) like(ident, pattern string) sq.Sqlizer {
	if b.caseInsensitive {
		return sq.Expr(fmt.Sprintf(`LOWER(%s) LIKE LOWER(?) ESCAPE '\'`, ident), pattern)
	}
	return sq.Expr(fmt.Sprintf(`%s LIKE ? ESCAPE '\'`, ident), pattern)
}

// escapeLike neutralizes LIKE wildcards in a literal match value.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// quoteIdent double-quotes an identifier, escaping embedded quotes. Valid for
// both Postgres and SQLite.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
