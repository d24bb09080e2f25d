package services

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/accoumar12/dashboard/internal/config"
	"github.com/accoumar12/dashboard/internal/database"
	"github.com/accoumar12/dashboard/internal/models"
)

// QueryService executes filtered, sorted, paginated page queries against the
// active dataset. All SQL is generated from the validated schema; user input
// only ever travels as bind parameters.
type QueryService struct {
	datasets *DatasetService
	settings *config.Settings
}

func NewQueryService(datasets *DatasetService, settings *config.Settings) *QueryService {
	return &QueryService{datasets: datasets, settings: settings}
}

// Query returns one page of rows plus the total count of rows matching the
// request's filters. The count runs with the same predicate but without sort
// or pagination, so Total reflects the full filtered set regardless of the
// requested window.
func (s *QueryService) Query(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	snap := s.datasets.Current()
	if snap == nil {
		return nil, &models.SchemaExtractionError{Reason: "no active dataset"}
	}

	limit := req.Limit
	if limit == 0 {
		limit = s.settings.DefaultPageSize
	}
	if limit > s.settings.MaxPageSize {
		limit = s.settings.MaxPageSize
	}

	builder := newPredicateBuilder(snap.Schema, snap.Graph, s.settings.CaseInsensitiveMatch)
	predicate, err := builder.Build(req.Table, req.Filters)
	if err != nil {
		return nil, err
	}

	table := snap.Schema.Table(req.Table)
	orderBy, err := orderClauses(table, req.Sort)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		columns = append(columns, quoteIdent(col.Name))
	}

	pageQuery := sq.Select(columns...).
		From(quoteIdent(req.Table)).
		OrderBy(orderBy...).
		Offset(req.Offset).
		Limit(limit)
	countQuery := sq.Select("COUNT(*)").From(quoteIdent(req.Table))
	if predicate != nil {
		pageQuery = pageQuery.Where(predicate)
		countQuery = countQuery.Where(predicate)
	}
	if snap.Dialect == database.DialectPostgres {
		pageQuery = pageQuery.PlaceholderFormat(sq.Dollar)
		countQuery = countQuery.PlaceholderFormat(sq.Dollar)
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.QueryTimeout)
	defer cancel()

	total, err := s.runCount(ctx, snap.DB, countQuery)
	if err != nil {
		return nil, err
	}

	data, err := s.runPage(ctx, snap.DB, pageQuery)
	if err != nil {
		return nil, err
	}

	return &models.QueryResponse{
		Data:   data,
		Total:  total,
		Offset: req.Offset,
		Limit:  limit,
	}, nil
}

// DistinctColumnValues returns up to limit distinct non-null values of one
// column, for populating equality-filter suggestions. No joins are involved.
func (s *QueryService) DistinctColumnValues(ctx context.Context, tableName, columnName string, limit uint64) ([]any, error) {
	snap := s.datasets.Current()
	if snap == nil {
		return nil, &models.SchemaExtractionError{Reason: "no active dataset"}
	}

	table := snap.Schema.Table(tableName)
	if table == nil {
		return nil, &models.FilterValidationError{Table: tableName, Reason: "table does not exist"}
	}
	if table.Column(columnName) == nil {
		return nil, &models.FilterValidationError{Table: tableName, Column: columnName, Reason: "column does not exist"}
	}

	if limit == 0 {
		limit = s.settings.DefaultPageSize
	}
	if limit > s.settings.MaxPageSize {
		limit = s.settings.MaxPageSize
	}

	ident := quoteIdent(columnName)
	query := sq.Select("DISTINCT " + ident).
		From(quoteIdent(tableName)).
		Where(sq.NotEq{ident: nil}).
		OrderBy(ident).
		Limit(limit)
	if snap.Dialect == database.DialectPostgres {
		query = query.PlaceholderFormat(sq.Dollar)
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, &models.QueryExecutionError{Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.QueryTimeout)
	defer cancel()

	rows, err := snap.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, &models.QueryExecutionError{Err: err}
	}
	defer rows.Close()

	values := make([]any, 0, limit)
	for rows.Next() {
		var v any
		if err := rows.Scan(&v); err != nil {
			return nil, &models.QueryExecutionError{Err: err}
		}
		values = append(values, normalizeValue(v))
	}
	if err := rows.Err(); err != nil {
		return nil, &models.QueryExecutionError{Err: err}
	}
	return values, nil
}

// orderClauses validates the optional sort and appends the primary key
// ascending as a tie-breaker, so paging stays stable across requests.
func orderClauses(table *models.Table, sort *models.SortConfig) ([]string, error) {
	var clauses []string
	sortColumn := ""

	if sort != nil {
		if table.Column(sort.Column) == nil {
			return nil, &models.FilterValidationError{
				Table:  table.Name,
				Column: sort.Column,
				Reason: "sort column does not exist in target table",
			}
		}
		direction := "ASC"
		if strings.EqualFold(sort.Direction, "desc") {
			direction = "DESC"
		}
		sortColumn = sort.Column
		clauses = append(clauses, quoteIdent(sort.Column)+" "+direction)
	}

	for _, pk := range table.PrimaryKeyColumns() {
		if pk == sortColumn {
			continue
		}
		clauses = append(clauses, quoteIdent(pk)+" ASC")
	}
	return clauses, nil
}

func (s *QueryService) runCount(ctx context.Context, db *sql.DB, query sq.SelectBuilder) (int64, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, &models.QueryExecutionError{Err: err}
	}

	var total int64
	if err := db.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, &models.QueryExecutionError{Err: err}
	}
	return total, nil
}

func (s *QueryService) runPage(ctx context.Context, db *sql.DB, query sq.SelectBuilder) ([]map[string]any, error) {
	sqlStr, args, err := query.ToSql()
	if err != nil {
		return nil, &models.QueryExecutionError{Err: err}
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, &models.QueryExecutionError{Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &models.QueryExecutionError{Err: err}
	}

	data := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, &models.QueryExecutionError{Err: err}
		}

		row := make(map[string]any, len(columns))
		for i, name := range columns {
			row[name] = normalizeValue(values[i])
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.QueryExecutionError{Err: err}
	}
	return data, nil
}

// normalizeValue makes driver-specific scan results JSON-friendly.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
