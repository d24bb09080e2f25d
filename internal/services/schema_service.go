package services

import (
	"context"
	"database/sql"
	"log"
	"slices"
	"strings"

	"github.com/accoumar12/dashboard/internal/database"
	"github.com/accoumar12/dashboard/internal/models"
	"github.com/accoumar12/dashboard/internal/repositories"
)

// SchemaService builds the normalized Schema for an active dataset by
// running the dialect's introspector and cleaning up the result.
type SchemaService struct{}

func NewSchemaService() *SchemaService {
	return &SchemaService{}
}

// Analyze extracts tables, columns and foreign keys from the live database.
// It fails with a SchemaExtractionError when introspection errors or when the
// dataset has no tables; that condition is reported upward, never masked as
// an empty schema.
func (s *SchemaService) Analyze(ctx context.Context, db *sql.DB, dialect database.Dialect) (*models.Schema, error) {
	var repo repositories.SchemaIntrospector
	switch dialect {
	case database.DialectPostgres:
		repo = repositories.NewPostgresSchemaRepository(db)
	default:
		repo = repositories.NewSQLiteSchemaRepository(db)
	}

	tableNames, err := repo.GetTables(ctx)
	if err != nil {
		return nil, &models.SchemaExtractionError{Reason: "failed to list tables", Err: err}
	}
	if len(tableNames) == 0 {
		return nil, &models.SchemaExtractionError{Reason: "dataset contains no tables"}
	}

	schema := &models.Schema{}
	for _, name := range tableNames {
		columns, err := repo.GetColumns(ctx, name)
		if err != nil {
			return nil, &models.SchemaExtractionError{Reason: "failed to read columns of " + name, Err: err}
		}

		pks, err := repo.GetPrimaryKeys(ctx, name)
		if err != nil {
			return nil, &models.SchemaExtractionError{Reason: "failed to read primary key of " + name, Err: err}
		}

		for i := range columns {
			columns[i].Category = columnCategory(columns[i].DataType)
			if slices.Contains(pks, columns[i].Name) {
				columns[i].PrimaryKey = true
			}
		}
		schema.Tables = append(schema.Tables, models.Table{Name: name, Columns: columns})

		fks, err := repo.GetForeignKeys(ctx, name)
		if err != nil {
			return nil, &models.SchemaExtractionError{Reason: "failed to read foreign keys of " + name, Err: err}
		}
		schema.Relationships = append(schema.Relationships, fks...)
	}

	schema.Relationships = normalizeRelationships(schema)
	return schema, nil
}

// normalizeRelationships resolves constraints that reference an implicit
// primary key and drops constraints pointing at tables or columns that do not
// exist. Uploaded dumps are allowed to carry dangling references; keeping
// them would break the schema invariant every derived structure relies on.
func normalizeRelationships(schema *models.Schema) []models.ForeignKey {
	var kept []models.ForeignKey
	for _, rel := range schema.Relationships {
		target := schema.Table(rel.ToTable)
		if target == nil {
			log.Printf("Skipping constraint %s: referenced table %q does not exist", rel.ConstraintName, rel.ToTable)
			continue
		}

		if missingToColumns(rel) {
			pks := target.PrimaryKeyColumns()
			if len(pks) != len(rel.FromColumns) {
				log.Printf("Skipping constraint %s: cannot resolve implicit reference into %q", rel.ConstraintName, rel.ToTable)
				continue
			}
			rel.ToColumns = pks
		}

		if !columnsExist(schema.Table(rel.FromTable), rel.FromColumns) || !columnsExist(target, rel.ToColumns) {
			log.Printf("Skipping constraint %s: references a nonexistent column", rel.ConstraintName)
			continue
		}
		kept = append(kept, rel)
	}
	return kept
}

func missingToColumns(rel models.ForeignKey) bool {
	for _, c := range rel.ToColumns {
		if c == "" {
			return true
		}
	}
	return len(rel.ToColumns) == 0
}

func columnsExist(table *models.Table, columns []string) bool {
	if table == nil {
		return false
	}
	for _, c := range columns {
		if table.Column(c) == nil {
			return false
		}
	}
	return true
}

// columnCategory maps a raw declared type to its semantic category. The
// matching is substring-based so it covers both Postgres type names and the
// loose declarations found in SQLite dumps.
func columnCategory(dataType string) models.ColumnType {
	dt := strings.ToLower(dataType)
	switch {
	case strings.Contains(dt, "bool"):
		return models.TypeBoolean
	case strings.Contains(dt, "int"),
		strings.Contains(dt, "serial"),
		strings.Contains(dt, "numeric"),
		strings.Contains(dt, "decimal"),
		strings.Contains(dt, "real"),
		strings.Contains(dt, "double"),
		strings.Contains(dt, "float"),
		strings.Contains(dt, "money"):
		return models.TypeNumeric
	case strings.Contains(dt, "timestamp"),
		strings.Contains(dt, "datetime"),
		strings.Contains(dt, "date"),
		strings.Contains(dt, "time"):
		return models.TypeDatetime
	default:
		return models.TypeString
	}
}
