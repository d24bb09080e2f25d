package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/accoumar12/dashboard/internal/models"
)

// SQLiteSchemaRepository introspects a SQLite database file through the
// sqlite_master catalog and PRAGMA statements.
type SQLiteSchemaRepository struct {
	db *sql.DB
}

func NewSQLiteSchemaRepository(db *sql.DB) *SQLiteSchemaRepository {
	return &SQLiteSchemaRepository{db: db}
}

func (r *SQLiteSchemaRepository) GetTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func (r *SQLiteSchemaRepository) GetColumns(ctx context.Context, table string) ([]models.Column, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []models.Column
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		columns = append(columns, models.Column{
			Name:       name,
			DataType:   typ,
			Nullable:   notNull == 0 && pk == 0,
			PrimaryKey: pk > 0,
		})
	}
	return columns, rows.Err()
}

func (r *SQLiteSchemaRepository) GetPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	columns, err := r.GetColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	var pks []string
	for _, col := range columns {
		if col.PrimaryKey {
			pks = append(pks, col.Name)
		}
	}
	return pks, nil
}

func (r *SQLiteSchemaRepository) GetForeignKeys(ctx context.Context, table string) ([]models.ForeignKey, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []models.ForeignKey
	lastID := -1
	for rows.Next() {
		var (
			id       int
			seq      int
			refTable string
			fromCol  string
			toCol    sql.NullString
			onUpdate string
			onDelete string
			match    string
		)
		if err := rows.Scan(&id, &seq, &refTable, &fromCol, &toCol, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		// A NULL "to" column means the constraint references the target's
		// implicit primary key; the schema service resolves those after all
		// tables are loaded.
		if id == lastID {
			n := len(fks) - 1
			fks[n].FromColumns = append(fks[n].FromColumns, fromCol)
			fks[n].ToColumns = append(fks[n].ToColumns, toCol.String)
			continue
		}
		lastID = id
		fks = append(fks, models.ForeignKey{
			ConstraintName: fmt.Sprintf("%s_fk_%d", table, id),
			FromTable:      table,
			FromColumns:    []string{fromCol},
			ToTable:        refTable,
			ToColumns:      []string{toCol.String},
		})
	}
	return fks, rows.Err()
}

// quoteIdent double-quotes an identifier, escaping embedded quotes. Table and
// column names originate from catalog introspection but may still contain
// arbitrary characters in uploaded dumps.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
