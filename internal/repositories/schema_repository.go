package repositories

import (
	"context"
	"database/sql"

	"github.com/accoumar12/dashboard/internal/models"
)

// SchemaIntrospector enumerates the structure of a live database: tables,
// columns, primary keys and outgoing foreign keys. Implementations exist per
// dialect.
type SchemaIntrospector interface {
	GetTables(ctx context.Context) ([]string, error)
	GetColumns(ctx context.Context, table string) ([]models.Column, error)
	GetPrimaryKeys(ctx context.Context, table string) ([]string, error)
	GetForeignKeys(ctx context.Context, table string) ([]models.ForeignKey, error)
}

// PostgresSchemaRepository introspects a Postgres database. Table and column
// listings come from information_schema; foreign keys come from pg_constraint
// so composite keys keep their column order.
type PostgresSchemaRepository struct {
	db         *sql.DB
	schemaName string
}

func NewPostgresSchemaRepository(db *sql.DB) *PostgresSchemaRepository {
	return &PostgresSchemaRepository{db: db, schemaName: "public"}
}

func (r *PostgresSchemaRepository) GetTables(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	rows, err := r.db.QueryContext(ctx, query, r.schemaName)
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

func (r *PostgresSchemaRepository) GetColumns(ctx context.Context, table string) ([]models.Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position
	`

	rows, err := r.db.QueryContext(ctx, query, r.schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []models.Column
	for rows.Next() {
		var col models.Column
		var nullable string
		if err := rows.Scan(&col.Name, &col.DataType, &nullable); err != nil {
			return nil, err
		}
		col.Nullable = nullable == "YES"
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (r *PostgresSchemaRepository) GetPrimaryKeys(ctx context.Context, table string) ([]string, error) {
	query := `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = $1
			AND tc.table_name = $2
		ORDER BY kcu.ordinal_position
	`

	rows, err := r.db.QueryContext(ctx, query, r.schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pks []string
	for rows.Next() {
		var pk string
		if err := rows.Scan(&pk); err != nil {
			return nil, err
		}
		pks = append(pks, pk)
	}
	return pks, rows.Err()
}

func (r *PostgresSchemaRepository) GetForeignKeys(ctx context.Context, table string) ([]models.ForeignKey, error) {
	// information_schema.constraint_column_usage loses the pairing of source
	// and referenced columns for composite keys, so read pg_constraint and
	// unnest conkey/confkey in parallel.
	query := `
		SELECT
			fk.conname,
			src_att.attname AS from_column,
			tgt_cl.relname  AS to_table,
			tgt_att.attname AS to_column
		FROM (
			SELECT
				con.oid,
				con.conname,
				con.conrelid,
				con.confrelid,
				unnest(con.conkey)  AS src_attnum,
				unnest(con.confkey) AS tgt_attnum,
				generate_subscripts(con.conkey, 1) AS ord
			FROM pg_constraint con
			JOIN pg_class cl ON cl.oid = con.conrelid
			JOIN pg_namespace ns ON ns.oid = cl.relnamespace
			WHERE con.contype = 'f'
				AND ns.nspname = $1
				AND cl.relname = $2
		) fk
		JOIN pg_attribute src_att
			ON src_att.attrelid = fk.conrelid AND src_att.attnum = fk.src_attnum
		JOIN pg_class tgt_cl ON tgt_cl.oid = fk.confrelid
		JOIN pg_attribute tgt_att
			ON tgt_att.attrelid = fk.confrelid AND tgt_att.attnum = fk.tgt_attnum
		ORDER BY fk.conname, fk.ord
	`

	rows, err := r.db.QueryContext(ctx, query, r.schemaName, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []models.ForeignKey
	for rows.Next() {
		var constraint, fromCol, toTable, toCol string
		if err := rows.Scan(&constraint, &fromCol, &toTable, &toCol); err != nil {
			return nil, err
		}

		if n := len(fks); n > 0 && fks[n-1].ConstraintName == constraint {
			fks[n-1].FromColumns = append(fks[n-1].FromColumns, fromCol)
			fks[n-1].ToColumns = append(fks[n-1].ToColumns, toCol)
			continue
		}
		fks = append(fks, models.ForeignKey{
			ConstraintName: constraint,
			FromTable:      table,
			FromColumns:    []string{fromCol},
			ToTable:        toTable,
			ToColumns:      []string{toCol},
		})
	}
	return fks, rows.Err()
}
