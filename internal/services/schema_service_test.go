package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/accoumar12/dashboard/internal/database"
	"github.com/accoumar12/dashboard/internal/models"
)

func analyzeFixture(t *testing.T, stmts []string) *models.Schema {
	t.Helper()

	path := filepath.Join(t.TempDir(), "schema.db")
	db, err := database.OpenSQLite(path)
	if err != nil {
		t.Fatalf("opening fixture database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("executing %q: %v", stmt, err)
		}
	}

	schema, err := NewSchemaService().Analyze(context.Background(), db, database.DialectSQLite)
	if err != nil {
		t.Fatalf("analyzing schema: %v", err)
	}
	return schema
}

func TestAnalyzeSQLite(t *testing.T) {
	schema := analyzeFixture(t, []string{
		`CREATE TABLE authors (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			born DATE,
			verified BOOLEAN NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE books (
			id INTEGER PRIMARY KEY,
			author_id INTEGER NOT NULL REFERENCES authors(id),
			title TEXT NOT NULL,
			price REAL
		)`,
	})

	if len(schema.Tables) != 2 {
		t.Fatalf("expected 2 tables, got %d", len(schema.Tables))
	}

	authors := schema.Table("authors")
	if authors == nil {
		t.Fatal("authors table missing")
	}

	id := authors.Column("id")
	if id == nil || !id.PrimaryKey || id.Category != models.TypeNumeric {
		t.Errorf("unexpected id column: %+v", id)
	}
	if name := authors.Column("name"); name == nil || name.Nullable || name.Category != models.TypeString {
		t.Errorf("unexpected name column: %+v", name)
	}
	if born := authors.Column("born"); born == nil || !born.Nullable || born.Category != models.TypeDatetime {
		t.Errorf("unexpected born column: %+v", born)
	}
	if verified := authors.Column("verified"); verified == nil || verified.Category != models.TypeBoolean {
		t.Errorf("unexpected verified column: %+v", verified)
	}

	if len(schema.Relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(schema.Relationships))
	}
	rel := schema.Relationships[0]
	if rel.FromTable != "books" || rel.ToTable != "authors" {
		t.Errorf("unexpected relationship %s -> %s", rel.FromTable, rel.ToTable)
	}
	if len(rel.FromColumns) != 1 || rel.FromColumns[0] != "author_id" || rel.ToColumns[0] != "id" {
		t.Errorf("unexpected relationship columns: %v -> %v", rel.FromColumns, rel.ToColumns)
	}
}

func TestAnalyzeImplicitPrimaryKeyReference(t *testing.T) {
	// REFERENCES without a column list points at the target's primary key.
	schema := analyzeFixture(t, []string{
		`CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE players (id INTEGER PRIMARY KEY, team_id INTEGER REFERENCES teams)`,
	})

	if len(schema.Relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(schema.Relationships))
	}
	rel := schema.Relationships[0]
	if len(rel.ToColumns) != 1 || rel.ToColumns[0] != "id" {
		t.Errorf("implicit reference not resolved to primary key: %v", rel.ToColumns)
	}
}

func TestAnalyzeCompositeForeignKey(t *testing.T) {
	schema := analyzeFixture(t, []string{
		`CREATE TABLE regions (
			country TEXT NOT NULL,
			code TEXT NOT NULL,
			PRIMARY KEY (country, code)
		)`,
		`CREATE TABLE cities (
			id INTEGER PRIMARY KEY,
			country TEXT NOT NULL,
			region_code TEXT NOT NULL,
			FOREIGN KEY (country, region_code) REFERENCES regions (country, code)
		)`,
	})

	regions := schema.Table("regions")
	if regions == nil {
		t.Fatal("regions table missing")
	}
	pks := regions.PrimaryKeyColumns()
	if len(pks) != 2 || pks[0] != "country" || pks[1] != "code" {
		t.Errorf("unexpected composite primary key: %v", pks)
	}

	if len(schema.Relationships) != 1 {
		t.Fatalf("expected 1 relationship, got %d", len(schema.Relationships))
	}
	rel := schema.Relationships[0]
	if len(rel.FromColumns) != 2 || rel.FromColumns[0] != "country" || rel.FromColumns[1] != "region_code" {
		t.Errorf("unexpected source columns: %v", rel.FromColumns)
	}
	if len(rel.ToColumns) != 2 || rel.ToColumns[0] != "country" || rel.ToColumns[1] != "code" {
		t.Errorf("unexpected target columns: %v", rel.ToColumns)
	}
}

func TestAnalyzeDropsDanglingConstraint(t *testing.T) {
	// SQLite accepts foreign keys into tables that do not exist as long as
	// enforcement is off; dirty dumps carry these.
	schema := analyzeFixture(t, []string{
		`CREATE TABLE notes (id INTEGER PRIMARY KEY, owner_id INTEGER REFERENCES ghosts(id))`,
	})

	if len(schema.Relationships) != 0 {
		t.Errorf("expected dangling constraint to be dropped, got %v", schema.Relationships)
	}
}

func TestAnalyzeEmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := database.OpenSQLite(path)
	if err != nil {
		t.Fatalf("opening fixture database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = NewSchemaService().Analyze(context.Background(), db, database.DialectSQLite)
	var serr *models.SchemaExtractionError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SchemaExtractionError for empty database, got %v", err)
	}
}

func TestColumnCategory(t *testing.T) {
	tests := []struct {
		dataType string
		want     models.ColumnType
	}{
		{"INTEGER", models.TypeNumeric},
		{"bigint", models.TypeNumeric},
		{"NUMERIC(10,2)", models.TypeNumeric},
		{"double precision", models.TypeNumeric},
		{"BOOLEAN", models.TypeBoolean},
		{"bool", models.TypeBoolean},
		{"timestamp with time zone", models.TypeDatetime},
		{"DATETIME", models.TypeDatetime},
		{"DATE", models.TypeDatetime},
		{"TEXT", models.TypeString},
		{"character varying(255)", models.TypeString},
		{"", models.TypeString},
	}

	for _, tt := range tests {
		if got := columnCategory(tt.dataType); got != tt.want {
			t.Errorf("columnCategory(%q) = %q, want %q", tt.dataType, got, tt.want)
		}
	}
}
