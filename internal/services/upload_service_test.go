package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/accoumar12/dashboard/internal/config"
	"github.com/accoumar12/dashboard/internal/models"
)

func newUploadFixture(t *testing.T) (*UploadService, *SessionService) {
	t.Helper()

	settings := &config.Settings{
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 10,
		SessionExpiry:   time.Hour,
		CleanupInterval: time.Minute,
	}
	datasets := NewDatasetService(NewSchemaService())
	sessions := NewSessionService(settings, datasets)
	t.Cleanup(sessions.Shutdown)
	return NewUploadService(settings, sessions), sessions
}

// fileHeader packs raw bytes into a parsed multipart file header, the shape
// the upload pipeline receives from gin.
func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing form: %v", err)
	}

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("parsing form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

// sqliteBytes returns the raw content of a real SQLite database built from
// the given statements.
func sqliteBytes(t *testing.T, stmts ...string) []byte {
	t.Helper()

	path := newSQLiteFixtureFile(t, stmts...)
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading fixture file: %v", err)
	}
	return content
}

func TestHandleUpload(t *testing.T) {
	uploads, sessions := newUploadFixture(t)

	content := sqliteBytes(t,
		`CREATE TABLE pets (id INTEGER PRIMARY KEY, name TEXT)`,
		`INSERT INTO pets (id, name) VALUES (1, 'Rex')`,
	)

	info, err := uploads.HandleUpload(context.Background(), fileHeader(t, "pets.db", content))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !info.Active {
		t.Error("uploaded session should be active")
	}
	if info.OriginalFilename != "pets.db" {
		t.Errorf("unexpected filename %q", info.OriginalFilename)
	}

	// The dataset is queryable right away.
	session, err := sessions.Get(info.SessionID)
	if err != nil {
		t.Fatalf("session missing after upload: %v", err)
	}
	var name string
	if err := session.DB.QueryRow(`SELECT name FROM pets WHERE id = 1`).Scan(&name); err != nil {
		t.Fatalf("querying uploaded database: %v", err)
	}
	if name != "Rex" {
		t.Errorf("unexpected row: %q", name)
	}
}

func TestHandleUploadRejectsExtension(t *testing.T) {
	uploads, _ := newUploadFixture(t)

	content := sqliteBytes(t, `CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	_, err := uploads.HandleUpload(context.Background(), fileHeader(t, "dump.txt", content))
	var uerr *models.UploadValidationError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UploadValidationError, got %v", err)
	}
}

func TestHandleUploadRejectsBadMagic(t *testing.T) {
	uploads, _ := newUploadFixture(t)

	_, err := uploads.HandleUpload(context.Background(), fileHeader(t, "fake.db", []byte("definitely not a database file")))
	var uerr *models.UploadValidationError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UploadValidationError, got %v", err)
	}
}

func TestHandleUploadRejectsOversizedFile(t *testing.T) {
	settings := &config.Settings{
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 0,
		SessionExpiry:   time.Hour,
	}
	sessions := NewSessionService(settings, NewDatasetService(NewSchemaService()))
	t.Cleanup(sessions.Shutdown)
	uploads := NewUploadService(settings, sessions)

	content := sqliteBytes(t, `CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	_, err := uploads.HandleUpload(context.Background(), fileHeader(t, "big.db", content))
	var uerr *models.UploadValidationError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected UploadValidationError, got %v", err)
	}
}

func TestHandleUploadRollsBackOnActivationFailure(t *testing.T) {
	uploads, sessions := newUploadFixture(t)

	// A file with a valid header but no tables passes validation and then
	// fails schema analysis during activation.
	content := sqliteBytes(t,
		`CREATE TABLE doomed (id INTEGER PRIMARY KEY)`,
		`DROP TABLE doomed`,
	)

	_, err := uploads.HandleUpload(context.Background(), fileHeader(t, "empty.db", content))
	var serr *models.SchemaExtractionError
	if !errors.As(err, &serr) {
		t.Fatalf("expected SchemaExtractionError, got %v", err)
	}

	if infos := sessions.List(); len(infos) != 0 {
		t.Errorf("expected the failed session to be rolled back, got %+v", infos)
	}
}

func TestHandleUploadStoresUnderUploadDir(t *testing.T) {
	uploads, sessions := newUploadFixture(t)

	content := sqliteBytes(t, `CREATE TABLE t (id INTEGER PRIMARY KEY)`)
	info, err := uploads.HandleUpload(context.Background(), fileHeader(t, "keep.sqlite3", content))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	session, err := sessions.Get(info.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Ext(session.FilePath) != ".db" {
		t.Errorf("stored file should use the canonical extension, got %s", session.FilePath)
	}
	if _, err := os.Stat(session.FilePath); err != nil {
		t.Errorf("stored file missing: %v", err)
	}
}
