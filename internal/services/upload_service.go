package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/accoumar12/dashboard/internal/config"
	"github.com/accoumar12/dashboard/internal/database"
	"github.com/accoumar12/dashboard/internal/models"
)

// sqliteMagic is the fixed 16-byte header of every SQLite database file.
var sqliteMagic = []byte("SQLite format 3\x00")

var allowedExtensions = []string{".db", ".sqlite", ".sqlite3"}

// UploadService validates uploaded SQLite dumps, persists them under the
// configured upload directory, and turns them into activated sessions.
type UploadService struct {
	settings *config.Settings
	sessions *SessionService
}

func NewUploadService(settings *config.Settings, sessions *SessionService) *UploadService {
	return &UploadService{settings: settings, sessions: sessions}
}

// HandleUpload runs the full upload pipeline: validate, store, register a
// session, and activate it. The new schema is built before HandleUpload
// returns, so the caller's next query already sees the uploaded dataset.
// Nothing is left behind on any failure.
func (s *UploadService) HandleUpload(ctx context.Context, file *multipart.FileHeader) (*models.SessionInfo, error) {
	if err := s.validate(file); err != nil {
		return nil, err
	}

	path, err := s.store(file)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Create(path, file.Filename)
	if err != nil {
		os.Remove(path)
		return nil, &models.UploadValidationError{Reason: "database validation failed: " + err.Error()}
	}

	if _, err := s.sessions.Activate(ctx, session.SessionID); err != nil {
		if delErr := s.sessions.Delete(session.SessionID); delErr != nil {
			log.Printf("Failed to roll back session %s: %v", session.SessionID, delErr)
		}
		return nil, err
	}

	info := s.sessions.toInfo(session)
	return &info, nil
}

func (s *UploadService) validate(file *multipart.FileHeader) error {
	if file.Filename == "" {
		return &models.UploadValidationError{Reason: "no filename provided"}
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range allowedExtensions {
		if ext == e {
			allowed = true
			break
		}
	}
	if !allowed {
		return &models.UploadValidationError{Reason: "invalid file extension, only .db, .sqlite, .sqlite3 are allowed"}
	}

	if max := s.settings.MaxUploadSizeBytes(); file.Size > max {
		return &models.UploadValidationError{
			Reason: fmt.Sprintf("file too large (%.1fMB), maximum size is %dMB",
				float64(file.Size)/(1024*1024), s.settings.MaxUploadSizeMB),
		}
	}

	src, err := file.Open()
	if err != nil {
		return &models.UploadValidationError{Reason: "failed to read uploaded file: " + err.Error()}
	}
	defer src.Close()

	header := make([]byte, len(sqliteMagic))
	if _, err := io.ReadFull(src, header); err != nil || !bytes.Equal(header, sqliteMagic) {
		return &models.UploadValidationError{Reason: "invalid SQLite file format (magic bytes mismatch)"}
	}
	return nil
}

// store copies the upload into the upload directory under a fresh UUID name
// and probes it with a trivial query to catch corrupt files early.
func (s *UploadService) store(file *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(s.settings.UploadDir, 0o755); err != nil {
		return "", &models.UploadValidationError{Reason: "failed to prepare upload directory: " + err.Error()}
	}

	src, err := file.Open()
	if err != nil {
		return "", &models.UploadValidationError{Reason: "failed to read uploaded file: " + err.Error()}
	}
	defer src.Close()

	path := filepath.Join(s.settings.UploadDir, uuid.NewString()+".db")
	dst, err := os.Create(path)
	if err != nil {
		return "", &models.UploadValidationError{Reason: "failed to store uploaded file: " + err.Error()}
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", &models.UploadValidationError{Reason: "failed to store uploaded file: " + err.Error()}
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", &models.UploadValidationError{Reason: "failed to store uploaded file: " + err.Error()}
	}

	if err := probeSQLite(path); err != nil {
		os.Remove(path)
		return "", &models.UploadValidationError{Reason: "database validation failed: " + err.Error()}
	}
	return path, nil
}

func probeSQLite(path string) error {
	db, err := database.OpenSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	var one int
	return db.QueryRow("SELECT 1").Scan(&one)
}
