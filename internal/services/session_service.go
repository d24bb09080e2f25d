package services

import (
	"context"
	"database/sql"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/accoumar12/dashboard/internal/config"
	"github.com/accoumar12/dashboard/internal/database"
	"github.com/accoumar12/dashboard/internal/models"
)

// PlaygroundSessionID is the identifier of the built-in demo dataset. The
// playground can be activated like any session but never deleted.
const PlaygroundSessionID = "playground"

// DatabaseSession is one uploaded dataset: its SQLite file on disk and the
// open handle over it. The handle lives for the whole session so an older
// session can be re-activated without reopening the file.
type DatabaseSession struct {
	SessionID        string
	FilePath         string
	DB               *sql.DB
	CreatedAt        time.Time
	LastAccessed     time.Time
	FileSizeBytes    int64
	OriginalFilename string
}

// SessionService tracks uploaded dataset sessions plus the playground,
// activates them through the dataset service, and expires idle sessions in
// the background.
type SessionService struct {
	settings *config.Settings
	datasets *DatasetService

	mu         sync.Mutex
	sessions   map[string]*DatabaseSession
	playground *DatabaseSession

	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewSessionService(settings *config.Settings, datasets *DatasetService) *SessionService {
	return &SessionService{
		settings: settings,
		datasets: datasets,
		sessions: make(map[string]*DatabaseSession),
	}
}

// InitPlayground registers the bundled playground database. An absent
// playground file is an error only when the caller decides it is; startup
// treats it as a degraded-mode condition.
func (s *SessionService) InitPlayground() error {
	info, err := os.Stat(s.settings.PlaygroundDBPath)
	if err != nil {
		return &models.SessionNotFoundError{SessionID: PlaygroundSessionID}
	}

	db, err := database.OpenSQLite(s.settings.PlaygroundDBPath)
	if err != nil {
		return &models.InvalidSessionError{SessionID: PlaygroundSessionID, Reason: err.Error()}
	}

	now := time.Now().UTC()
	s.mu.Lock()
	s.playground = &DatabaseSession{
		SessionID:        PlaygroundSessionID,
		FilePath:         s.settings.PlaygroundDBPath,
		DB:               db,
		CreatedAt:        now,
		LastAccessed:     now,
		FileSizeBytes:    info.Size(),
		OriginalFilename: "playground.db",
	}
	s.mu.Unlock()

	log.Println("Session service initialized with playground database")
	return nil
}

// Create registers a new session over a validated SQLite file.
func (s *SessionService) Create(filePath, originalFilename string) (*DatabaseSession, error) {
	db, err := database.OpenSQLite(filePath)
	if err != nil {
		return nil, &models.InvalidSessionError{SessionID: "", Reason: err.Error()}
	}

	info, err := os.Stat(filePath)
	if err != nil {
		db.Close()
		return nil, &models.InvalidSessionError{SessionID: "", Reason: err.Error()}
	}

	now := time.Now().UTC()
	session := &DatabaseSession{
		SessionID:        uuid.NewString(),
		FilePath:         filePath,
		DB:               db,
		CreatedAt:        now,
		LastAccessed:     now,
		FileSizeBytes:    info.Size(),
		OriginalFilename: originalFilename,
	}

	s.mu.Lock()
	s.sessions[session.SessionID] = session
	s.mu.Unlock()

	log.Printf("Created session %s for file %s", session.SessionID, originalFilename)
	return session, nil
}

// Get returns the session and updates its last-accessed time.
func (s *SessionService) Get(sessionID string) (*DatabaseSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := s.lookup(sessionID)
	if session == nil {
		return nil, &models.SessionNotFoundError{SessionID: sessionID}
	}
	session.LastAccessed = time.Now().UTC()
	return session, nil
}

// Activate makes the session's dataset the process-wide active one. The
// schema and relationship graph are rebuilt before Activate returns.
func (s *SessionService) Activate(ctx context.Context, sessionID string) (*Snapshot, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return s.datasets.Activate(ctx, session.SessionID, session.DB, database.DialectSQLite)
}

// Delete disposes a session's handle and removes its file. The playground
// and the currently active session are protected.
func (s *SessionService) Delete(sessionID string) error {
	if sessionID == PlaygroundSessionID {
		return &models.InvalidSessionError{SessionID: sessionID, Reason: "cannot delete playground session"}
	}
	if snap := s.datasets.Current(); snap != nil && snap.SessionID == sessionID {
		return &models.InvalidSessionError{SessionID: sessionID, Reason: "cannot delete the active session"}
	}

	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	if ok {
		delete(s.sessions, sessionID)
	}
	s.mu.Unlock()

	if !ok {
		return &models.SessionNotFoundError{SessionID: sessionID}
	}

	session.DB.Close()
	if err := os.Remove(session.FilePath); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to delete file %s: %v", session.FilePath, err)
	}

	log.Printf("Deleted session %s", sessionID)
	return nil
}

// List returns the uploaded sessions, newest first. The playground is not
// listed; it is always available.
func (s *SessionService) List() []models.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]models.SessionInfo, 0, len(s.sessions))
	for _, session := range s.sessions {
		infos = append(infos, s.toInfo(session))
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos
}

func (s *SessionService) toInfo(session *DatabaseSession) models.SessionInfo {
	active := false
	if snap := s.datasets.Current(); snap != nil {
		active = snap.SessionID == session.SessionID
	}
	return models.SessionInfo{
		SessionID:        session.SessionID,
		OriginalFilename: session.OriginalFilename,
		FileSizeBytes:    session.FileSizeBytes,
		CreatedAt:        session.CreatedAt,
		LastAccessed:     session.LastAccessed,
		Active:           active,
	}
}

// lookup must be called with the mutex held.
func (s *SessionService) lookup(sessionID string) *DatabaseSession {
	if sessionID == PlaygroundSessionID {
		return s.playground
	}
	return s.sessions[sessionID]
}

// StartCleanup launches the background loop that deletes sessions idle past
// the expiry window.
func (s *SessionService) StartCleanup() {
	s.stopCleanup = make(chan struct{})
	s.cleanupDone = make(chan struct{})

	go func() {
		defer close(s.cleanupDone)
		ticker := time.NewTicker(s.settings.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.CleanupExpired()
			case <-s.stopCleanup:
				return
			}
		}
	}()

	log.Printf("Cleanup service started (expiry: %s, interval: %s)",
		s.settings.SessionExpiry, s.settings.CleanupInterval)
}

// StopCleanup stops the background loop and waits for it to exit.
func (s *SessionService) StopCleanup() {
	if s.stopCleanup == nil {
		return
	}
	close(s.stopCleanup)
	<-s.cleanupDone
	s.stopCleanup = nil
	log.Println("Cleanup service stopped")
}

// CleanupExpired deletes every session whose last access is older than the
// expiry window. Protected sessions are skipped, not failed.
func (s *SessionService) CleanupExpired() int {
	threshold := time.Now().UTC().Add(-s.settings.SessionExpiry)

	s.mu.Lock()
	var expired []string
	for id, session := range s.sessions {
		if session.LastAccessed.Before(threshold) {
			expired = append(expired, id)
		}
	}
	s.mu.Unlock()

	deleted := 0
	for _, id := range expired {
		if err := s.Delete(id); err != nil {
			log.Printf("Failed to delete expired session %s: %v", id, err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		log.Printf("Cleanup complete: %d sessions deleted", deleted)
	}
	return deleted
}

// Shutdown disposes every handle. Files are kept on disk.
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playground != nil {
		s.playground.DB.Close()
	}
	for _, session := range s.sessions {
		if err := session.DB.Close(); err != nil {
			log.Printf("Error disposing handle for session %s: %v", session.SessionID, err)
		}
	}
	log.Println("Session service shutdown complete")
}
