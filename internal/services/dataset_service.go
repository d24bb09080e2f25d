package services

import (
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
	"time"

	"github.com/accoumar12/dashboard/internal/database"
	"github.com/accoumar12/dashboard/internal/models"
)

// Snapshot bundles everything derived from one dataset activation: the
// schema, the relationship graph built from it, and the handle they were
// introspected over. A snapshot is immutable once published; re-activation
// replaces it as a unit.
type Snapshot struct {
	Schema      *models.Schema
	Graph       *RelationshipGraph
	DB          *sql.DB
	Dialect     database.Dialect
	SessionID   string
	Version     uint64
	ActivatedAt time.Time
}

// DatasetService owns the process-wide active dataset. Readers load the
// current snapshot with a single atomic pointer read; activation swaps the
// pointer after the new snapshot is fully built, so concurrent queries see
// either the old or the new state, never a mix.
type DatasetService struct {
	schemaService *SchemaService

	mu      sync.Mutex // serializes activations
	version uint64
	current atomic.Pointer[Snapshot]
}

func NewDatasetService(schemaService *SchemaService) *DatasetService {
	return &DatasetService{schemaService: schemaService}
}

// Activate introspects the handle, builds the relationship graph and
// publishes the new snapshot. The schema and graph are rebuilt synchronously
// before Activate returns, so the very next query sees the new dataset. On
// failure the previous snapshot stays active.
func (s *DatasetService) Activate(ctx context.Context, sessionID string, db *sql.DB, dialect database.Dialect) (*Snapshot, error) {
	schema, err := s.schemaService.Analyze(ctx, db, dialect)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	snap := &Snapshot{
		Schema:      schema,
		Graph:       NewRelationshipGraph(schema),
		DB:          db,
		Dialect:     dialect,
		SessionID:   sessionID,
		Version:     s.version,
		ActivatedAt: time.Now().UTC(),
	}
	s.current.Store(snap)
	return snap, nil
}

// Current returns the active snapshot, or nil when no dataset has been
// activated yet.
func (s *DatasetService) Current() *Snapshot {
	return s.current.Load()
}
