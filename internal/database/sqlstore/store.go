package sqlstore

import (
	"database/sql"
	"time"

	"github.com/kozaktomas/photo-culler/internal/database"
)

// Store implements database.Store on top of a Pool.
type Store struct {
	*ProjectRepository
	*PhotoRepository
	pool *Pool
}

var _ database.Store = (*Store)(nil)

// NewStore wraps an already-migrated pool.
func NewStore(pool *Pool) *Store {
	return &Store{
		ProjectRepository: NewProjectRepository(pool),
		PhotoRepository:   NewPhotoRepository(pool),
		pool:              pool,
	}
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *Pool {
	return s.pool
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
