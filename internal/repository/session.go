package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"leaguesync/importer/internal/metrics"
)

// Session is a batch-scoped database connection. Long-running bulk loads
// rotate the underlying connection once its age OR operation count exceeds
// the profile limits, reacquiring a fresh one from the pool to avoid
// server-side session exhaustion. Rotation happens only between batches,
// never mid-transaction.
type Session struct {
	db         *Database
	conn       *pgxpool.Conn
	acquiredAt time.Time
	ops        int
}

// NewSession acquires a dedicated connection from the pool.
func (db *Database) NewSession(ctx context.Context) (*Session, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session connection: %w", err)
	}
	return &Session{db: db, conn: conn, acquiredAt: time.Now()}, nil
}

// Conn returns the current underlying connection.
func (s *Session) Conn() *pgxpool.Conn {
	return s.conn
}

// Record counts n operations against the rotation budget.
func (s *Session) Record(n int) {
	s.ops += n
}

// RotateIfNeeded swaps the connection when either the age or the operation
// limit has been exceeded. Call only at a batch boundary.
func (s *Session) RotateIfNeeded(ctx context.Context) error {
	profile := s.db.Profile()

	age := time.Since(s.acquiredAt)
	if age < profile.SessionMaxAge && s.ops < profile.SessionMaxOps {
		return nil
	}

	s.conn.Release()
	conn, err := s.db.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to rotate session connection: %w", err)
	}

	log.Debug().
		Dur("age", age).
		Int("ops", s.ops).
		Msg("Session connection rotated")
	metrics.SessionRotations.Inc()

	s.conn = conn
	s.acquiredAt = time.Now()
	s.ops = 0
	return nil
}

// Close releases the connection back to the pool.
func (s *Session) Close() {
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
}
