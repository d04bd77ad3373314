package store

import (
	"context"
	"database/sql"
)

// TestingRepository wipes all application state. It backs the
// /api/testing/reset endpoint used by the browser test suite and must
// never be wired up in production configuration.
type TestingRepository struct {
	db *sql.DB
}

func NewTestingRepository(db *sql.DB) *TestingRepository {
	return &TestingRepository{db: db}
}

// Reset removes every user, session, and blog entry and restarts the id
// sequences so test runs start from identical state.
func (r *TestingRepository) Reset(ctx context.Context) error {
	const query = `TRUNCATE blogs, sessions, users RESTART IDENTITY CASCADE`
	_, err := r.db.ExecContext(ctx, query)
	return err
}
