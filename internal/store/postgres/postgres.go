// Package postgres implements internal/store.HardRequestStore against a
// Postgres-backed approved_hard_requests table, replacing the original's
// Firestore-backed approvedHardRequests collection query.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nurseward/rosterd/internal/roster"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store provides the approved-hard-request read path used by the solve
// pipeline.
type Store struct {
	pool *pgxpool.Pool
}

// New opens a connection pool against connString and verifies it with a
// ping before returning.
func New(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// RunMigrations executes every embedded migration file in name order. It is
// not transactional across files: a failure partway through leaves earlier
// migrations applied, matching the teacher's RunMigrations.
func (s *Store) RunMigrations(ctx context.Context) error {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	for _, filename := range files {
		content, err := fs.ReadFile(migrationsFS, "migrations/"+filename)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", filename, err)
		}
		if _, err := s.pool.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", filename, err)
		}
	}
	return nil
}

// ApprovedHardRequests fetches every approved hard request whose date falls
// in [start, end] for one of nurseIDs, the Go/SQL analogue of the original's
// Firestore `where('date', '>=', ...).where('date', '<=', ...).where
// ('nurseId', 'in', non_gov_ids)` query.
func (s *Store) ApprovedHardRequests(ctx context.Context, start, end time.Time, nurseIDs []string) ([]roster.HardRequest, error) {
	if len(nurseIDs) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT nurse_id, date
		FROM approved_hard_requests
		WHERE date >= $1 AND date <= $2 AND nurse_id = ANY($3)
	`, start, end, nurseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved hard requests: %w", err)
	}
	defer rows.Close()

	var out []roster.HardRequest
	for rows.Next() {
		var req roster.HardRequest
		if err := rows.Scan(&req.NurseID, &req.Date); err != nil {
			return nil, fmt.Errorf("failed to scan approved hard request: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approved hard requests: %w", err)
	}
	return out, nil
}
