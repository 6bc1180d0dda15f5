package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

var ErrDuplicateKey = errors.New("duplicate key violation")

// PostgresStore implements the Store interface using pgx/v5.
// The analysis column is JSONB; pgx marshals models.Analysis directly.
type PostgresStore struct {
	pool *pgxpool.Pool
	opts storeOptions
}

// NewPostgresStore creates a new PostgresStore. The store owns pool and
// closes it on Close.
func NewPostgresStore(pool *pgxpool.Pool, opts ...Option) *PostgresStore {
	return &PostgresStore{pool: pool, opts: buildOptions(opts)}
}

var _ Store = (*PostgresStore)(nil)

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const pgColumns = `id, video_id, video_url, title, analysis, created_at`

func (s *PostgresStore) Create(ctx context.Context, p NewSavedAnalysis) (*models.SavedAnalysis, error) {
	rec, err := s.opts.newRecord(p, time.Microsecond)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO saved_analyses (`+pgColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		rec.ID, rec.VideoID, rec.VideoURL, rec.Title, rec.Analysis, rec.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("create saved analysis: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.SavedAnalysis, error) {
	rec, err := scanPGRecord(s.pool.QueryRow(ctx,
		`SELECT `+pgColumns+` FROM saved_analyses WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get saved analysis: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.SavedAnalysis, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgColumns+` FROM saved_analyses ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list saved analyses: %w", err)
	}
	defer rows.Close()

	out := make([]*models.SavedAnalysis, 0)
	for rows.Next() {
		rec, err := scanPGRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saved analysis: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, id string, a models.Analysis) (*models.SavedAnalysis, error) {
	a = cloneAnalysis(a)
	rec, err := scanPGRecord(s.pool.QueryRow(ctx,
		`UPDATE saved_analyses SET title = $2, analysis = $3
		 WHERE id = $1
		 RETURNING `+pgColumns,
		id, models.TitleFor(a), a))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update saved analysis: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM saved_analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete saved analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPGRecord(row pgx.Row) (*models.SavedAnalysis, error) {
	var rec models.SavedAnalysis
	if err := row.Scan(&rec.ID, &rec.VideoID, &rec.VideoURL, &rec.Title, &rec.Analysis, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	if rec.Analysis.KeyPoints == nil {
		rec.Analysis.KeyPoints = []string{}
	}
	return &rec, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
