package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Ronnakrit11/nextai-ytsummary/pkg/models"
)

// SQLiteStore implements Store on an embedded SQLite database via
// modernc.org/sqlite. created_at is stored as Unix nanoseconds and the
// analysis as a JSON document.
type SQLiteStore struct {
	db   *sql.DB
	opts storeOptions
}

// OpenSQLite opens (creating if needed) the database at path and applies migrations.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunSQLiteMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewSQLiteStore(db, opts...), nil
}

// NewSQLiteStore wraps an already migrated database. The store owns db.
func NewSQLiteStore(db *sql.DB, opts ...Option) *SQLiteStore {
	return &SQLiteStore{db: db, opts: buildOptions(opts)}
}

var _ Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const sqliteColumns = `id, video_id, video_url, title, analysis, created_at`

func (s *SQLiteStore) Create(ctx context.Context, p NewSavedAnalysis) (*models.SavedAnalysis, error) {
	rec, err := s.opts.newRecord(p, time.Nanosecond)
	if err != nil {
		return nil, err
	}

	doc, err := json.Marshal(rec.Analysis)
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO saved_analyses (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.VideoID, rec.VideoURL, rec.Title, string(doc), rec.CreatedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("create saved analysis: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.SavedAnalysis, error) {
	rec, err := scanSQLiteRecord(s.db.QueryRowContext(ctx,
		`SELECT `+sqliteColumns+` FROM saved_analyses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get saved analysis: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*models.SavedAnalysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM saved_analyses ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list saved analyses: %w", err)
	}
	defer rows.Close()

	out := make([]*models.SavedAnalysis, 0)
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan saved analysis: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Update(ctx context.Context, id string, a models.Analysis) (*models.SavedAnalysis, error) {
	a = cloneAnalysis(a)
	doc, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}

	rec, err := scanSQLiteRecord(s.db.QueryRowContext(ctx,
		`UPDATE saved_analyses SET title = ?, analysis = ?
		 WHERE id = ?
		 RETURNING `+sqliteColumns,
		models.TitleFor(a), string(doc), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update saved analysis: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete saved analysis: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete saved analysis: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (*models.SavedAnalysis, error) {
	var (
		rec       models.SavedAnalysis
		doc       string
		createdAt int64
	)
	if err := row.Scan(&rec.ID, &rec.VideoID, &rec.VideoURL, &rec.Title, &doc, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(doc), &rec.Analysis); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	if rec.Analysis.KeyPoints == nil {
		rec.Analysis.KeyPoints = []string{}
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	return &rec, nil
}
