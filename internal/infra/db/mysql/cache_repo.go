package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_cache (
  repo        VARCHAR(255) PRIMARY KEY,
  result_json MEDIUMTEXT NOT NULL,
  written_at  TIMESTAMP NOT NULL
)`

type CacheRepo struct {
	db *sql.DB
}

func NewCacheRepo(ctx context.Context, db *sql.DB) (*CacheRepo, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, err
	}
	return &CacheRepo{db: db}, nil
}

// Get returns (nil, nil) on a miss; corrupt rows also count as misses.
func (r *CacheRepo) Get(ctx context.Context, key string) (*domain.ScoredResult, error) {
	var raw string
	err := r.db.QueryRowContext(ctx, `SELECT result_json FROM analysis_cache WHERE repo = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var res domain.ScoredResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		log.Printf("mysql cache: corrupt entry for %s: %v", key, err)
		return nil, nil
	}
	return &res, nil
}

func (r *CacheRepo) Put(ctx context.Context, key string, res *domain.ScoredResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO analysis_cache (repo, result_json, written_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE result_json = VALUES(result_json), written_at = VALUES(written_at)`,
		key, string(raw), time.Now().UTC())
	return err
}

func (r *CacheRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis_cache`).Scan(&n)
	return n, err
}
