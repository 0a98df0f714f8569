package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/episcan/pkg/episcan/internalerr"
	"github.com/cognicore/episcan/pkg/episcan/store"
)

// timeLayout is fixed-width so emitted_at sorts chronologically as text
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	// Enable foreign keys
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS results (
	run_id TEXT PRIMARY KEY,
	episode_id TEXT UNIQUE NOT NULL,
	tier TEXT NOT NULL,
	emitted_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS entities (
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	category TEXT,
	brand TEXT,
	confidence REAL NOT NULL,
	mention_count INTEGER NOT NULL,
	fields TEXT NOT NULL,
	sources TEXT NOT NULL,
	inferred INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY(run_id, position),
	FOREIGN KEY(run_id) REFERENCES results(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_entities_brand ON entities(kind, brand);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveResult replaces the stored result for the episode in one transaction
func (s *sqliteStore) SaveResult(ctx context.Context, r store.Result) error {
	if r.EpisodeID == "" || r.RunID == "" {
		return fmt.Errorf("save result: %w", internalerr.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// foreign_keys is per connection, so do not rely on the cascade
	if _, err := tx.ExecContext(ctx, `
DELETE FROM entities WHERE run_id IN (SELECT run_id FROM results WHERE episode_id = ?);
`, r.EpisodeID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE episode_id = ?`, r.EpisodeID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO results (run_id, episode_id, tier, emitted_at)
VALUES (?, ?, ?, ?);
`, r.RunID, r.EpisodeID, r.Tier, r.EmittedAt.UTC().Format(timeLayout)); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO entities (run_id, position, kind, name, category, brand, confidence, mention_count, fields, sources, inferred)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range r.Entities {
		fieldsJSON, err := json.Marshal(e.Fields)
		if err != nil {
			return err
		}
		sources := e.Sources
		if sources == nil {
			sources = []string{}
		}
		sourcesJSON, err := json.Marshal(sources)
		if err != nil {
			return err
		}
		inferred := 0
		if e.Inferred {
			inferred = 1
		}
		if _, err := stmt.ExecContext(ctx, r.RunID, i, e.Kind, e.Name, e.Category, e.Fields.Brand,
			e.Confidence, e.MentionCount, string(fieldsJSON), string(sourcesJSON), inferred); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetResult retrieves the stored result for an episode
func (s *sqliteStore) GetResult(ctx context.Context, episodeID string) (store.Result, error) {
	var (
		r       store.Result
		emitted string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT run_id, episode_id, tier, emitted_at FROM results WHERE episode_id = ?;
`, episodeID).Scan(&r.RunID, &r.EpisodeID, &r.Tier, &emitted)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Result{}, internalerr.ErrNotFound
	}
	if err != nil {
		return store.Result{}, err
	}
	if r.EmittedAt, err = time.Parse(timeLayout, emitted); err != nil {
		return store.Result{}, fmt.Errorf("parse emitted_at %q: %w", emitted, err)
	}
	if r.Entities, err = s.entities(ctx, r.RunID); err != nil {
		return store.Result{}, err
	}
	return r, nil
}

// ListResults returns up to limit results, most recent first
func (s *sqliteStore) ListResults(ctx context.Context, limit int) ([]store.Result, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, episode_id, tier, emitted_at
FROM results
ORDER BY emitted_at DESC, run_id DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, err
	}

	var results []store.Result
	for rows.Next() {
		var (
			r       store.Result
			emitted string
		)
		if err := rows.Scan(&r.RunID, &r.EpisodeID, &r.Tier, &emitted); err != nil {
			rows.Close()
			return nil, err
		}
		if r.EmittedAt, err = time.Parse(timeLayout, emitted); err != nil {
			rows.Close()
			return nil, fmt.Errorf("parse emitted_at %q: %w", emitted, err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range results {
		ents, err := s.entities(ctx, results[i].RunID)
		if err != nil {
			return nil, err
		}
		results[i].Entities = ents
	}
	return results, nil
}

// BrandMentions aggregates stored item entities per brand
func (s *sqliteStore) BrandMentions(ctx context.Context) ([]store.BrandStat, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT e.brand, COUNT(DISTINCT r.episode_id), SUM(e.mention_count), AVG(e.confidence)
FROM entities e
JOIN results r ON r.run_id = e.run_id
WHERE e.kind = 'Item' AND e.brand IS NOT NULL AND e.brand != ''
GROUP BY e.brand
ORDER BY e.brand;
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []store.BrandStat
	for rows.Next() {
		var st store.BrandStat
		if err := rows.Scan(&st.Brand, &st.Episodes, &st.Mentions, &st.AvgConfidence); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func (s *sqliteStore) entities(ctx context.Context, runID string) ([]store.Entity, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT kind, name, category, confidence, mention_count, fields, sources, inferred
FROM entities
WHERE run_id = ?
ORDER BY position;
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Entity
	for rows.Next() {
		var (
			e           store.Entity
			category    sql.NullString
			fieldsJSON  string
			sourcesJSON string
			inferred    int
		)
		if err := rows.Scan(&e.Kind, &e.Name, &category, &e.Confidence, &e.MentionCount, &fieldsJSON, &sourcesJSON, &inferred); err != nil {
			return nil, err
		}
		e.Category = category.String
		e.Inferred = inferred != 0
		if err := json.Unmarshal([]byte(fieldsJSON), &e.Fields); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(sourcesJSON), &e.Sources); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
