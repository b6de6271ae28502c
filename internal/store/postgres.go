package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/listing-optimizer/internal/types"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS keywords (
	seq         BIGSERIAL,
	id          TEXT PRIMARY KEY,
	term        TEXT NOT NULL,
	term_key    TEXT NOT NULL,
	volume      INTEGER NOT NULL,
	competition DOUBLE PRECISION NOT NULL,
	weight      DOUBLE PRECISION,
	tags        TEXT[] NOT NULL DEFAULT '{}',
	notes       TEXT NOT NULL DEFAULT '',
	score       DOUBLE PRECISION,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL,
	CONSTRAINT keywords_term_key_unique UNIQUE (term_key)
);
CREATE TABLE IF NOT EXISTS projects (
	seq         BIGSERIAL,
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	keyword_ids TEXT[] NOT NULL DEFAULT '{}',
	components  JSONB,
	created_at  TIMESTAMPTZ NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const termKeyConstraint = "keywords_term_key_unique"

// Postgres is a Store backed by a PostgreSQL connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool, verifies it and applies the schema.
func ConnectPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if databaseURL == "" {
		return nil, &OpenError{Driver: DriverPostgres, Message: "database URL is empty"}
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &OpenError{Driver: DriverPostgres, Message: "failed to connect to database", Cause: err}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &OpenError{Driver: DriverPostgres, Message: "failed to ping database", Cause: err}
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, &OpenError{Driver: DriverPostgres, Message: "failed to apply schema", Cause: err}
	}

	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool
func (db *Postgres) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}

// ListKeywords returns keywords in insertion order.
func (db *Postgres) ListKeywords(ctx context.Context) ([]types.Keyword, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+keywordColumns+` FROM keywords ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	defer rows.Close()

	keywords := []types.Keyword{}
	for rows.Next() {
		kw, err := scanPostgresKeyword(rows)
		if err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	return keywords, nil
}

func (db *Postgres) GetKeyword(ctx context.Context, id string) (*types.Keyword, error) {
	kw, err := scanPostgresKeyword(db.pool.QueryRow(ctx, `SELECT `+keywordColumns+` FROM keywords WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("keyword", id)
	}
	if err != nil {
		return nil, err
	}
	return &kw, nil
}

func (db *Postgres) CreateKeyword(ctx context.Context, kw types.Keyword) (*types.Keyword, error) {
	kw, err := prepareKeyword(kw)
	if err != nil {
		return nil, err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO keywords (id, term, term_key, volume, competition, weight, tags, notes, score, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		kw.ID, kw.Term, kw.NormalizedTerm(), kw.Volume, kw.Competition, kw.Weight,
		tagsToStrings(kw.Tags), kw.Notes, kw.Score, kw.CreatedAt, kw.UpdatedAt,
	)
	if err != nil {
		return nil, postgresKeywordWriteError(err, kw)
	}
	return &kw, nil
}

func (db *Postgres) UpdateKeyword(ctx context.Context, kw types.Keyword) (*types.Keyword, error) {
	existing, err := db.GetKeyword(ctx, kw.ID)
	if err != nil {
		return nil, err
	}
	kw, err = prepareKeywordUpdate(kw, *existing)
	if err != nil {
		return nil, err
	}

	tag, err := db.pool.Exec(ctx,
		`UPDATE keywords SET term = $1, term_key = $2, volume = $3, competition = $4, weight = $5, tags = $6,
		 notes = $7, score = $8, updated_at = $9 WHERE id = $10`,
		kw.Term, kw.NormalizedTerm(), kw.Volume, kw.Competition, kw.Weight, tagsToStrings(kw.Tags),
		kw.Notes, kw.Score, kw.UpdatedAt, kw.ID,
	)
	if err != nil {
		return nil, postgresKeywordWriteError(err, kw)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFound("keyword", kw.ID)
	}
	return &kw, nil
}

func (db *Postgres) DeleteKeyword(ctx context.Context, id string) error {
	return db.deleteByID(ctx, "keywords", "keyword", id)
}

func (db *Postgres) SaveScores(ctx context.Context, scores map[string]float64) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updatedAt := now()
	for id, score := range scores {
		tag, err := tx.Exec(ctx, `UPDATE keywords SET score = $1, updated_at = $2 WHERE id = $3`, score, updatedAt, id)
		if err != nil {
			return fmt.Errorf("failed to save score for %s: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return notFound("keyword", id)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit scores: %w", err)
	}
	return nil
}

// ListProjects returns projects in insertion order.
func (db *Postgres) ListProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := db.pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []types.Project{}
	for rows.Next() {
		p, err := scanPostgresProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (db *Postgres) GetProject(ctx context.Context, id string) (*types.Project, error) {
	p, err := scanPostgresProject(db.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (db *Postgres) CreateProject(ctx context.Context, p types.Project) (*types.Project, error) {
	p, err := prepareProject(p)
	if err != nil {
		return nil, err
	}
	_, components, err := encodeProject(p)
	if err != nil {
		return nil, err
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO projects (id, name, keyword_ids, components, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.KeywordIDs, nullableText(components), p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, idConflict("project", p.ID)
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &p, nil
}

func (db *Postgres) UpdateProject(ctx context.Context, p types.Project) (*types.Project, error) {
	existing, err := db.GetProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p, err = prepareProjectUpdate(p, *existing)
	if err != nil {
		return nil, err
	}
	_, components, err := encodeProject(p)
	if err != nil {
		return nil, err
	}

	_, err = db.pool.Exec(ctx,
		`UPDATE projects SET name = $1, keyword_ids = $2, components = $3, updated_at = $4 WHERE id = $5`,
		p.Name, p.KeywordIDs, nullableText(components), p.UpdatedAt, p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return &p, nil
}

func (db *Postgres) DeleteProject(ctx context.Context, id string) error {
	return db.deleteByID(ctx, "projects", "project", id)
}

func (db *Postgres) GetSetting(ctx context.Context, key string, dst any) error {
	var value []byte
	err := db.pool.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound("setting", key)
	}
	if err != nil {
		return fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return nil
}

func (db *Postgres) PutSetting(ctx context.Context, key string, value any) error {
	if err := validateSettingKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}
	_, err = db.pool.Exec(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`,
		key, string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (db *Postgres) deleteByID(ctx context.Context, table, kind, id string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(kind, id)
	}
	return nil
}

func scanPostgresKeyword(row pgx.Row) (types.Keyword, error) {
	var (
		kw   types.Keyword
		tags []string
	)
	err := row.Scan(&kw.ID, &kw.Term, &kw.Volume, &kw.Competition, &kw.Weight, &tags, &kw.Notes, &kw.Score, &kw.CreatedAt, &kw.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return kw, err
		}
		return kw, fmt.Errorf("failed to scan keyword: %w", err)
	}
	kw.Tags = stringsToTags(tags)
	kw.CreatedAt = kw.CreatedAt.UTC()
	kw.UpdatedAt = kw.UpdatedAt.UTC()
	return kw, nil
}

func scanPostgresProject(row pgx.Row) (types.Project, error) {
	var (
		p          types.Project
		components []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &p.KeywordIDs, &components, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan project: %w", err)
	}
	if p.KeywordIDs == nil {
		p.KeywordIDs = []string{}
	}
	if components != nil {
		p.Components = &types.ProductTitleComponents{}
		if err := json.Unmarshal(components, p.Components); err != nil {
			return p, fmt.Errorf("failed to decode components of project %s: %w", p.ID, err)
		}
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

func postgresKeywordWriteError(err error, kw types.Keyword) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if pgErr.ConstraintName == termKeyConstraint {
			return termConflict(kw.Term)
		}
		return idConflict("keyword", kw.ID)
	}
	return fmt.Errorf("failed to write keyword %s: %w", kw.ID, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
