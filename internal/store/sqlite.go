package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/jonathan/listing-optimizer/internal/types"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS keywords (
	id          TEXT PRIMARY KEY,
	term        TEXT NOT NULL,
	term_key    TEXT NOT NULL UNIQUE,
	volume      INTEGER NOT NULL,
	competition REAL NOT NULL,
	weight      REAL,
	tags        TEXT NOT NULL DEFAULT '[]',
	notes       TEXT NOT NULL DEFAULT '',
	score       REAL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	keyword_ids TEXT NOT NULL DEFAULT '[]',
	components  TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// sqlitePragmas are applied to every pooled connection through the DSN.
var sqlitePragmas = []string{
	"foreign_keys(1)",
	"journal_mode(WAL)",
	"busy_timeout(10000)",
	"synchronous(NORMAL)",
}

const keywordColumns = `id, term, volume, competition, weight, tags, notes, score, created_at, updated_at`

// SQLite is a Store backed by a single SQLite database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating when needed) the database at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if path == "" {
		return nil, &OpenError{Driver: DriverSQLite, Message: "database path is empty"}
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, &OpenError{Driver: DriverSQLite, Message: "mkdir", Cause: err}
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, &OpenError{Driver: DriverSQLite, Message: "open", Cause: err}
	}
	if path == ":memory:" {
		// Each connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &OpenError{Driver: DriverSQLite, Message: "ping", Cause: err}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, &OpenError{Driver: DriverSQLite, Message: "apply schema", Cause: err}
	}
	return &SQLite{db: db}, nil
}

func sqliteDSN(path string) string {
	params := make([]string, 0, len(sqlitePragmas))
	for _, p := range sqlitePragmas {
		params = append(params, "_pragma="+p)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(params, "&")
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// ListKeywords returns keywords in insertion order.
func (s *SQLite) ListKeywords(ctx context.Context) ([]types.Keyword, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+keywordColumns+` FROM keywords ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	defer rows.Close()

	keywords := []types.Keyword{}
	for rows.Next() {
		kw, err := scanSQLiteKeyword(rows)
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

func (s *SQLite) GetKeyword(ctx context.Context, id string) (*types.Keyword, error) {
	kw, err := scanSQLiteKeyword(s.db.QueryRowContext(ctx, `SELECT `+keywordColumns+` FROM keywords WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("keyword", id)
	}
	if err != nil {
		return nil, err
	}
	return &kw, nil
}

func (s *SQLite) CreateKeyword(ctx context.Context, kw types.Keyword) (*types.Keyword, error) {
	kw, err := prepareKeyword(kw)
	if err != nil {
		return nil, err
	}
	tags, err := json.Marshal(tagsToStrings(kw.Tags))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO keywords (id, term, term_key, volume, competition, weight, tags, notes, score, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		kw.ID, kw.Term, kw.NormalizedTerm(), kw.Volume, kw.Competition, nullFloat(kw.Weight),
		string(tags), kw.Notes, nullFloat(kw.Score), formatTime(kw.CreatedAt), formatTime(kw.UpdatedAt),
	)
	if err != nil {
		return nil, sqliteKeywordWriteError(err, kw)
	}
	return &kw, nil
}

func (s *SQLite) UpdateKeyword(ctx context.Context, kw types.Keyword) (*types.Keyword, error) {
	existing, err := s.GetKeyword(ctx, kw.ID)
	if err != nil {
		return nil, err
	}
	kw, err = prepareKeywordUpdate(kw, *existing)
	if err != nil {
		return nil, err
	}
	tags, err := json.Marshal(tagsToStrings(kw.Tags))
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE keywords SET term = ?, term_key = ?, volume = ?, competition = ?, weight = ?, tags = ?,
		 notes = ?, score = ?, updated_at = ? WHERE id = ?`,
		kw.Term, kw.NormalizedTerm(), kw.Volume, kw.Competition, nullFloat(kw.Weight), string(tags),
		kw.Notes, nullFloat(kw.Score), formatTime(kw.UpdatedAt), kw.ID,
	)
	if err != nil {
		return nil, sqliteKeywordWriteError(err, kw)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, notFound("keyword", kw.ID)
	}
	return &kw, nil
}

func (s *SQLite) DeleteKeyword(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "keywords", "keyword", id)
}

func (s *SQLite) SaveScores(ctx context.Context, scores map[string]float64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	updatedAt := formatTime(now())
	for id, score := range scores {
		res, err := tx.ExecContext(ctx, `UPDATE keywords SET score = ?, updated_at = ? WHERE id = ?`, score, updatedAt, id)
		if err != nil {
			return fmt.Errorf("failed to save score for %s: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound("keyword", id)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scores: %w", err)
	}
	return nil
}

const projectColumns = `id, name, keyword_ids, components, created_at, updated_at`

// ListProjects returns projects in insertion order.
func (s *SQLite) ListProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects := []types.Project{}
	for rows.Next() {
		p, err := scanSQLiteProject(rows)
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

func (s *SQLite) GetProject(ctx context.Context, id string) (*types.Project, error) {
	p, err := scanSQLiteProject(s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *SQLite) CreateProject(ctx context.Context, p types.Project) (*types.Project, error) {
	p, err := prepareProject(p)
	if err != nil {
		return nil, err
	}
	ids, components, err := encodeProject(p)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, keyword_ids, components, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, string(ids), nullableText(components), formatTime(p.CreatedAt), formatTime(p.UpdatedAt),
	)
	if err != nil {
		if isSQLiteConstraint(err) {
			return nil, idConflict("project", p.ID)
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &p, nil
}

func (s *SQLite) UpdateProject(ctx context.Context, p types.Project) (*types.Project, error) {
	existing, err := s.GetProject(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p, err = prepareProjectUpdate(p, *existing)
	if err != nil {
		return nil, err
	}
	ids, components, err := encodeProject(p)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, keyword_ids = ?, components = ?, updated_at = ? WHERE id = ?`,
		p.Name, string(ids), nullableText(components), formatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return &p, nil
}

func (s *SQLite) DeleteProject(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "projects", "project", id)
}

func (s *SQLite) GetSetting(ctx context.Context, key string, dst any) error {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("setting", key)
	}
	if err != nil {
		return fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) PutSetting(ctx context.Context, key string, value any) error {
	if err := validateSettingKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), formatTime(now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) deleteByID(ctx context.Context, table, kind, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", kind, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound(kind, id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteKeyword(row rowScanner) (types.Keyword, error) {
	var (
		kw                   types.Keyword
		weight, score        sql.NullFloat64
		tags                 string
		createdAt, updatedAt string
	)
	err := row.Scan(&kw.ID, &kw.Term, &kw.Volume, &kw.Competition, &weight, &tags, &kw.Notes, &score, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return kw, err
		}
		return kw, fmt.Errorf("failed to scan keyword: %w", err)
	}

	var tagNames []string
	if err := json.Unmarshal([]byte(tags), &tagNames); err != nil {
		return kw, fmt.Errorf("failed to decode tags of keyword %s: %w", kw.ID, err)
	}
	kw.Tags = stringsToTags(tagNames)
	kw.Weight = floatPtr(weight)
	kw.Score = floatPtr(score)
	if kw.CreatedAt, err = parseTime(createdAt); err != nil {
		return kw, err
	}
	if kw.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return kw, err
	}
	return kw, nil
}

func scanSQLiteProject(row rowScanner) (types.Project, error) {
	var (
		p                    types.Project
		ids                  string
		components           sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &ids, &components, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, err
		}
		return p, fmt.Errorf("failed to scan project: %w", err)
	}

	if err := json.Unmarshal([]byte(ids), &p.KeywordIDs); err != nil {
		return p, fmt.Errorf("failed to decode keyword ids of project %s: %w", p.ID, err)
	}
	if components.Valid {
		p.Components = &types.ProductTitleComponents{}
		if err := json.Unmarshal([]byte(components.String), p.Components); err != nil {
			return p, fmt.Errorf("failed to decode components of project %s: %w", p.ID, err)
		}
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return p, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return p, err
	}
	return p, nil
}

// encodeProject returns the JSON keyword id list and the JSON components, nil when absent.
func encodeProject(p types.Project) ([]byte, []byte, error) {
	ids, err := json.Marshal(p.KeywordIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode keyword ids: %w", err)
	}
	if p.Components == nil {
		return ids, nil, nil
	}
	components, err := json.Marshal(p.Components)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode components: %w", err)
	}
	return ids, components, nil
}

// nullableText maps absent JSON to SQL NULL.
func nullableText(b []byte) any {
	if b == nil {
		return nil
	}
	return string(b)
}

func sqliteKeywordWriteError(err error, kw types.Keyword) error {
	switch {
	case isSQLiteConstraint(err) && strings.Contains(err.Error(), "term_key"):
		return termConflict(kw.Term)
	case isSQLiteConstraint(err):
		return idConflict("keyword", kw.ID)
	default:
		return fmt.Errorf("failed to write keyword %s: %w", kw.ID, err)
	}
}

func isSQLiteConstraint(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	return types.Float64Ptr(f.Float64)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
	}
	return t, nil
}
