// Package store persists keywords, projects and settings behind a single interface with
// in-memory, SQLite and PostgreSQL adapters.
package store

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/listing-optimizer/internal/types"
)

// Driver names a storage adapter.
type Driver string

// Supported drivers.
const (
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Setting keys used by the CLI and server.
const (
	SettingWeights     = "weights"
	SettingTitleConfig = "title_config"
)

// Config selects and addresses a storage adapter. It is owned by the caller; there is no
// process-wide active store.
type Config struct {
	Driver Driver `json:"driver,omitempty" validate:"omitempty,oneof=memory sqlite postgres"`
	// DSN is a file path for sqlite and a connection URL for postgres.
	DSN string `json:"dsn,omitempty" validate:"required_unless=Driver memory"`
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	return types.ValidateStruct("store config", c)
}

// Store is the CRUD surface shared by every adapter. IDs are opaque strings.
type Store interface {
	ListKeywords(ctx context.Context) ([]types.Keyword, error)
	GetKeyword(ctx context.Context, id string) (*types.Keyword, error)
	// CreateKeyword assigns an ID when empty and rejects terms that already exist, ignoring case.
	CreateKeyword(ctx context.Context, kw types.Keyword) (*types.Keyword, error)
	UpdateKeyword(ctx context.Context, kw types.Keyword) (*types.Keyword, error)
	DeleteKeyword(ctx context.Context, id string) error
	// SaveScores writes computed scores back by keyword ID. Nothing is written if any ID is unknown.
	SaveScores(ctx context.Context, scores map[string]float64) error

	ListProjects(ctx context.Context) ([]types.Project, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	CreateProject(ctx context.Context, p types.Project) (*types.Project, error)
	UpdateProject(ctx context.Context, p types.Project) (*types.Project, error)
	DeleteProject(ctx context.Context, id string) error

	// GetSetting decodes the JSON value stored under key into dst.
	GetSetting(ctx context.Context, key string, dst any) error
	PutSetting(ctx context.Context, key string, value any) error

	Close() error
}

// Open returns the adapter selected by cfg. An empty driver selects the in-memory store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return OpenSQLite(ctx, cfg.DSN)
	case DriverPostgres:
		return ConnectPostgres(ctx, cfg.DSN)
	default:
		return nil, &OpenError{Driver: cfg.Driver, Message: "unknown driver"}
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// prepareKeyword validates kw and fills the ID and timestamps for a create.
func prepareKeyword(kw types.Keyword) (types.Keyword, error) {
	kw.Tags = types.NormalizeTags(kw.Tags)
	if err := kw.Validate(); err != nil {
		return types.Keyword{}, err
	}
	if kw.ID == "" {
		kw.ID = uuid.NewString()
	}
	ts := now()
	kw.CreatedAt = ts
	kw.UpdatedAt = ts
	return kw, nil
}

// prepareKeywordUpdate validates kw and keeps the creation time of existing.
func prepareKeywordUpdate(kw types.Keyword, existing types.Keyword) (types.Keyword, error) {
	kw.Tags = types.NormalizeTags(kw.Tags)
	if err := kw.Validate(); err != nil {
		return types.Keyword{}, err
	}
	kw.CreatedAt = existing.CreatedAt
	kw.UpdatedAt = now()
	return kw, nil
}

func prepareProject(p types.Project) (types.Project, error) {
	if err := p.Validate(); err != nil {
		return types.Project{}, err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.KeywordIDs == nil {
		p.KeywordIDs = []string{}
	}
	ts := now()
	p.CreatedAt = ts
	p.UpdatedAt = ts
	return p, nil
}

func prepareProjectUpdate(p types.Project, existing types.Project) (types.Project, error) {
	if err := p.Validate(); err != nil {
		return types.Project{}, err
	}
	if p.KeywordIDs == nil {
		p.KeywordIDs = []string{}
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = now()
	return p, nil
}

func validateSettingKey(key string) error {
	if key == "" {
		verr := &types.ValidationError{Subject: "setting"}
		verr.Add("key", "is required")
		return verr
	}
	return nil
}

func cloneKeyword(kw types.Keyword) types.Keyword {
	kw.Tags = slices.Clone(kw.Tags)
	if kw.Weight != nil {
		kw.Weight = types.Float64Ptr(*kw.Weight)
	}
	if kw.Score != nil {
		kw.Score = types.Float64Ptr(*kw.Score)
	}
	return kw
}

func cloneProject(p types.Project) types.Project {
	p.KeywordIDs = slices.Clone(p.KeywordIDs)
	if p.Components != nil {
		c := *p.Components
		c.Keywords = slices.Clone(c.Keywords)
		c.Features = slices.Clone(c.Features)
		p.Components = &c
	}
	return p
}

func tagsToStrings(tags []types.KeywordTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

func stringsToTags(ss []string) []types.KeywordTag {
	out := make([]types.KeywordTag, len(ss))
	for i, s := range ss {
		out[i] = types.KeywordTag(s)
	}
	return out
}
