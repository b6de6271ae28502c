package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/jonathan/listing-optimizer/internal/types"
)

// Memory is a process-local Store. It is safe for concurrent use.
type Memory struct {
	mu sync.RWMutex

	keywords     map[string]types.Keyword
	keywordOrder []string
	terms        map[string]string // normalized term -> keyword ID

	projects     map[string]types.Project
	projectOrder []string

	settings map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		keywords: make(map[string]types.Keyword),
		terms:    make(map[string]string),
		projects: make(map[string]types.Project),
		settings: make(map[string][]byte),
	}
}

// ListKeywords returns keywords in creation order.
func (m *Memory) ListKeywords(_ context.Context) ([]types.Keyword, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Keyword, 0, len(m.keywordOrder))
	for _, id := range m.keywordOrder {
		out = append(out, cloneKeyword(m.keywords[id]))
	}
	return out, nil
}

func (m *Memory) GetKeyword(_ context.Context, id string) (*types.Keyword, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	kw, ok := m.keywords[id]
	if !ok {
		return nil, notFound("keyword", id)
	}
	out := cloneKeyword(kw)
	return &out, nil
}

func (m *Memory) CreateKeyword(_ context.Context, kw types.Keyword) (*types.Keyword, error) {
	kw, err := prepareKeyword(kw)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.keywords[kw.ID]; exists {
		return nil, idConflict("keyword", kw.ID)
	}
	key := kw.NormalizedTerm()
	if _, exists := m.terms[key]; exists {
		return nil, termConflict(kw.Term)
	}

	m.keywords[kw.ID] = cloneKeyword(kw)
	m.keywordOrder = append(m.keywordOrder, kw.ID)
	m.terms[key] = kw.ID
	return &kw, nil
}

func (m *Memory) UpdateKeyword(_ context.Context, kw types.Keyword) (*types.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.keywords[kw.ID]
	if !ok {
		return nil, notFound("keyword", kw.ID)
	}
	kw, err := prepareKeywordUpdate(kw, existing)
	if err != nil {
		return nil, err
	}

	key := kw.NormalizedTerm()
	if owner, exists := m.terms[key]; exists && owner != kw.ID {
		return nil, termConflict(kw.Term)
	}
	delete(m.terms, existing.NormalizedTerm())
	m.terms[key] = kw.ID
	m.keywords[kw.ID] = cloneKeyword(kw)
	return &kw, nil
}

func (m *Memory) DeleteKeyword(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kw, ok := m.keywords[id]
	if !ok {
		return notFound("keyword", id)
	}
	delete(m.keywords, id)
	delete(m.terms, kw.NormalizedTerm())
	m.keywordOrder = slices.DeleteFunc(m.keywordOrder, func(s string) bool { return s == id })
	return nil
}

func (m *Memory) SaveScores(_ context.Context, scores map[string]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range scores {
		if _, ok := m.keywords[id]; !ok {
			return notFound("keyword", id)
		}
	}
	ts := now()
	for id, score := range scores {
		kw := m.keywords[id]
		kw.Score = types.Float64Ptr(score)
		kw.UpdatedAt = ts
		m.keywords[id] = kw
	}
	return nil
}

// ListProjects returns projects in creation order.
func (m *Memory) ListProjects(_ context.Context) ([]types.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Project, 0, len(m.projectOrder))
	for _, id := range m.projectOrder {
		out = append(out, cloneProject(m.projects[id]))
	}
	return out, nil
}

func (m *Memory) GetProject(_ context.Context, id string) (*types.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, notFound("project", id)
	}
	out := cloneProject(p)
	return &out, nil
}

func (m *Memory) CreateProject(_ context.Context, p types.Project) (*types.Project, error) {
	p, err := prepareProject(p)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.projects[p.ID]; exists {
		return nil, idConflict("project", p.ID)
	}
	m.projects[p.ID] = cloneProject(p)
	m.projectOrder = append(m.projectOrder, p.ID)
	return &p, nil
}

func (m *Memory) UpdateProject(_ context.Context, p types.Project) (*types.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.projects[p.ID]
	if !ok {
		return nil, notFound("project", p.ID)
	}
	p, err := prepareProjectUpdate(p, existing)
	if err != nil {
		return nil, err
	}
	m.projects[p.ID] = cloneProject(p)
	return &p, nil
}

func (m *Memory) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return notFound("project", id)
	}
	delete(m.projects, id)
	m.projectOrder = slices.DeleteFunc(m.projectOrder, func(s string) bool { return s == id })
	return nil
}

func (m *Memory) GetSetting(_ context.Context, key string, dst any) error {
	m.mu.RLock()
	data, ok := m.settings[key]
	m.mu.RUnlock()

	if !ok {
		return notFound("setting", key)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode setting %s: %w", key, err)
	}
	return nil
}

func (m *Memory) PutSetting(_ context.Context, key string, value any) error {
	if err := validateSettingKey(key); err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode setting %s: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = data
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}
