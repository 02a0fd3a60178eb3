// Package store persists registry entities as JSON documents and answers the
// filtered searches the workflow engine needs.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"claimflow/internal/attestation/jsondoc"
	"claimflow/internal/attestation/models"
	"claimflow/internal/attestation/ports"
	"claimflow/pkg/platform/sentinel"
)

// InMemoryStore keeps entity bodies per type and id. Every read and write
// copies the document so callers never share state with the store.
type InMemoryStore struct {
	mu           sync.RWMutex
	entities     map[string]map[string]models.Document
	uuidProperty string
}

// NewInMemory creates an empty store that keys bodies by uuidProperty.
func NewInMemory(uuidProperty string) *InMemoryStore {
	if uuidProperty == "" {
		uuidProperty = "osid"
	}
	return &InMemoryStore{
		entities:     make(map[string]map[string]models.Document),
		uuidProperty: uuidProperty,
	}
}

func (s *InMemoryStore) Read(_ context.Context, entityType, id string) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	body, ok := s.entities[entityType][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", entityType, id, sentinel.ErrNotFound)
	}
	return jsondoc.Wrap(entityType, jsondoc.CloneDocument(body)), nil
}

func (s *InMemoryStore) Update(_ context.Context, entityType, id string, root models.Document) error {
	body, ok := jsondoc.Body(root, entityType)
	if !ok {
		return fmt.Errorf("snapshot does not contain %s", entityType)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[entityType][id]; !ok {
		return fmt.Errorf("%s/%s: %w", entityType, id, sentinel.ErrNotFound)
	}
	stored := jsondoc.CloneDocument(body)
	stored[s.uuidProperty] = id
	s.entities[entityType][id] = stored
	return nil
}

// Create stores body and returns its id. A body that already carries an id
// keeps it.
func (s *InMemoryStore) Create(_ context.Context, entityType string, body models.Document) (string, error) {
	stored := jsondoc.CloneDocument(body)
	if stored == nil {
		stored = models.Document{}
	}
	id, _ := stored[s.uuidProperty].(string)
	if id == "" {
		id = uuid.NewString()
		stored[s.uuidProperty] = id
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.entities[entityType]
	if !ok {
		byID = make(map[string]models.Document)
		s.entities[entityType] = byID
	}
	if _, exists := byID[id]; exists {
		return "", fmt.Errorf("%s/%s: %w", entityType, id, sentinel.ErrConflict)
	}
	byID[id] = stored
	return id, nil
}

func (s *InMemoryStore) Delete(_ context.Context, entityType, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[entityType][id]; !ok {
		return fmt.Errorf("%s/%s: %w", entityType, id, sentinel.ErrNotFound)
	}
	delete(s.entities[entityType], id)
	return nil
}

// Search returns bodies of q.EntityType matching every filter, ordered by id.
func (s *InMemoryStore) Search(_ context.Context, q ports.SearchQuery) (*ports.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := lo.Keys(s.entities[q.EntityType])
	sort.Strings(ids)

	var matched []models.Document
	for _, id := range ids {
		body := s.entities[q.EntityType][id]
		if matchesAll(body, q.Filters) {
			matched = append(matched, jsondoc.CloneDocument(body))
		}
	}
	total := len(matched)
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	return &ports.SearchResult{Entities: matched, TotalCount: total}, nil
}

func matchesAll(body models.Document, filters map[string]ports.Filter) bool {
	for field, f := range filters {
		if !matches(body[field], f) {
			return false
		}
	}
	return true
}

func matches(value any, f ports.Filter) bool {
	switch f.Op {
	case ports.FilterEq:
		s, ok := value.(string)
		return ok && s == f.Value
	case ports.FilterContains:
		switch v := value.(type) {
		case string:
			return strings.Contains(v, f.Value)
		case []any:
			return lo.Contains(v, any(f.Value))
		}
	}
	return false
}
