// Package schema loads entity schema definitions and serves the attestation
// policies, credential templates and completion functions they declare.
package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/samber/lo"

	"claimflow/internal/attestation/models"
)

// Definition is the part of an entity schema the workflow engine reads.
type Definition struct {
	Title  string   `json:"title"`
	Config OSConfig `json:"_osConfig"`
}

// OSConfig carries the registry extensions of a schema.
type OSConfig struct {
	AttestationPolicies []*models.Policy            `json:"attestationPolicies"`
	CredentialTemplate  json.RawMessage             `json:"credentialTemplate,omitempty"`
	FunctionDefinitions []models.FunctionDefinition `json:"functionDefinitions,omitempty"`
}

// Registry holds loaded definitions keyed by entity type.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
}

func NewRegistry() *Registry {
	return &Registry{definitions: make(map[string]*Definition)}
}

// Load reads every *.json file of fsys as a schema definition.
func Load(fsys fs.FS) (*Registry, error) {
	r := NewRegistry()
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(p), ".json") {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read schema %s: %w", p, err)
		}
		var def Definition
		if err := json.Unmarshal(raw, &def); err != nil {
			return fmt.Errorf("decode schema %s: %w", p, err)
		}
		if def.Title == "" {
			def.Title = strings.TrimSuffix(path.Base(p), path.Ext(p))
		}
		return r.Add(&def)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Add registers def. Policy entity and completion fields are filled in from
// the schema.
func (r *Registry) Add(def *Definition) error {
	if def == nil || def.Title == "" {
		return fmt.Errorf("schema definition needs a title")
	}
	for _, p := range def.Config.AttestationPolicies {
		if p.Entity == "" {
			p.Entity = def.Title
		}
		p.ResolveCompletion()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.definitions[def.Title]; exists {
		return fmt.Errorf("schema %s defined twice", def.Title)
	}
	r.definitions[def.Title] = def
	return nil
}

// EntityTypes lists the loaded entity types in name order.
func (r *Registry) EntityTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := lo.Keys(r.definitions)
	sort.Strings(types)
	return types
}

func (r *Registry) get(entityType string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[entityType]
	return def, ok
}

func (r *Registry) Policies(entityType string) []*models.Policy {
	def, ok := r.get(entityType)
	if !ok {
		return nil
	}
	return def.Config.AttestationPolicies
}

func (r *Registry) FunctionDefinition(entityType, name string) (*models.FunctionDefinition, bool) {
	def, ok := r.get(entityType)
	if !ok {
		return nil, false
	}
	fn, found := lo.Find(def.Config.FunctionDefinitions, func(f models.FunctionDefinition) bool {
		return f.Name == name
	})
	if !found {
		return nil, false
	}
	return &fn, true
}

func (r *Registry) CredentialTemplate(entityType string) json.RawMessage {
	def, ok := r.get(entityType)
	if !ok {
		return nil
	}
	return def.Config.CredentialTemplate
}
