package persona

import (
	"fmt"
	"strings"
)

// Store exposes persona retrieval for handlers and the chat service.
type Store interface {
	List() []Persona
	FindByID(id ID) (Persona, bool)
	ParseID(key string) (ID, bool)
	Lookup(id ID) string
	Fallback() ID
}

// Registry implements Store over a fixed persona table. It is never mutated
// after construction, so it is safe for concurrent use.
type Registry struct {
	items    []Persona
	byID     map[ID]int
	fallback ID
}

// NewRegistry builds a Registry from items. fallback must name one of them.
func NewRegistry(items []Persona, fallback ID) (*Registry, error) {
	r := &Registry{
		items:    make([]Persona, 0, len(items)),
		byID:     make(map[ID]int, len(items)),
		fallback: fallback,
	}

	for _, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("persona %q has empty id", item.Name)
		}
		if strings.TrimSpace(item.Prompt) == "" {
			return nil, fmt.Errorf("persona %s has empty prompt", item.ID)
		}
		if _, dup := r.byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate persona id %s", item.ID)
		}
		r.byID[item.ID] = len(r.items)
		r.items = append(r.items, item)
	}

	if _, ok := r.byID[fallback]; !ok {
		return nil, fmt.Errorf("fallback persona %s is not registered", fallback)
	}
	return r, nil
}

// MustRegistry is NewRegistry for the built-in table; it panics on error.
func MustRegistry() *Registry {
	r, err := NewRegistry(Seed(), HumorBot)
	if err != nil {
		panic(err)
	}
	return r
}

// List returns the personas in registration order.
func (r *Registry) List() []Persona {
	return append([]Persona(nil), r.items...)
}

// FindByID looks up a persona by identifier.
func (r *Registry) FindByID(id ID) (Persona, bool) {
	idx, ok := r.byID[id]
	if !ok {
		return Persona{}, false
	}
	return r.items[idx], true
}

// ParseID accepts either an ID ("humor-bot") or a display name ("Humor Bot"),
// case-insensitively.
func (r *Registry) ParseID(key string) (ID, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", false
	}
	if _, ok := r.byID[ID(key)]; ok {
		return ID(key), true
	}
	for _, item := range r.items {
		if strings.EqualFold(string(item.ID), key) || strings.EqualFold(item.Name, key) {
			return item.ID, true
		}
	}
	return "", false
}

// Lookup returns the system prompt for id, or the fallback persona's prompt
// when id is not registered.
func (r *Registry) Lookup(id ID) string {
	if idx, ok := r.byID[id]; ok {
		return r.items[idx].Prompt
	}
	return r.items[r.byID[r.fallback]].Prompt
}

// Fallback reports the persona used for unknown keys.
func (r *Registry) Fallback() ID {
	return r.fallback
}
