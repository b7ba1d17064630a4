// Package variables holds the mutable variable table of one engine instance.
package variables

import (
	"fmt"

	"github.com/aretw0/keyframe/pkg/domain"
)

// Store is a table of typed values keyed by variable ID.
// It is not safe for concurrent use; the engine owns it on a single goroutine.
type Store struct {
	defaults map[string]domain.Value
	values   map[string]domain.Value
	order    []string
}

// New creates a store seeded with the authored defaults. Later duplicates of an ID win.
func New(vars []domain.Variable) *Store {
	s := &Store{
		defaults: make(map[string]domain.Value, len(vars)),
		values:   make(map[string]domain.Value, len(vars)),
	}
	for _, v := range vars {
		if _, seen := s.defaults[v.ID]; !seen {
			s.order = append(s.order, v.ID)
		}
		s.defaults[v.ID] = v.DefaultValue
	}
	s.Reset()
	return s
}

// Has reports whether the variable was declared.
func (s *Store) Has(id string) bool {
	_, ok := s.defaults[id]
	return ok
}

// IDs returns the declared variable IDs in declaration order.
func (s *Store) IDs() []string {
	return append([]string(nil), s.order...)
}

// Get returns the current value of a variable.
func (s *Store) Get(id string) (domain.Value, error) {
	v, ok := s.values[id]
	if !ok {
		return domain.Value{}, notFound(id)
	}
	return v, nil
}

// Set replaces the value of a variable and returns the previous one.
func (s *Store) Set(id string, v domain.Value) (domain.Value, error) {
	prev, ok := s.values[id]
	if !ok {
		return domain.Value{}, notFound(id)
	}
	s.values[id] = v
	return prev, nil
}

// Toggle flips a variable as a boolean. Falsy or unset values become true.
func (s *Store) Toggle(id string) (domain.Value, error) {
	prev, ok := s.values[id]
	if !ok {
		return domain.Value{}, notFound(id)
	}
	s.values[id] = domain.Bool(!prev.Truthy())
	return prev, nil
}

// Increment adds amount to the numeric coercion of the current value.
func (s *Store) Increment(id string, amount float64) (domain.Value, error) {
	prev, ok := s.values[id]
	if !ok {
		return domain.Value{}, notFound(id)
	}
	s.values[id] = domain.Number(prev.AsNumber() + amount)
	return prev, nil
}

// Decrement subtracts amount from the numeric coercion of the current value.
func (s *Store) Decrement(id string, amount float64) (domain.Value, error) {
	return s.Increment(id, -amount)
}

// Reset restores every variable to its authored default.
func (s *Store) Reset() {
	for id, v := range s.defaults {
		s.values[id] = v
	}
}

// Values returns a copy of the current table.
func (s *Store) Values() map[string]domain.Value {
	out := make(map[string]domain.Value, len(s.values))
	for id, v := range s.values {
		out[id] = v
	}
	return out
}

// Restore loads values from a snapshot. Undeclared IDs are ignored and
// declared IDs missing from the snapshot fall back to their defaults.
func (s *Store) Restore(values map[string]domain.Value) {
	s.Reset()
	for id, v := range values {
		if _, ok := s.defaults[id]; ok {
			s.values[id] = v
		}
	}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %q", domain.ErrVariableNotFound, id)
}
