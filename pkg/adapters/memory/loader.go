package memory

import (
	"fmt"
	"sort"

	"github.com/aretw0/keyframe/pkg/document"
	"github.com/aretw0/keyframe/pkg/domain"
)

// Loader implements ports.DocumentLoader using an in-memory map.
type Loader struct {
	docs map[string][]byte
}

// NewLoader creates a new Loader with the provided raw documents (JSON or YAML).
func NewLoader(data map[string]string) *Loader {
	docs := make(map[string][]byte)
	for k, v := range data {
		docs[k] = []byte(v)
	}
	return &Loader{
		docs: docs,
	}
}

// NewFromPrototypes creates a new Loader from domain objects, keyed by prototype name.
// This handles serialization automatically, improving DX for tests.
func NewFromPrototypes(protos ...*domain.Prototype) (*Loader, error) {
	data := make(map[string][]byte)
	for _, p := range protos {
		if p == nil || p.Name == "" {
			return nil, fmt.Errorf("prototype missing name")
		}
		bytes, err := document.Encode(p)
		if err != nil {
			return nil, fmt.Errorf("failed to encode prototype %s: %w", p.Name, err)
		}
		data[p.Name] = bytes
	}
	return &Loader{docs: data}, nil
}

// GetDocument retrieves the raw definition of a prototype by ID.
func (l *Loader) GetDocument(id string) ([]byte, error) {
	content, ok := l.docs[id]
	if !ok {
		return nil, fmt.Errorf("document not found: %s", id)
	}
	return content, nil
}

// ListDocuments returns all available document IDs.
func (l *Loader) ListDocuments() ([]string, error) {
	keys := make([]string, 0, len(l.docs))
	for k := range l.docs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
