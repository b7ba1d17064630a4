package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
)

// Loader adapts the Loam library to the DocumentLoader interface.
// A repository is a library of prototypes: one document per prototype, either
// a JSON/YAML file or Markdown whose front-matter carries the prototype and
// whose body holds free-form notes.
type Loader struct {
	Repo *loam.TypedRepository[PrototypeMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[PrototypeMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetDocument retrieves a prototype from the Loam repository and re-encodes
// it as a JSON document.
func (l *Loader) GetDocument(id string) ([]byte, error) {
	ctx := context.Background()

	// Loam resolves "onboarding" to onboarding.md / onboarding.json.
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	meta := doc.Data
	rawID := meta.ID
	if rawID == "" {
		rawID = doc.ID
	}
	name := meta.Name
	if name == "" {
		name = trimExtension(rawID)
	}

	data := map[string]any{
		"name":         name,
		"screens":      normalize(meta.Screens),
		"transitions":  normalize(meta.Transitions),
		"variables":    normalize(meta.Variables),
		"interactions": normalize(meta.Interactions),
	}
	if meta.Version != 0 {
		data["version"] = meta.Version
	}
	if meta.InitialScreen != "" {
		data["initialScreen"] = meta.InitialScreen
	}

	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document %s: %w", id, err)
	}
	return bytes, nil
}

// ListDocuments lists all prototypes in the repository.
func (l *Loader) ListDocuments() ([]string, error) {
	ctx := context.Background()
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		// Use the ID from metadata if available, otherwise filename ID
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces on its own.
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// normalize rewrites YAML-style map[any]any nodes so the tree can be
// marshalled as JSON. Nil slices become empty lists.
func normalize(v any) any {
	switch val := v.(type) {
	case nil:
		return []any{}
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return normalizeValue(v)
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[k] = normalizeValue(sub)
		}
		return out
	case map[any]any: // YAML often decodes to this
		out := make(map[string]any, len(val))
		for k, sub := range val {
			out[fmt.Sprintf("%v", k)] = normalizeValue(sub)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return v
}
