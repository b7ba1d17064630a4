package ports

import "context"

// DocumentLoader defines how prototype documents are retrieved.
// This allows the storage layer (Loam, files, memory) to be decoupled from the engine.
type DocumentLoader interface {
	// GetDocument retrieves the raw definition of a prototype by ID.
	// It returns JSON or YAML bytes (which pkg/document will parse) or an error.
	GetDocument(id string) ([]byte, error)

	// ListDocuments returns the IDs of all prototypes available to the loader.
	// This is used by tooling like 'keyframe validate' and the MCP host.
	ListDocuments() ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload while previewing.
type Watchable interface {
	// Watch returns a channel that receives the ID of a document that changed.
	Watch(ctx context.Context) (<-chan string, error)
}
