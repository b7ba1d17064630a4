package file

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce drops repeated change events for the same file inside this window.
// Editors usually emit several writes per save.
const DefaultDebounce = 100 * time.Millisecond

var extensions = []string{".json", ".yaml", ".yml"}

// Loader implements ports.DocumentLoader and ports.Watchable over a directory
// of prototype documents, or over a single document file.
// Document IDs are slash-separated paths relative to the root, without extension.
type Loader struct {
	root     string
	single   string // Set when the loader serves one file
	debounce time.Duration
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) LoaderOption {
	return func(l *Loader) { l.debounce = d }
}

// WithLogger sets the logger used by the watcher goroutine.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader serves the documents under path. A file path yields a loader
// with exactly one document.
func NewLoader(path string, opts ...LoaderOption) (*Loader, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document path: %w", err)
	}
	l := &Loader{
		root:     path,
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
	}
	if !info.IsDir() {
		if !supported(path) {
			return nil, fmt.Errorf("unsupported document extension: %s", path)
		}
		l.root = filepath.Dir(path)
		l.single = filepath.Base(path)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// GetDocument returns the raw bytes of a document.
func (l *Loader) GetDocument(id string) ([]byte, error) {
	if l.single != "" {
		if id != l.id(l.single) {
			return nil, fmt.Errorf("document not found: %s", id)
		}
		return os.ReadFile(filepath.Join(l.root, l.single))
	}
	for _, ext := range extensions {
		data, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(id)+ext))
		if err == nil {
			return data, nil
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read document %s: %w", id, err)
		}
	}
	return nil, fmt.Errorf("document not found: %s", id)
}

// ListDocuments returns the IDs of every supported file under the root.
func (l *Loader) ListDocuments() ([]string, error) {
	if l.single != "" {
		return []string{l.id(l.single)}, nil
	}
	var ids []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != l.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !supported(path) {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		ids = append(ids, l.id(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Watch emits the ID of every document that is written, created, renamed or
// removed. The channel closes when ctx is done.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dirs := []string{l.root}
	if l.single == "" {
		dirs, err = l.directories()
		if err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	out := make(chan string, 16)
	var once sync.Once
	stop := func() {
		once.Do(func() {
			_ = w.Close()
			close(out)
		})
	}

	go func() {
		defer stop()
		last := make(map[string]time.Time)
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				id, ok := l.match(event.Name)
				if !ok {
					continue
				}
				now := time.Now()
				if t, seen := last[event.Name]; seen && now.Sub(t) < l.debounce {
					continue
				}
				last[event.Name] = now
				l.logger.Debug("document changed", "id", id, "op", event.Op.String())
				select {
				case out <- id:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("document watcher error", "error", err)
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (l *Loader) directories() ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != l.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	return dirs, err
}

// match maps a changed path to a document ID.
func (l *Loader) match(path string) (string, bool) {
	if !supported(path) {
		return "", false
	}
	rel, err := filepath.Rel(l.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	if l.single != "" && rel != l.single {
		return "", false
	}
	return l.id(rel), true
}

func (l *Loader) id(rel string) string {
	return filepath.ToSlash(strings.TrimSuffix(rel, filepath.Ext(rel)))
}

func supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}
