package template

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Logger defines the logging interface used by the Registry. This allows
// different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry provides template lookups with caching and thread safety.
// It wraps a Repository and adds an in-memory cache for fast reads.
//
// The cache is populated at startup via RefreshCache() and invalidated
// by the CRUD operations. Compiles only ever read from it.
//
// All public methods are thread-safe.
type Registry struct {
	repo    Repository
	cache   map[string]*Template // by ID
	cacheMu sync.RWMutex
	logger  Logger
}

// NewRegistry creates a new template registry over the repository.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:   repo,
		cache:  make(map[string]*Template),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all templates from the repository into the cache.
// Call on application startup, before compiles begin.
func (r *Registry) RefreshCache(ctx context.Context) error {
	templates, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]*Template, len(templates))
	for i := range templates {
		tpl := templates[i]
		r.cache[tpl.ID] = tpl.DeepCopy()
	}

	r.logger.Info("template cache refreshed", "count", len(templates))
	return nil
}

// Get retrieves a template by ID. The returned template is a deep copy;
// callers can safely modify it.
func (r *Registry) Get(_ context.Context, id string) (*Template, error) {
	r.cacheMu.RLock()
	cached, ok := r.cache[id]
	r.cacheMu.RUnlock()

	if ok {
		return cached.DeepCopy(), nil
	}
	return nil, ErrTemplateNotFound
}

// GetBySlug retrieves a template by its slug, as a deep copy.
func (r *Registry) GetBySlug(_ context.Context, slug string) (*Template, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	for _, tpl := range r.cache {
		if tpl.Slug == slug {
			return tpl.DeepCopy(), nil
		}
	}
	return nil, ErrTemplateNotFound
}

// List retrieves all templates from the cache as deep copies, sorted by
// sort_order then name for deterministic ordering.
func (r *Registry) List(_ context.Context) ([]Template, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	templates := make([]Template, 0, len(r.cache))
	for _, tpl := range r.cache {
		templates = append(templates, *tpl.DeepCopy())
	}
	sortTemplates(templates)
	return templates, nil
}

// Create validates and persists a new template, then caches it.
func (r *Registry) Create(ctx context.Context, tpl *Template) error {
	if err := r.repo.Create(ctx, tpl); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[tpl.ID] = tpl.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("template created", "id", tpl.ID, "slug", tpl.Slug)
	return nil
}

// Update validates and persists a template change, then refreshes the
// cached entry.
func (r *Registry) Update(ctx context.Context, tpl *Template) error {
	if err := r.repo.Update(ctx, tpl); err != nil {
		return err
	}

	r.cacheMu.Lock()
	r.cache[tpl.ID] = tpl.DeepCopy()
	r.cacheMu.Unlock()

	r.logger.Info("template updated", "id", tpl.ID, "slug", tpl.Slug)
	return nil
}

// Delete removes a template from the repository and the cache.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if err := r.repo.Delete(ctx, id); err != nil {
		return err
	}

	r.cacheMu.Lock()
	delete(r.cache, id)
	r.cacheMu.Unlock()

	r.logger.Info("template deleted", "id", id)
	return nil
}

// sortTemplates orders by sort_order then name.
func sortTemplates(templates []Template) {
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].SortOrder != templates[j].SortOrder {
			return templates[i].SortOrder < templates[j].SortOrder
		}
		return templates[i].Name < templates[j].Name
	})
}
