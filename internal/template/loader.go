package template

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// LoadDir reads every *.yaml / *.yml template document under dir,
// validates it, and returns the templates sorted by filename. Templates
// without an explicit ID get a generated UUID.
//
// A single malformed file fails the whole load: the catalogue is trusted
// input and a silent partial load would hide authoring mistakes.
func LoadDir(dir string) ([]Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading template directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	templates := make([]Template, 0, len(names))
	for _, name := range names {
		tpl, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("template file %q: %w", name, err)
		}
		templates = append(templates, *tpl)
	}

	return templates, nil
}

// LoadFile reads and validates a single YAML template document.
func LoadFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template: %w", err)
	}

	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}

	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	if tpl.Slug == "" {
		tpl.Slug = slugFromFilename(path)
	}

	if err := tpl.Validate(); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// ImportDir loads all templates from dir into the registry, creating new
// entries and updating existing ones (matched by slug). Used at startup
// to sync the on-disk catalogue into SQLite.
func ImportDir(ctx context.Context, dir string, registry *Registry) (int, error) {
	templates, err := LoadDir(dir)
	if err != nil {
		return 0, err
	}

	imported := 0
	for i := range templates {
		tpl := &templates[i]

		existing, err := registry.GetBySlug(ctx, tpl.Slug)
		switch {
		case err == nil:
			tpl.ID = existing.ID
			tpl.CreatedAt = existing.CreatedAt
			if err := registry.Update(ctx, tpl); err != nil {
				return imported, fmt.Errorf("updating template %q: %w", tpl.Slug, err)
			}
		case errors.Is(err, ErrTemplateNotFound):
			if err := registry.Create(ctx, tpl); err != nil {
				return imported, fmt.Errorf("creating template %q: %w", tpl.Slug, err)
			}
		default:
			return imported, err
		}
		imported++
	}

	return imported, nil
}

// slugFromFilename derives a slug from the file's base name.
func slugFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(base)
	return strings.ReplaceAll(base, "_", "-")
}
