package template

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for template persistence. The
// abstraction allows different implementations (SQLite, mock) and keeps
// the compiler testable without a database.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Template, error)
	GetBySlug(ctx context.Context, slug string) (*Template, error)
	List(ctx context.Context) ([]Template, error)
	Create(ctx context.Context, tpl *Template) error
	Update(ctx context.Context, tpl *Template) error
	Delete(ctx context.Context, id string) error
}

// templateColumns is the SELECT column list for template queries.
const templateColumns = `id, name, slug, description, steps, repeatable, cycle_bars,
			loop_step_ids, repeat_mode, dimmer_floor, dimmer_ceiling, sort_order,
			created_at, updated_at`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a template by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = ?`

	tpl, err := scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("querying template by id: %w", err)
	}
	return tpl, nil
}

// GetBySlug retrieves a template by its slug.
func (r *SQLiteRepository) GetBySlug(ctx context.Context, slug string) (*Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE slug = ?`

	tpl, err := scanTemplate(r.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("querying template by slug: %w", err)
	}
	return tpl, nil
}

// List retrieves all templates ordered by sort_order then name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates ORDER BY sort_order, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var templates []Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template row: %w", err)
		}
		templates = append(templates, *tpl)
	}
	return templates, rows.Err()
}

// Create inserts a new template. The template must already be validated.
func (r *SQLiteRepository) Create(ctx context.Context, tpl *Template) error {
	if err := tpl.Validate(); err != nil {
		return err
	}

	steps, loopIDs, err := marshalTemplateFields(tpl)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Truncate(time.Second)
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	query := `INSERT INTO templates (` + strings.ReplaceAll(templateColumns, "\n\t\t\t", " ") + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.ExecContext(ctx, query,
		tpl.ID, tpl.Name, tpl.Slug, tpl.Description, steps,
		tpl.Repeat.Repeatable, tpl.Repeat.CycleBars, loopIDs, string(tpl.Repeat.Mode),
		tpl.DimmerFloor, tpl.DimmerCeiling, tpl.SortOrder,
		tpl.CreatedAt.Format(time.RFC3339), tpl.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTemplateExists
		}
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

// Update replaces an existing template's definition.
func (r *SQLiteRepository) Update(ctx context.Context, tpl *Template) error {
	if err := tpl.Validate(); err != nil {
		return err
	}

	steps, loopIDs, err := marshalTemplateFields(tpl)
	if err != nil {
		return err
	}

	tpl.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	query := `UPDATE templates SET name = ?, slug = ?, description = ?, steps = ?,
		repeatable = ?, cycle_bars = ?, loop_step_ids = ?, repeat_mode = ?,
		dimmer_floor = ?, dimmer_ceiling = ?, sort_order = ?, updated_at = ?
		WHERE id = ?`

	res, err := r.db.ExecContext(ctx, query,
		tpl.Name, tpl.Slug, tpl.Description, steps,
		tpl.Repeat.Repeatable, tpl.Repeat.CycleBars, loopIDs, string(tpl.Repeat.Mode),
		tpl.DimmerFloor, tpl.DimmerCeiling, tpl.SortOrder, tpl.UpdatedAt.Format(time.RFC3339),
		tpl.ID,
	)
	if err != nil {
		return fmt.Errorf("updating template: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// Delete removes a template by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for scanTemplate.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTemplate reads one template row, decoding the JSON step and loop
// columns.
func scanTemplate(row rowScanner) (*Template, error) {
	var (
		tpl        Template
		stepsJSON  string
		loopJSON   sql.NullString
		repeatMode string
		createdAt  string
		updatedAt  string
	)

	err := row.Scan(
		&tpl.ID, &tpl.Name, &tpl.Slug, &tpl.Description, &stepsJSON,
		&tpl.Repeat.Repeatable, &tpl.Repeat.CycleBars, &loopJSON, &repeatMode,
		&tpl.DimmerFloor, &tpl.DimmerCeiling, &tpl.SortOrder,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if tpl.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if tpl.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	if err := json.Unmarshal([]byte(stepsJSON), &tpl.Steps); err != nil {
		return nil, fmt.Errorf("decoding steps: %w", err)
	}
	if loopJSON.Valid && loopJSON.String != "" {
		if err := json.Unmarshal([]byte(loopJSON.String), &tpl.Repeat.LoopStepIDs); err != nil {
			return nil, fmt.Errorf("decoding loop step ids: %w", err)
		}
	}
	tpl.Repeat.Mode = RepeatMode(repeatMode)

	return &tpl, nil
}

// marshalTemplateFields encodes the JSON columns for persistence.
func marshalTemplateFields(tpl *Template) (steps, loopIDs string, err error) {
	stepsBytes, err := json.Marshal(tpl.Steps)
	if err != nil {
		return "", "", fmt.Errorf("encoding steps: %w", err)
	}

	loopBytes, err := json.Marshal(tpl.Repeat.LoopStepIDs)
	if err != nil {
		return "", "", fmt.Errorf("encoding loop step ids: %w", err)
	}

	return string(stepsBytes), string(loopBytes), nil
}

// isUniqueViolation reports whether the error is a SQLite unique
// constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
