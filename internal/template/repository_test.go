package template

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the templates
// schema (matches the migration).
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}

	schema := `
		CREATE TABLE templates (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			description TEXT,
			steps TEXT NOT NULL DEFAULT '[]',
			repeatable INTEGER NOT NULL DEFAULT 0,
			cycle_bars REAL NOT NULL DEFAULT 0,
			loop_step_ids TEXT,
			repeat_mode TEXT NOT NULL DEFAULT 'normal',
			dimmer_floor REAL,
			dimmer_ceiling REAL,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now')),
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) STRICT;`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("creating schema: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	tpl := validTemplate()
	ceiling := 240.0
	tpl.DimmerCeiling = &ceiling

	if err := repo.Create(ctx, tpl); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := repo.GetByID(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}

	if got.Name != tpl.Name || got.Slug != tpl.Slug {
		t.Errorf("identity mismatch: %q/%q", got.Name, got.Slug)
	}
	if len(got.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(got.Steps))
	}
	if got.Steps[0].Movement == nil || got.Steps[0].Movement.PanAmplitudeDeg != 45 {
		t.Errorf("movement lost in round trip: %+v", got.Steps[0].Movement)
	}
	if !got.Repeat.Repeatable || got.Repeat.CycleBars != 8 {
		t.Errorf("repeat lost in round trip: %+v", got.Repeat)
	}
	if len(got.Repeat.LoopStepIDs) != 1 || got.Repeat.LoopStepIDs[0] != "sweep" {
		t.Errorf("loop step ids = %v, want [sweep]", got.Repeat.LoopStepIDs)
	}
	if got.DimmerCeiling == nil || *got.DimmerCeiling != 240 {
		t.Errorf("dimmer ceiling lost: %v", got.DimmerCeiling)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not persisted")
	}
}

func TestSQLiteRepositoryGetBySlug(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))
	_ = repo.Create(ctx, validTemplate())

	got, err := repo.GetBySlug(ctx, "slow-sweep")
	if err != nil {
		t.Fatalf("GetBySlug returned error: %v", err)
	}
	if got.ID != "tpl-001" {
		t.Errorf("id = %q, want tpl-001", got.ID)
	}

	if _, err := repo.GetBySlug(ctx, "missing"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("GetBySlug(missing) error = %v, want ErrTemplateNotFound", err)
	}
}

func TestSQLiteRepositoryDuplicateSlug(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))
	_ = repo.Create(ctx, validTemplate())

	dup := validTemplate()
	dup.ID = "tpl-002"
	if err := repo.Create(ctx, dup); !errors.Is(err, ErrTemplateExists) {
		t.Errorf("Create(duplicate slug) error = %v, want ErrTemplateExists", err)
	}
}

func TestSQLiteRepositoryUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))
	tpl := validTemplate()
	_ = repo.Create(ctx, tpl)

	tpl.Name = "Fast Sweep"
	tpl.Steps[0].Timing.DurationBars = 2
	if err := repo.Update(ctx, tpl); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	got, _ := repo.GetByID(ctx, tpl.ID)
	if got.Name != "Fast Sweep" || got.Steps[0].Timing.DurationBars != 2 {
		t.Errorf("update not persisted: %+v", got)
	}

	ghost := validTemplate()
	ghost.ID = "tpl-404"
	ghost.Slug = "ghost"
	if err := repo.Update(ctx, ghost); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrTemplateNotFound", err)
	}
}

func TestSQLiteRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))
	_ = repo.Create(ctx, validTemplate())

	if err := repo.Delete(ctx, "tpl-001"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := repo.GetByID(ctx, "tpl-001"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("GetByID after delete error = %v, want ErrTemplateNotFound", err)
	}
	if err := repo.Delete(ctx, "tpl-001"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("second Delete error = %v, want ErrTemplateNotFound", err)
	}
}

func TestSQLiteRepositoryList(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLiteRepository(setupTestDB(t))

	a := validTemplate()
	a.ID, a.Slug, a.Name, a.SortOrder = "tpl-b", "b-sweep", "B Sweep", 2
	b := validTemplate()
	b.ID, b.Slug, b.Name, b.SortOrder = "tpl-a", "a-sweep", "A Sweep", 1

	_ = repo.Create(ctx, a)
	_ = repo.Create(ctx, b)

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "tpl-a" {
		t.Errorf("List order wrong: %+v", list)
	}
}
