package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

func TestStoreSeedAndLoad(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	fx, err := DefaultFixture()
	if err != nil {
		t.Fatalf("DefaultFixture: %v", err)
	}
	if err := store.Seed(ctx, fx); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	// seeding twice is an upsert
	if err := store.Seed(ctx, fx); err != nil {
		t.Fatalf("Seed again: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, err := New(loaded)
	if err != nil {
		t.Fatalf("New(loaded): %v", err)
	}
	if len(loaded.Vehicles) != len(fx.Vehicles) {
		t.Fatalf("vehicles = %d, want %d", len(loaded.Vehicles), len(fx.Vehicles))
	}
	for i := range fx.Vehicles {
		if loaded.Vehicles[i] != fx.Vehicles[i] {
			t.Errorf("vehicle[%d] = %+v, want %+v", i, loaded.Vehicles[i], fx.Vehicles[i])
		}
	}
	if got := c.Branches(); strings.Join(got, "|") != strings.Join(fx.Branches, "|") {
		t.Errorf("branches = %v, want %v", got, fx.Branches)
	}
	if a, ok := c.Addon("returnOtherBranch"); !ok || a.UnitPrice != 500 {
		t.Errorf("returnOtherBranch = %+v, %v", a, ok)
	}
}

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("RENTAL_TEST_DSN")
	if dsn == "" {
		t.Skip("RENTAL_TEST_DSN not set; skipping DB-backed catalog tests")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := applyMigration(ctx, db); err != nil {
		t.Fatalf("apply migration: %v", err)
	}
	if _, err := db.Exec(ctx, "TRUNCATE TABLE vehicles, addon_definitions, branch_points"); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
	return NewStore(db)
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	root, err := repoRoot()
	if err != nil {
		return err
	}
	content, err := os.ReadFile(filepath.Join(root, "migrations", "0001_catalog.sql"))
	if err != nil {
		return err
	}
	for _, stmt := range splitSQL(string(content)) {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		dir = filepath.Dir(dir)
	}
	return "", os.ErrNotExist
}

func splitSQL(sql string) []string {
	var kept []string
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		kept = append(kept, line)
	}
	var stmts []string
	for _, p := range strings.Split(strings.Join(kept, "\n"), ";") {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
