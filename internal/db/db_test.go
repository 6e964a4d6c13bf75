package db

import (
	"context"
	"testing"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	database := NewTestDB(t)

	if err := EnsureSchema(database); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	_, err := database.ExecContext(ctx,
		`INSERT INTO property_images (id, property_id, url) VALUES ('img', 'missing', 'u')`)
	if err == nil {
		t.Fatal("expected foreign key violation for orphan image")
	}
}

func TestSlugUniqueIndex(t *testing.T) {
	database := NewTestDB(t)
	ctx := context.Background()

	insert := `INSERT INTO properties (id, slug, name, address, city, state, zip, type, description)
	           VALUES (?, 'main-st', 'Main St', 'a', 'c', 's', 'z', 't', 'd')`
	if _, err := database.ExecContext(ctx, insert, "p1"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := database.ExecContext(ctx, insert, "p2"); err == nil {
		t.Fatal("expected unique violation on duplicate slug")
	}
}
