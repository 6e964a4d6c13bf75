package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS properties (
    id               TEXT PRIMARY KEY,
    slug             TEXT NOT NULL,
    name             TEXT NOT NULL,
    address          TEXT NOT NULL,
    city             TEXT NOT NULL,
    state            TEXT NOT NULL,
    zip              TEXT NOT NULL,
    status           TEXT NOT NULL DEFAULT '',
    type             TEXT NOT NULL,
    description      TEXT NOT NULL,
    bedrooms_summary TEXT NOT NULL DEFAULT '',
    baths_summary    TEXT NOT NULL DEFAULT '',
    sqft_approx      TEXT NOT NULL DEFAULT '',
    hero_image_url   TEXT NOT NULL DEFAULT '',
    hero_image_key   TEXT,
    amenities        TEXT NOT NULL DEFAULT '[]',
    rent_from        REAL,
    rent_to          REAL,
    has_units        INTEGER NOT NULL DEFAULT 0,
    latitude         REAL,
    longitude        REAL,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_properties_slug ON properties(slug);

CREATE TABLE IF NOT EXISTS property_images (
    id          TEXT PRIMARY KEY,
    property_id TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
    url         TEXT NOT NULL,
    storage_key TEXT,
    sort_order  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_property_images_property
    ON property_images(property_id, sort_order);

CREATE TABLE IF NOT EXISTS units (
    id              TEXT PRIMARY KEY,
    property_id     TEXT NOT NULL REFERENCES properties(id) ON DELETE CASCADE,
    label           TEXT NOT NULL,
    bedrooms        INTEGER NOT NULL,
    bathrooms       REAL NOT NULL,
    sqft            INTEGER NOT NULL,
    rent            REAL,
    available       INTEGER NOT NULL DEFAULT 1,
    is_hidden       INTEGER NOT NULL DEFAULT 0,
    cover_image     TEXT,
    cover_image_key TEXT,
    created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_units_property ON units(property_id, created_at);

CREATE TABLE IF NOT EXISTS unit_images (
    id          TEXT PRIMARY KEY,
    unit_id     TEXT NOT NULL REFERENCES units(id) ON DELETE CASCADE,
    url         TEXT NOT NULL,
    storage_key TEXT,
    sort_order  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_unit_images_unit ON unit_images(unit_id, sort_order);

CREATE TABLE IF NOT EXISTS maintenance_requests (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL,
    phone            TEXT NOT NULL,
    address          TEXT NOT NULL,
    issue_type       TEXT NOT NULL,
    entry_permission TEXT NOT NULL DEFAULT 'yes',
    description      TEXT NOT NULL,
    attachment_url   TEXT,
    attachment_key   TEXT,
    created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
