package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/uphproperties/uphsite/internal/model"
)

const propertyColumns = `id, slug, name, address, city, state, zip, status, type, description,
	bedrooms_summary, baths_summary, sqft_approx, hero_image_url, hero_image_key, amenities,
	rent_from, rent_to, has_units, latitude, longitude, created_at, updated_at`

// updatablePropertyColumns lists the columns UpdateProperty may change.
var updatablePropertyColumns = map[string]bool{
	"name":             true,
	"address":          true,
	"city":             true,
	"state":            true,
	"zip":              true,
	"status":           true,
	"type":             true,
	"description":      true,
	"bedrooms_summary": true,
	"baths_summary":    true,
	"sqft_approx":      true,
	"amenities":        true,
	"rent_from":        true,
	"rent_to":          true,
	"has_units":        true,
	"latitude":         true,
	"longitude":        true,
}

// CreateProperty inserts a property together with its gallery, units and unit
// galleries in a single transaction. IDs are assigned to the passed struct;
// gallery order is taken from slice position.
func CreateProperty(ctx context.Context, db *sql.DB, p *model.Property) (*model.Property, error) {
	p.ID = uuid.NewString()

	amenities, err := columnValue(p.Amenities)
	if err != nil {
		return nil, fmt.Errorf("encoding amenities: %w", err)
	}

	err = withTx(ctx, db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO properties (id, slug, name, address, city, state, zip, status, type, description,
			     bedrooms_summary, baths_summary, sqft_approx, hero_image_url, hero_image_key, amenities,
			     rent_from, rent_to, has_units, latitude, longitude)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Slug, p.Name, p.Address, p.City, p.State, p.Zip, p.Status, p.Type, p.Description,
			p.BedroomsSummary, p.BathsSummary, p.SqftApprox, p.HeroImageURL, p.HeroImageKey, amenities,
			p.RentFrom, p.RentTo, p.HasUnits, p.Latitude, p.Longitude,
		)
		if err != nil {
			return fmt.Errorf("creating property: %w", err)
		}

		for i := range p.Gallery {
			p.Gallery[i].Order = i
		}
		if err := insertImages(ctx, tx, propertyImages, p.ID, p.Gallery); err != nil {
			return err
		}

		for i := range p.Units {
			p.Units[i].PropertyID = p.ID
			if err := insertUnit(ctx, tx, &p.Units[i]); err != nil {
				return err
			}
			for j := range p.Units[i].Gallery {
				p.Units[i].Gallery[j].Order = j
			}
			if err := insertImages(ctx, tx, unitImages, p.Units[i].ID, p.Units[i].Gallery); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetProperty(ctx, db, p.ID)
}

// GetProperty returns a property with its gallery and units, or nil if it
// does not exist.
func GetProperty(ctx context.Context, db *sql.DB, id string) (*model.Property, error) {
	return getPropertyWhere(ctx, db, "id = ?", id)
}

// GetPropertyBySlug returns a property by slug, or nil if it does not exist.
func GetPropertyBySlug(ctx context.Context, db *sql.DB, slug string) (*model.Property, error) {
	return getPropertyWhere(ctx, db, "slug = ?", slug)
}

func getPropertyWhere(ctx context.Context, db *sql.DB, where string, arg any) (*model.Property, error) {
	row := db.QueryRowContext(ctx, `SELECT `+propertyColumns+` FROM properties WHERE `+where, arg)
	p, err := scanProperty(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting property: %w", err)
	}

	if err := loadPropertyRelations(ctx, db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProperties returns all properties, newest first, with relations loaded.
func ListProperties(ctx context.Context, db *sql.DB) ([]model.Property, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+propertyColumns+` FROM properties ORDER BY created_at DESC, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}

	var properties []model.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		properties = append(properties, *p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	rows.Close()

	for i := range properties {
		if err := loadPropertyRelations(ctx, db, &properties[i]); err != nil {
			return nil, err
		}
	}
	return properties, nil
}

// SlugExists reports whether a property already uses the slug.
func SlugExists(ctx context.Context, db *sql.DB, slug string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM properties WHERE slug = ?`, slug,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking slug: %w", err)
	}
	return count > 0, nil
}

// UpdateProperty applies a partial update. It reports whether the property
// exists.
func UpdateProperty(ctx context.Context, db *sql.DB, id string, changes Changes) (bool, error) {
	if len(changes) == 0 {
		return propertyExists(ctx, db, id)
	}
	return updateRow(ctx, db, "properties", updatablePropertyColumns, id, changes)
}

// SetPropertyHero replaces the hero image reference. It reports whether the
// property exists.
func SetPropertyHero(ctx context.Context, db *sql.DB, id, url string, key *string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE properties SET hero_image_url = ?, hero_image_key = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		url, key, id,
	)
	if err != nil {
		return false, fmt.Errorf("setting property hero: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking property hero update: %w", err)
	}
	return n > 0, nil
}

// DeleteProperty deletes a property; images and units cascade. It reports
// whether the property existed.
func DeleteProperty(ctx context.Context, db *sql.DB, id string) (bool, error) {
	return deleteRow(ctx, db, "properties", id)
}

func propertyExists(ctx context.Context, q querier, id string) (bool, error) {
	var count int
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking property: %w", err)
	}
	return count > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProperty(row rowScanner) (*model.Property, error) {
	p := &model.Property{}
	var heroKey sql.NullString
	var amenities string
	var rentFrom, rentTo, lat, lng sql.NullFloat64
	err := row.Scan(&p.ID, &p.Slug, &p.Name, &p.Address, &p.City, &p.State, &p.Zip, &p.Status,
		&p.Type, &p.Description, &p.BedroomsSummary, &p.BathsSummary, &p.SqftApprox,
		&p.HeroImageURL, &heroKey, &amenities, &rentFrom, &rentTo, &p.HasUnits, &lat, &lng,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	p.HeroImageKey = nullString(heroKey)
	p.RentFrom = nullFloat(rentFrom)
	p.RentTo = nullFloat(rentTo)
	p.Latitude = nullFloat(lat)
	p.Longitude = nullFloat(lng)

	if err := json.Unmarshal([]byte(amenities), &p.Amenities); err != nil {
		return nil, fmt.Errorf("decoding amenities: %w", err)
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	return p, nil
}

func loadPropertyRelations(ctx context.Context, db *sql.DB, p *model.Property) error {
	gallery, err := listImages(ctx, db, propertyImages, p.ID)
	if err != nil {
		return err
	}
	p.Gallery = gallery

	units, err := listUnits(ctx, db, p.ID)
	if err != nil {
		return err
	}
	p.Units = units
	return nil
}
