package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/uphproperties/uphsite/internal/model"
)

const unitColumns = `id, property_id, label, bedrooms, bathrooms, sqft, rent, available, is_hidden,
	cover_image, cover_image_key, created_at, updated_at`

// updatableUnitColumns lists the columns UpdateUnit may change.
var updatableUnitColumns = map[string]bool{
	"label":     true,
	"bedrooms":  true,
	"bathrooms": true,
	"sqft":      true,
	"rent":      true,
	"available": true,
	"is_hidden": true,
}

// CreateUnit inserts a unit and marks its property as having units. It
// returns nil if the property does not exist.
func CreateUnit(ctx context.Context, db *sql.DB, u *model.Unit) (*model.Unit, error) {
	found := false
	err := withTx(ctx, db, func(tx *sql.Tx) error {
		exists, err := propertyExists(ctx, tx, u.PropertyID)
		if err != nil || !exists {
			return err
		}
		found = true

		if err := insertUnit(ctx, tx, u); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE properties SET has_units = 1, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND has_units = 0`, u.PropertyID,
		)
		if err != nil {
			return fmt.Errorf("marking property as having units: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	return GetUnit(ctx, db, u.ID)
}

// GetUnit returns a unit with its gallery, or nil if it does not exist.
func GetUnit(ctx context.Context, db *sql.DB, id string) (*model.Unit, error) {
	u, err := scanUnit(db.QueryRowContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting unit: %w", err)
	}

	u.Gallery, err = listImages(ctx, db, unitImages, u.ID)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateUnit applies a partial update. It reports whether the unit exists.
func UpdateUnit(ctx context.Context, db *sql.DB, id string, changes Changes) (bool, error) {
	if len(changes) == 0 {
		var count int
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM units WHERE id = ?`, id).Scan(&count)
		if err != nil {
			return false, fmt.Errorf("checking unit: %w", err)
		}
		return count > 0, nil
	}
	return updateRow(ctx, db, "units", updatableUnitColumns, id, changes)
}

// SetUnitCover replaces the unit's cover image reference. Passing a nil url
// clears it. It reports whether the unit exists.
func SetUnitCover(ctx context.Context, db *sql.DB, id string, url, key *string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE units SET cover_image = ?, cover_image_key = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		url, key, id,
	)
	if err != nil {
		return false, fmt.Errorf("setting unit cover: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking unit cover update: %w", err)
	}
	return n > 0, nil
}

// DeleteUnit deletes a unit; its images cascade. It reports whether the unit
// existed.
func DeleteUnit(ctx context.Context, db *sql.DB, id string) (bool, error) {
	return deleteRow(ctx, db, "units", id)
}

func insertUnit(ctx context.Context, q querier, u *model.Unit) error {
	u.ID = uuid.NewString()
	_, err := q.ExecContext(ctx,
		`INSERT INTO units (id, property_id, label, bedrooms, bathrooms, sqft, rent, available,
		     is_hidden, cover_image, cover_image_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.PropertyID, u.Label, u.Bedrooms, u.Bathrooms, u.Sqft, u.Rent, u.Available,
		u.IsHidden, u.CoverImageURL, u.CoverImageKey,
	)
	if err != nil {
		return fmt.Errorf("creating unit: %w", err)
	}
	return nil
}

func listUnits(ctx context.Context, db *sql.DB, propertyID string) ([]model.Unit, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+unitColumns+` FROM units WHERE property_id = ? ORDER BY created_at, rowid`, propertyID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}

	units := []model.Unit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		units = append(units, *u)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("listing units: %w", err)
	}
	rows.Close()

	for i := range units {
		units[i].Gallery, err = listImages(ctx, db, unitImages, units[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return units, nil
}

func scanUnit(row rowScanner) (*model.Unit, error) {
	u := &model.Unit{}
	var rent sql.NullFloat64
	var cover, coverKey sql.NullString
	err := row.Scan(&u.ID, &u.PropertyID, &u.Label, &u.Bedrooms, &u.Bathrooms, &u.Sqft, &rent,
		&u.Available, &u.IsHidden, &cover, &coverKey, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Rent = nullFloat(rent)
	u.CoverImageURL = nullString(cover)
	u.CoverImageKey = nullString(coverKey)
	return u, nil
}
