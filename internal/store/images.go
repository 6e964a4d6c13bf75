package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/uphproperties/uphsite/internal/model"
)

// imageTable describes a gallery table and the column naming its owner.
type imageTable struct {
	name  string
	owner string
}

var (
	propertyImages = imageTable{name: "property_images", owner: "property_id"}
	unitImages     = imageTable{name: "unit_images", owner: "unit_id"}
)

// AppendPropertyImages adds images to the end of a property's gallery,
// numbering them from the current maximum order. It returns nil if the
// property does not exist.
func AppendPropertyImages(ctx context.Context, db *sql.DB, propertyID string, images []model.Image) ([]model.Image, error) {
	return appendImages(ctx, db, propertyImages, "properties", propertyID, images)
}

// AppendUnitImages adds images to the end of a unit's gallery. It returns nil
// if the unit does not exist.
func AppendUnitImages(ctx context.Context, db *sql.DB, unitID string, images []model.Image) ([]model.Image, error) {
	return appendImages(ctx, db, unitImages, "units", unitID, images)
}

// GetPropertyImage returns a gallery image and the ID of the property owning
// it, or nil if it does not exist.
func GetPropertyImage(ctx context.Context, db *sql.DB, id string) (*model.Image, string, error) {
	return getImage(ctx, db, propertyImages, id)
}

// GetUnitImage returns a gallery image and the ID of the unit owning it, or
// nil if it does not exist.
func GetUnitImage(ctx context.Context, db *sql.DB, id string) (*model.Image, string, error) {
	return getImage(ctx, db, unitImages, id)
}

// DeletePropertyImage deletes a property gallery image.
func DeletePropertyImage(ctx context.Context, db *sql.DB, id string) (bool, error) {
	return deleteRow(ctx, db, propertyImages.name, id)
}

// DeleteUnitImage deletes a unit gallery image.
func DeleteUnitImage(ctx context.Context, db *sql.DB, id string) (bool, error) {
	return deleteRow(ctx, db, unitImages.name, id)
}

func appendImages(ctx context.Context, db *sql.DB, t imageTable, ownerTable, ownerID string, images []model.Image) ([]model.Image, error) {
	found := false
	err := withTx(ctx, db, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+ownerTable+` WHERE id = ?`, ownerID,
		).Scan(&count)
		if err != nil {
			return fmt.Errorf("checking %s owner: %w", t.name, err)
		}
		if count == 0 {
			return nil
		}
		found = true

		var next int
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(sort_order) + 1, 0) FROM `+t.name+` WHERE `+t.owner+` = ?`, ownerID,
		).Scan(&next)
		if err != nil {
			return fmt.Errorf("getting next %s order: %w", t.name, err)
		}

		for i := range images {
			images[i].Order = next + i
		}
		return insertImages(ctx, tx, t, ownerID, images)
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return images, nil
}

// insertImages inserts images with their Order as given, assigning IDs.
func insertImages(ctx context.Context, q querier, t imageTable, ownerID string, images []model.Image) error {
	for i := range images {
		images[i].ID = uuid.NewString()
		_, err := q.ExecContext(ctx,
			`INSERT INTO `+t.name+` (id, `+t.owner+`, url, storage_key, sort_order) VALUES (?, ?, ?, ?, ?)`,
			images[i].ID, ownerID, images[i].URL, images[i].StorageKey, images[i].Order,
		)
		if err != nil {
			return fmt.Errorf("creating %s row: %w", t.name, err)
		}
	}
	return nil
}

func listImages(ctx context.Context, q querier, t imageTable, ownerID string) ([]model.Image, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, url, storage_key, sort_order FROM `+t.name+`
		 WHERE `+t.owner+` = ? ORDER BY sort_order, rowid`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", t.name, err)
	}
	defer rows.Close()

	images := []model.Image{}
	for rows.Next() {
		var img model.Image
		var key sql.NullString
		if err := rows.Scan(&img.ID, &img.URL, &key, &img.Order); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.name, err)
		}
		img.StorageKey = nullString(key)
		images = append(images, img)
	}
	return images, rows.Err()
}

func getImage(ctx context.Context, db *sql.DB, t imageTable, id string) (*model.Image, string, error) {
	var img model.Image
	var key sql.NullString
	var ownerID string
	err := db.QueryRowContext(ctx,
		`SELECT id, url, storage_key, sort_order, `+t.owner+` FROM `+t.name+` WHERE id = ?`, id,
	).Scan(&img.ID, &img.URL, &key, &img.Order, &ownerID)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting %s row: %w", t.name, err)
	}
	img.StorageKey = nullString(key)
	return &img, ownerID, nil
}
