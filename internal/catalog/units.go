package catalog

import (
	"context"

	"github.com/uphproperties/uphsite/internal/model"
	"github.com/uphproperties/uphsite/internal/store"
)

var unitNumericFields = []string{"bedrooms", "bathrooms", "sqft"}

func numericError(bad []string) *ValidationError {
	return &ValidationError{
		Message: "bedrooms, bathrooms and sqft must be numeric (bedrooms and sqft whole numbers)",
		Fields:  bad,
	}
}

// newUnit validates a complete unit. available defaults to true.
func newUnit(f Fields) (*model.Unit, error) {
	if f == nil {
		f = Fields{}
	}

	var missing []string
	for _, key := range append([]string{"label"}, unitNumericFields...) {
		if f.blank(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, missingFields(missing)
	}

	changes, err := unitChanges(f)
	if err != nil {
		return nil, err
	}

	u := &model.Unit{
		Label:     changes["label"].(string),
		Bedrooms:  changes["bedrooms"].(int),
		Bathrooms: changes["bathrooms"].(float64),
		Sqft:      changes["sqft"].(int),
		Rent:      changedNumber(changes, "rent"),
		Available: true,
	}
	if v, ok := changes["available"].(bool); ok {
		u.Available = v
	}
	if v, ok := changes["is_hidden"].(bool); ok {
		u.IsHidden = v
	}
	return u, nil
}

// unitChanges turns the supplied keys of f into unit column changes.
func unitChanges(f Fields) (store.Changes, error) {
	changes := store.Changes{}

	if raw, ok := f["label"]; ok {
		label, err := text("label", raw)
		if err != nil {
			return nil, err
		}
		if label == "" {
			return nil, &ValidationError{Message: "label cannot be empty", Fields: []string{"label"}}
		}
		changes["label"] = label
	}

	var bad []string
	if raw, ok := f["bedrooms"]; ok {
		if v, ok := requiredInt(raw); ok {
			changes["bedrooms"] = v
		} else {
			bad = append(bad, "bedrooms")
		}
	}
	if raw, ok := f["bathrooms"]; ok {
		if v, ok := requiredNumber(raw); ok {
			changes["bathrooms"] = v
		} else {
			bad = append(bad, "bathrooms")
		}
	}
	if raw, ok := f["sqft"]; ok {
		if v, ok := requiredInt(raw); ok {
			changes["sqft"] = v
		} else {
			bad = append(bad, "sqft")
		}
	}
	if len(bad) > 0 {
		return nil, numericError(bad)
	}

	if raw, ok := f["rent"]; ok {
		rent, err := nullableNumber("rent", raw)
		if err != nil {
			return nil, err
		}
		changes["rent"] = rent
	}

	for field, col := range map[string]string{"available": "available", "isHidden": "is_hidden"} {
		raw, ok := f[field]
		if !ok {
			continue
		}
		v, err := boolean(field, raw)
		if err != nil {
			return nil, err
		}
		changes[col] = v
	}

	return changes, nil
}

// unitOf returns the unit if it belongs to propertyID.
func (s *Service) unitOf(ctx context.Context, propertyID, unitID string) (*model.Unit, error) {
	u, err := store.GetUnit(ctx, s.db, unitID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PropertyID != propertyID {
		return nil, notFound("unit", unitID)
	}
	return u, nil
}

// CreateUnit adds a unit to a property and marks the property as having
// units.
func (s *Service) CreateUnit(ctx context.Context, propertyID string, f Fields) (*model.Unit, error) {
	u, err := newUnit(f)
	if err != nil {
		return nil, err
	}
	u.PropertyID = propertyID

	created, err := store.CreateUnit(ctx, s.db, u)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, notFound("property", propertyID)
	}
	s.logger.Info("unit created", "property_id", propertyID, "unit_id", created.ID, "label", created.Label)
	return created, nil
}

// UpdateUnit applies the keys present in patch to a unit of the property.
func (s *Service) UpdateUnit(ctx context.Context, propertyID, unitID string, patch Fields) (*model.Unit, error) {
	changes, err := unitChanges(patch)
	if err != nil {
		return nil, err
	}
	if _, err := s.unitOf(ctx, propertyID, unitID); err != nil {
		return nil, err
	}

	found, err := store.UpdateUnit(ctx, s.db, unitID, changes)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound("unit", unitID)
	}
	return s.unitOf(ctx, propertyID, unitID)
}

// DeleteUnit removes a unit and its gallery, then its stored media.
func (s *Service) DeleteUnit(ctx context.Context, propertyID, unitID string) error {
	u, err := s.unitOf(ctx, propertyID, unitID)
	if err != nil {
		return err
	}

	deleted, err := store.DeleteUnit(ctx, s.db, unitID)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("unit", unitID)
	}

	s.removeObjects(ctx, u.StorageKeys())
	s.logger.Info("unit deleted", "property_id", propertyID, "unit_id", unitID, "label", u.Label)
	return nil
}
