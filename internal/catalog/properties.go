package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/uphproperties/uphsite/internal/model"
	"github.com/uphproperties/uphsite/internal/storage"
	"github.com/uphproperties/uphsite/internal/store"
)

// NewProperty is the input to CreateProperty.
type NewProperty struct {
	Fields  Fields
	Hero    *storage.File
	Gallery []storage.File
	Units   []NewUnit
}

// NewUnit is a unit created together with its property.
type NewUnit struct {
	Fields  Fields
	Cover   *storage.File
	Gallery []storage.File
}

type column struct {
	field    string
	column   string
	required bool
}

var propertyTextColumns = []column{
	{"name", "name", true},
	{"address", "address", true},
	{"city", "city", true},
	{"state", "state", true},
	{"zip", "zip", true},
	{"status", "status", false},
	{"type", "type", true},
	{"description", "description", true},
	{"bedroomsSummary", "bedrooms_summary", false},
	{"bathsSummary", "baths_summary", false},
	{"sqftApprox", "sqft_approx", false},
}

var propertyNumberColumns = []column{
	{field: "rentFrom", column: "rent_from"},
	{field: "rentTo", column: "rent_to"},
	{field: "latitude", column: "latitude"},
	{field: "longitude", column: "longitude"},
}

// propertyChanges turns the supplied keys of f into column changes. Absent
// keys are left out.
func propertyChanges(f Fields) (store.Changes, error) {
	changes := store.Changes{}

	for _, c := range propertyTextColumns {
		raw, ok := f[c.field]
		if !ok {
			continue
		}
		v, err := text(c.field, raw)
		if err != nil {
			return nil, err
		}
		if c.required && v == "" {
			return nil, &ValidationError{Message: c.field + " cannot be empty", Fields: []string{c.field}}
		}
		changes[c.column] = v
	}

	for _, c := range propertyNumberColumns {
		raw, ok := f[c.field]
		if !ok {
			continue
		}
		v, err := nullableNumber(c.field, raw)
		if err != nil {
			return nil, err
		}
		changes[c.column] = v
	}

	if raw, ok := f["amenities"]; ok {
		list, err := amenities(raw)
		if err != nil {
			return nil, err
		}
		changes["amenities"] = list
	}

	if raw, ok := f["hasUnits"]; ok {
		v, err := boolean("hasUnits", raw)
		if err != nil {
			return nil, err
		}
		changes["has_units"] = v
	}

	return changes, nil
}

func changedText(c store.Changes, col string) string {
	s, _ := c[col].(string)
	return s
}

func changedNumber(c store.Changes, col string) *float64 {
	v, _ := c[col].(*float64)
	return v
}

// CreateProperty validates the input, uploads all media, then inserts the
// property with its gallery and units in one transaction. No upload starts
// until every field and image has been validated. If anything fails after
// uploads began, every stored object is removed again.
func (s *Service) CreateProperty(ctx context.Context, in NewProperty) (*model.Property, error) {
	if in.Fields == nil {
		in.Fields = Fields{}
	}

	var missing []string
	for _, c := range propertyTextColumns {
		if c.required && in.Fields.blank(c.field) {
			missing = append(missing, c.field)
		}
	}
	if in.Hero == nil || len(in.Hero.Data) == 0 {
		missing = append(missing, "heroImage")
	}
	if len(missing) > 0 {
		return nil, missingFields(missing)
	}

	changes, err := propertyChanges(in.Fields)
	if err != nil {
		return nil, err
	}

	units := make([]model.Unit, len(in.Units))
	for i, nu := range in.Units {
		u, err := newUnit(nu.Fields)
		if err != nil {
			return nil, unitInputError(i, err)
		}
		units[i] = *u
	}

	hero, err := prepareImage("heroImage", *in.Hero)
	if err != nil {
		return nil, err
	}
	gallery, err := prepareImages("gallery", in.Gallery)
	if err != nil {
		return nil, err
	}
	unitCovers := make([]*storage.File, len(in.Units))
	unitGalleries := make([][]storage.File, len(in.Units))
	for i, nu := range in.Units {
		if nu.Cover != nil && len(nu.Cover.Data) > 0 {
			cover, err := prepareImage(fmt.Sprintf("units[%d].coverImage", i), *nu.Cover)
			if err != nil {
				return nil, err
			}
			unitCovers[i] = &cover
		}
		unitGalleries[i], err = prepareImages(fmt.Sprintf("units[%d].gallery", i), nu.Gallery)
		if err != nil {
			return nil, err
		}
	}

	slug, err := s.uniqueSlug(ctx, changedText(changes, "name"))
	if err != nil {
		return nil, fmt.Errorf("generating slug: %w", err)
	}

	// Queue uploads: hero, gallery, then each unit's cover and gallery.
	base := "properties/" + slug
	var uploads []pendingUpload
	add := func(prefix string, f storage.File) int {
		uploads = append(uploads, pendingUpload{prefix: prefix, file: f})
		return len(uploads) - 1
	}
	heroIdx := add(base+"/hero", hero)
	galleryIdx := make([]int, len(gallery))
	for i, f := range gallery {
		galleryIdx[i] = add(base+"/gallery", f)
	}
	coverIdx := make([]int, len(units))
	unitGalleryIdx := make([][]int, len(units))
	for i := range units {
		prefix := fmt.Sprintf("%s/units/%d", base, i+1)
		coverIdx[i] = -1
		if unitCovers[i] != nil {
			coverIdx[i] = add(prefix+"/cover", *unitCovers[i])
		}
		for _, f := range unitGalleries[i] {
			unitGalleryIdx[i] = append(unitGalleryIdx[i], add(prefix+"/gallery", f))
		}
	}

	objects, err := s.uploadAll(ctx, uploads)
	if err != nil {
		return nil, err
	}

	p := &model.Property{
		Slug:            slug,
		Name:            changedText(changes, "name"),
		Address:         changedText(changes, "address"),
		City:            changedText(changes, "city"),
		State:           changedText(changes, "state"),
		Zip:             changedText(changes, "zip"),
		Status:          changedText(changes, "status"),
		Type:            changedText(changes, "type"),
		Description:     changedText(changes, "description"),
		BedroomsSummary: changedText(changes, "bedrooms_summary"),
		BathsSummary:    changedText(changes, "baths_summary"),
		SqftApprox:      changedText(changes, "sqft_approx"),
		RentFrom:        changedNumber(changes, "rent_from"),
		RentTo:          changedNumber(changes, "rent_to"),
		Latitude:        changedNumber(changes, "latitude"),
		Longitude:       changedNumber(changes, "longitude"),
		HeroImageURL:    objects[heroIdx].URL,
		HeroImageKey:    &objects[heroIdx].Key,
		Units:           units,
	}
	p.Amenities, _ = changes["amenities"].([]string)
	hasUnits, _ := changes["has_units"].(bool)
	p.HasUnits = hasUnits || len(units) > 0

	for _, idx := range galleryIdx {
		p.Gallery = append(p.Gallery, imageFor(objects[idx]))
	}
	for i := range p.Units {
		if coverIdx[i] >= 0 {
			obj := objects[coverIdx[i]]
			p.Units[i].CoverImageURL = &obj.URL
			p.Units[i].CoverImageKey = &obj.Key
		}
		for _, idx := range unitGalleryIdx[i] {
			p.Units[i].Gallery = append(p.Units[i].Gallery, imageFor(objects[idx]))
		}
	}

	created, err := store.CreateProperty(ctx, s.db, p)
	if err != nil {
		s.removeObjects(ctx, objectKeys(objects))
		if store.IsUniqueViolation(err) {
			return nil, &ConflictError{Message: fmt.Sprintf("slug %q is already in use", slug)}
		}
		return nil, err
	}

	s.logger.Info("property created", "id", created.ID, "slug", created.Slug, "units", len(created.Units), "uploads", len(objects))
	return created, nil
}

func prepareImages(field string, files []storage.File) ([]storage.File, error) {
	files = nonEmpty(files)
	out := make([]storage.File, len(files))
	for i, f := range files {
		prepared, err := prepareImage(field, f)
		if err != nil {
			return nil, err
		}
		out[i] = prepared
	}
	return out, nil
}

func imageFor(obj storage.Object) model.Image {
	key := obj.Key
	return model.Image{URL: obj.URL, StorageKey: &key}
}

// unitInputError scopes a unit validation error to its position in the
// create payload.
func unitInputError(index int, err error) error {
	ve, ok := err.(*ValidationError)
	if !ok {
		return err
	}
	fields := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		fields[i] = fmt.Sprintf("units[%d].%s", index, f)
	}
	return &ValidationError{
		Message: fmt.Sprintf("unit %d: %s", index+1, ve.Message),
		Fields:  fields,
	}
}

// ListProperties returns every property, newest first.
func (s *Service) ListProperties(ctx context.Context) ([]model.Property, error) {
	return store.ListProperties(ctx, s.db)
}

// GetProperty returns a property with its gallery and units.
func (s *Service) GetProperty(ctx context.Context, id string) (*model.Property, error) {
	p, err := store.GetProperty(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound("property", id)
	}
	return p, nil
}

// GetPropertyBySlug returns a property by its URL slug.
func (s *Service) GetPropertyBySlug(ctx context.Context, slug string) (*model.Property, error) {
	p, err := store.GetPropertyBySlug(ctx, s.db, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, notFound("property", slug)
	}
	return p, nil
}

// UpdateProperty applies the keys present in patch. Keys that are absent
// are untouched; the slug never changes.
func (s *Service) UpdateProperty(ctx context.Context, id string, patch Fields) (*model.Property, error) {
	changes, err := propertyChanges(patch)
	if err != nil {
		return nil, err
	}

	found, err := store.UpdateProperty(ctx, s.db, id, changes)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, notFound("property", id)
	}
	return s.GetProperty(ctx, id)
}

// DeleteProperty removes the property, its units and all their images, then
// removes every stored object they referenced. Storage failures are logged
// and do not fail the delete.
func (s *Service) DeleteProperty(ctx context.Context, id string) error {
	p, err := s.GetProperty(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := store.DeleteProperty(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !deleted {
		return notFound("property", id)
	}

	keys := p.StorageKeys()
	s.removeObjects(ctx, keys)
	s.logger.Info("property deleted", "id", id, "slug", p.Slug, "objects", len(keys))
	return nil
}
