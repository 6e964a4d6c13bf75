package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uphproperties/uphsite/internal/storage"
)

func TestCreatePropertyRequiresHero(t *testing.T) {
	svc, mem, database := newTestService(t)

	in := validNewProperty(t, "Main St")
	in.Hero = nil
	_, err := svc.CreateProperty(context.Background(), in)
	ve := requireValidation(t, err)
	require.Equal(t, []string{"heroImage"}, ve.Fields)

	in.Hero = &storage.File{Name: "empty.jpg"}
	_, err = svc.CreateProperty(context.Background(), in)
	requireValidation(t, err)

	require.Empty(t, mem.Keys())
	require.Zero(t, countRows(t, database, "properties"))
}

func TestCreatePropertyListsMissingFields(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProperty(context.Background(), NewProperty{
		Fields: fields(t, `{"name": "Main St", "city": "  ", "zip": null}`),
	})
	ve := requireValidation(t, err)
	require.Equal(t, []string{"address", "city", "state", "zip", "type", "description", "heroImage"}, ve.Fields)
	require.Contains(t, ve.Message, "missing fields")
}

func TestCreatePropertyUniqueSlugs(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	var slugs []string
	for range 3 {
		p, err := svc.CreateProperty(ctx, validNewProperty(t, "Main St"))
		require.NoError(t, err)
		slugs = append(slugs, p.Slug)
	}
	require.Equal(t, []string{"main-st", "main-st-1", "main-st-2"}, slugs)
}

func TestCreatePropertyStoresEverything(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()

	in := validNewProperty(t, "Main St")
	in.Gallery = []storage.File{jpegFile(t, "g1.jpg"), {Name: "skipped.jpg"}, jpegFile(t, "g2.jpg")}
	in.Units = []NewUnit{
		{
			Fields:  fields(t, `{"label": "Unit A", "bedrooms": "2", "bathrooms": 1.5, "sqft": 900, "rent": ""}`),
			Cover:   filePtr(jpegFile(t, "a.jpg")),
			Gallery: []storage.File{jpegFile(t, "a1.jpg")},
		},
		{Fields: fields(t, `{"label": "Unit B", "bedrooms": 1, "bathrooms": "1", "sqft": "640", "rent": 1100, "available": false, "isHidden": "on"}`)},
	}

	p, err := svc.CreateProperty(ctx, in)
	require.NoError(t, err)

	require.Equal(t, "main-st", p.Slug)
	require.Equal(t, "Eight **bright** units.", p.Description)
	require.Equal(t, []string{"Parking", "Laundry"}, p.Amenities)
	require.Equal(t, 950.0, *p.RentFrom)
	require.Equal(t, 1150.0, *p.RentTo)
	require.True(t, p.HasUnits)
	require.True(t, strings.HasPrefix(*p.HeroImageKey, "properties/main-st/hero/"))
	require.True(t, strings.HasSuffix(*p.HeroImageKey, "-hero.jpg"), "photos are re-encoded as JPEG")

	require.Len(t, p.Gallery, 2)
	for i, img := range p.Gallery {
		require.Equal(t, i, img.Order)
		require.True(t, strings.HasPrefix(*img.StorageKey, "properties/main-st/gallery/"))
	}

	require.Len(t, p.Units, 2)
	a, b := p.Units[0], p.Units[1]
	require.Equal(t, "Unit A", a.Label)
	require.Equal(t, 2, a.Bedrooms)
	require.Equal(t, 1.5, a.Bathrooms)
	require.Nil(t, a.Rent)
	require.True(t, a.Available)
	require.False(t, a.IsHidden)
	require.True(t, strings.HasPrefix(*a.CoverImageKey, "properties/main-st/units/1/cover/"))
	require.Len(t, a.Gallery, 1)
	require.True(t, strings.HasPrefix(*a.Gallery[0].StorageKey, "properties/main-st/units/1/gallery/"))

	require.Equal(t, 1100.0, *b.Rent)
	require.False(t, b.Available)
	require.True(t, b.IsHidden)
	require.Nil(t, b.CoverImageKey)

	require.ElementsMatch(t, p.StorageKeys(), mem.Keys())
}

func TestCreatePropertyRejectsNonNumericUnit(t *testing.T) {
	svc, mem, database := newTestService(t)

	in := validNewProperty(t, "Main St")
	in.Units = []NewUnit{
		{Fields: fields(t, `{"label": "A", "bedrooms": 1, "bathrooms": 1, "sqft": 500}`), Cover: filePtr(jpegFile(t, "a.jpg"))},
		{Fields: fields(t, `{"label": "B", "bedrooms": "two", "bathrooms": 1, "sqft": 500}`)},
	}

	_, err := svc.CreateProperty(context.Background(), in)
	ve := requireValidation(t, err)
	require.Contains(t, ve.Message, "bedrooms")
	require.Contains(t, ve.Message, "bathrooms")
	require.Contains(t, ve.Message, "sqft")
	require.Contains(t, ve.Message, "unit 2")
	require.Equal(t, []string{"units[1].bedrooms"}, ve.Fields)

	require.Empty(t, mem.Keys(), "nothing is uploaded before validation passes")
	require.Zero(t, countRows(t, database, "properties"))
	require.Zero(t, countRows(t, database, "units"))
}

func TestCreatePropertyRejectsBadImage(t *testing.T) {
	svc, mem, _ := newTestService(t)

	in := validNewProperty(t, "Main St")
	in.Gallery = []storage.File{{Name: "notes.txt", Data: []byte("plain text")}}
	_, err := svc.CreateProperty(context.Background(), in)
	ve := requireValidation(t, err)
	require.Equal(t, []string{"gallery"}, ve.Fields)
	require.Empty(t, mem.Keys())
}

func TestCreatePropertyUploadFailureLeavesNothing(t *testing.T) {
	svc, mem, database := newTestService(t)

	in := validNewProperty(t, "Main St")
	in.Gallery = []storage.File{jpegFile(t, "g1.jpg"), jpegFile(t, "g2.jpg")}
	mem.UploadErr = func(prefix string, _ storage.File) error {
		if strings.HasSuffix(prefix, "/gallery") {
			return errors.New("bucket unavailable")
		}
		return nil
	}

	_, err := svc.CreateProperty(context.Background(), in)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	require.Empty(t, mem.Keys(), "uploaded objects are removed")
	require.Zero(t, countRows(t, database, "properties"))
}

func TestCreatePropertyInsertFailureRemovesUploads(t *testing.T) {
	svc, mem, database := newTestService(t)

	// Force the insert to fail after uploads succeed.
	_, err := database.Exec(`CREATE TRIGGER reject_properties BEFORE INSERT ON properties
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	_, err = svc.CreateProperty(context.Background(), validNewProperty(t, "Main St"))
	require.Error(t, err)
	require.Empty(t, mem.Keys())
	require.Len(t, mem.Deleted(), 1)
}

func TestUpdatePropertyPartial(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, validNewProperty(t, "Main St"))
	require.NoError(t, err)

	updated, err := svc.UpdateProperty(ctx, p.ID, fields(t, `{"rentFrom": null, "name": "  Main Street  "}`))
	require.NoError(t, err)
	require.Nil(t, updated.RentFrom)
	require.NotNil(t, updated.RentTo)
	require.Equal(t, 1150.0, *updated.RentTo)
	require.Equal(t, "Main Street", updated.Name)
	require.Equal(t, "main-st", updated.Slug, "slug is stable across renames")
	require.Equal(t, p.City, updated.City)
	require.Equal(t, p.Amenities, updated.Amenities)

	updated, err = svc.UpdateProperty(ctx, p.ID, fields(t, `{"rentTo": "", "latitude": "45.2", "amenities": [" Pool ", ""], "hasUnits": "yes"}`))
	require.NoError(t, err)
	require.Nil(t, updated.RentTo)
	require.Equal(t, 45.2, *updated.Latitude)
	require.Equal(t, []string{"Pool"}, updated.Amenities)
	require.True(t, updated.HasUnits)
}

func TestUpdatePropertyValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, validNewProperty(t, "Main St"))
	require.NoError(t, err)

	for _, patch := range []string{
		`{"rentFrom": "cheap"}`,
		`{"longitude": true}`,
		`{"amenities": "Parking"}`,
		`{"name": "   "}`,
		`{"hasUnits": "sometimes"}`,
	} {
		_, err := svc.UpdateProperty(ctx, p.ID, fields(t, patch))
		requireValidation(t, err)
	}

	got, err := svc.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, *p.RentFrom, *got.RentFrom)

	_, err = svc.UpdateProperty(ctx, "missing", fields(t, `{"name": "X"}`))
	requireNotFound(t, err)
	_, err = svc.UpdateProperty(ctx, "missing", fields(t, `{}`))
	requireNotFound(t, err)
}

func TestDeletePropertySurvivesStorageFailures(t *testing.T) {
	svc, mem, database := newTestService(t)
	ctx := context.Background()

	in := validNewProperty(t, "Main St")
	in.Gallery = []storage.File{jpegFile(t, "g1.jpg")}
	in.Units = []NewUnit{{
		Fields: fields(t, `{"label": "A", "bedrooms": 1, "bathrooms": 1, "sqft": 500}`),
		Cover:  filePtr(jpegFile(t, "a.jpg")),
	}}
	p, err := svc.CreateProperty(ctx, in)
	require.NoError(t, err)
	keys := p.StorageKeys()
	require.Len(t, keys, 3)

	mem.DeleteErr = func(string) error { return errors.New("storage down") }
	require.NoError(t, svc.DeleteProperty(ctx, p.ID))

	_, err = svc.GetProperty(ctx, p.ID)
	requireNotFound(t, err)
	require.Equal(t, keys, mem.Deleted(), "every key is attempted")
	require.Zero(t, countRows(t, database, "units"))
	require.Zero(t, countRows(t, database, "property_images"))

	requireNotFound(t, svc.DeleteProperty(ctx, p.ID))
}

func TestDeletePropertyRemovesMedia(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, validNewProperty(t, "Main St"))
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProperty(ctx, p.ID))
	require.Empty(t, mem.Keys())
}

func TestGetPropertyBySlug(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateProperty(ctx, validNewProperty(t, "Elm Court"))
	require.NoError(t, err)

	got, err := svc.GetPropertyBySlug(ctx, " Elm-Court ")
	require.NoError(t, err)
	require.Equal(t, p.ID, got.ID)

	_, err = svc.GetPropertyBySlug(ctx, "nope")
	requireNotFound(t, err)

	list, err := svc.ListProperties(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
