package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uphproperties/uphsite/internal/model"
	"github.com/uphproperties/uphsite/internal/storage"
)

func createTestProperty(t *testing.T, svc *Service, name string) *model.Property {
	t.Helper()
	p, err := svc.CreateProperty(context.Background(), validNewProperty(t, name))
	require.NoError(t, err)
	return p
}

func TestCreateUnitSetsHasUnits(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	p := createTestProperty(t, svc, "Main St")
	require.False(t, p.HasUnits)

	u, err := svc.CreateUnit(ctx, p.ID, fields(t, `{"label": " 2B ", "bedrooms": 2, "bathrooms": "1.5", "sqft": 820}`))
	require.NoError(t, err)
	require.Equal(t, "2B", u.Label)
	require.True(t, u.Available, "available defaults to true")
	require.False(t, u.IsHidden)
	require.Nil(t, u.Rent)

	got, err := svc.GetProperty(ctx, p.ID)
	require.NoError(t, err)
	require.True(t, got.HasUnits)
	require.Len(t, got.Units, 1)
}

func TestCreateUnitValidation(t *testing.T) {
	svc, _, database := newTestService(t)
	ctx := context.Background()
	p := createTestProperty(t, svc, "Main St")

	_, err := svc.CreateUnit(ctx, p.ID, fields(t, `{"label": "A"}`))
	ve := requireValidation(t, err)
	require.Equal(t, []string{"bedrooms", "bathrooms", "sqft"}, ve.Fields)

	_, err = svc.CreateUnit(ctx, p.ID, fields(t, `{"label": "A", "bedrooms": "two", "bathrooms": "x", "sqft": 500}`))
	ve = requireValidation(t, err)
	require.Equal(t, []string{"bedrooms", "bathrooms"}, ve.Fields)
	require.Contains(t, ve.Message, "sqft")

	_, err = svc.CreateUnit(ctx, p.ID, fields(t, `{"label": "A", "bedrooms": 1, "bathrooms": 1, "sqft": 500, "rent": "lots"}`))
	requireValidation(t, err)

	require.Zero(t, countRows(t, database, "units"))

	_, err = svc.CreateUnit(ctx, "missing", fields(t, `{"label": "A", "bedrooms": 1, "bathrooms": 1, "sqft": 500}`))
	requireNotFound(t, err)
}

func TestUpdateUnit(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	p := createTestProperty(t, svc, "Main St")
	u, err := svc.CreateUnit(ctx, p.ID, fields(t, `{"label": "A", "bedrooms": 1, "bathrooms": 1, "sqft": 500, "rent": 900}`))
	require.NoError(t, err)

	updated, err := svc.UpdateUnit(ctx, p.ID, u.ID, fields(t, `{"rent": null, "isHidden": true, "sqft": "550"}`))
	require.NoError(t, err)
	require.Nil(t, updated.Rent)
	require.True(t, updated.IsHidden)
	require.Equal(t, 550, updated.Sqft)
	require.Equal(t, "A", updated.Label)

	_, err = svc.UpdateUnit(ctx, p.ID, u.ID, fields(t, `{"bedrooms": "two"}`))
	requireValidation(t, err)
	_, err = svc.UpdateUnit(ctx, p.ID, u.ID, fields(t, `{"label": ""}`))
	requireValidation(t, err)

	other := createTestProperty(t, svc, "Elm Court")
	_, err = svc.UpdateUnit(ctx, other.ID, u.ID, fields(t, `{"label": "B"}`))
	requireNotFound(t, err)
}

func TestDeleteUnit(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()
	p := createTestProperty(t, svc, "Main St")
	u, err := svc.CreateUnit(ctx, p.ID, fields(t, `{"label": "A", "bedrooms": 1, "bathrooms": 1, "sqft": 500}`))
	require.NoError(t, err)

	u, err = svc.SetUnitCover(ctx, p.ID, u.ID, jpegFile(t, "cover.jpg"))
	require.NoError(t, err)
	images, err := svc.AddUnitGallery(ctx, p.ID, u.ID, []storage.File{jpegFile(t, "g.jpg")})
	require.NoError(t, err)
	require.Len(t, images, 1)

	require.NoError(t, svc.DeleteUnit(ctx, p.ID, u.ID))
	require.False(t, mem.Has(*u.CoverImageKey))
	require.False(t, mem.Has(*images[0].StorageKey))
	require.True(t, mem.Has(*p.HeroImageKey), "property media is untouched")

	requireNotFound(t, svc.DeleteUnit(ctx, p.ID, u.ID))
}
