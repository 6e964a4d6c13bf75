package catalog

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/uphproperties/uphsite/internal/db"
	"github.com/uphproperties/uphsite/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.Memory, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	mem := storage.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(database, mem, logger), mem, database
}

func jpegFile(t *testing.T, name string) storage.File {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 6))
	for x := 0; x < 8; x++ {
		for y := 0; y < 6; y++ {
			img.Set(x, y, color.RGBA{200, 120, 40, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return storage.File{Name: name, ContentType: "image/jpeg", Data: buf.Bytes()}
}

func filePtr(f storage.File) *storage.File { return &f }

func fields(t *testing.T, js string) Fields {
	t.Helper()
	f, err := ParseFields([]byte(js))
	require.NoError(t, err)
	return f
}

func validNewProperty(t *testing.T, name string) NewProperty {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"name":        name,
		"address":     "6 Main St",
		"city":        "Howland",
		"state":       "ME",
		"zip":         "04448",
		"type":        "Apartment Complex",
		"description": "Eight **bright** units.",
		"rentFrom":    "950",
		"rentTo":      1150,
		"amenities":   []string{" Parking ", "", "Laundry"},
	})
	require.NoError(t, err)
	return NewProperty{Fields: fields(t, string(b)), Hero: filePtr(jpegFile(t, "hero.png"))}
}

func countRows(t *testing.T, database *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func requireValidation(t *testing.T, err error) *ValidationError {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
	return ve
}

func requireNotFound(t *testing.T, err error) {
	t.Helper()
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf), "expected NotFoundError, got %v", err)
}

func TestUploadAllKeepsOrderAndCleansUpOnFailure(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()

	var uploads []pendingUpload
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		uploads = append(uploads, pendingUpload{prefix: "p", file: storage.File{Name: name + ".jpg"}})
	}
	objects, err := svc.uploadAll(ctx, uploads)
	require.NoError(t, err)
	for i, obj := range objects {
		require.True(t, strings.HasSuffix(obj.Key, "-"+uploads[i].file.Name), "object %d out of order: %s", i, obj.Key)
	}

	before := len(mem.Keys())
	mem.UploadErr = func(_ string, f storage.File) error {
		if f.Name == "c.jpg" {
			return errors.New("bucket unavailable")
		}
		return nil
	}
	_, err = svc.uploadAll(ctx, uploads)
	var se *StorageError
	require.ErrorAs(t, err, &se)
	require.Len(t, mem.Keys(), before, "partial uploads are removed")
}

func TestRemoveObjectsIsolatesFailures(t *testing.T) {
	svc, mem, _ := newTestService(t)
	ctx := context.Background()

	a, _ := mem.Upload(ctx, "p", storage.File{Name: "a"})
	b, _ := mem.Upload(ctx, "p", storage.File{Name: "b"})
	mem.DeleteErr = func(key string) error {
		if key == a.Key {
			return errors.New("denied")
		}
		return nil
	}

	svc.removeObjects(ctx, []string{a.Key, "", b.Key})
	require.True(t, mem.Has(a.Key))
	require.False(t, mem.Has(b.Key))
	require.Equal(t, []string{a.Key, b.Key}, mem.Deleted())
}
