// Package catalog manages properties, their units and their media. Every
// operation keeps the database and the object store consistent: uploads that
// never became referenced are removed, and stored objects are only deleted
// after the rows pointing at them are gone.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/sync/errgroup"

	"github.com/uphproperties/uphsite/internal/imaging"
	"github.com/uphproperties/uphsite/internal/storage"
)

// uploadConcurrency bounds parallel uploads within one operation.
const uploadConcurrency = 4

// Service is the property and unit repository.
type Service struct {
	db       *sql.DB
	storage  storage.Storage
	logger   *slog.Logger
	markdown goldmark.Markdown
}

// NewService returns a Service backed by db and st. A nil logger uses
// slog.Default().
func NewService(db *sql.DB, st storage.Storage, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:      db,
		storage: st,
		logger:  logger,
		// Raw HTML in descriptions is escaped; WithUnsafe is not set.
		markdown: goldmark.New(goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps())),
	}
}

type pendingUpload struct {
	prefix string
	file   storage.File
}

// prepareImage normalises an uploaded photo for storage.
func prepareImage(field string, f storage.File) (storage.File, error) {
	photo, err := imaging.Normalize(f.Name, f.Data)
	if err != nil {
		return storage.File{}, &ValidationError{
			Message: fmt.Sprintf("%s must be a JPEG, PNG, GIF or WebP image", field),
			Fields:  []string{field},
		}
	}
	return storage.File{Name: photo.Name, ContentType: photo.MIME, Data: photo.Data}, nil
}

// nonEmpty drops zero-byte files.
func nonEmpty(files []storage.File) []storage.File {
	out := make([]storage.File, 0, len(files))
	for _, f := range files {
		if len(f.Data) > 0 {
			out = append(out, f)
		}
	}
	return out
}

// uploadAll stores every pending upload, in parallel, returning the objects
// in input order. If any upload fails the ones that succeeded are removed
// and a StorageError is returned.
func (s *Service) uploadAll(ctx context.Context, uploads []pendingUpload) ([]storage.Object, error) {
	objects := make([]storage.Object, len(uploads))
	if len(uploads) == 0 {
		return objects, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, u := range uploads {
		g.Go(func() error {
			obj, err := s.storage.Upload(gctx, u.prefix, u.file)
			if err != nil {
				return err
			}
			objects[i] = obj
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var stored []string
		for _, obj := range objects {
			if obj.Key != "" {
				stored = append(stored, obj.Key)
			}
		}
		s.removeObjects(ctx, stored)
		return nil, &StorageError{Err: err}
	}
	return objects, nil
}

// upload stores a single file.
func (s *Service) upload(ctx context.Context, prefix string, f storage.File) (storage.Object, error) {
	obj, err := s.storage.Upload(ctx, prefix, f)
	if err != nil {
		return storage.Object{}, &StorageError{Err: err}
	}
	return obj, nil
}

// removeObjects deletes each key independently. Failures are logged and
// never returned; a failed key does not stop the others.
func (s *Service) removeObjects(ctx context.Context, keys []string) {
	ctx = context.WithoutCancel(ctx)
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn("failed to delete stored object", "key", key, "error", err)
		}
	}
}

func objectKeys(objects []storage.Object) []string {
	keys := make([]string, 0, len(objects))
	for _, obj := range objects {
		keys = append(keys, obj.Key)
	}
	return keys
}
