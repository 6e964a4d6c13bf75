package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/uphproperties/uphsite/internal/storage"
)

var errNotMultipart = errors.New("expected multipart/form-data body")

// parseMultipart limits the body to maxBytes and parses it as a multipart form.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("upload exceeds %d MB limit", maxBytes>>20)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return errNotMultipart
		}
		return errors.New("invalid multipart form")
	}
	return nil
}

// formFile returns the first file sent under field, or nil if there is none.
func formFile(r *http.Request, field string) (*storage.File, error) {
	if field == "" || r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	if len(headers) == 0 {
		return nil, nil
	}
	f, err := readFile(headers[0])
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// formFiles returns every file sent under field.
func formFiles(r *http.Request, field string) ([]storage.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var files []storage.File
	for _, h := range r.MultipartForm.File[field] {
		f, err := readFile(h)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func readFile(h *multipart.FileHeader) (storage.File, error) {
	src, err := h.Open()
	if err != nil {
		return storage.File{}, fmt.Errorf("opening upload %s: %w", h.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return storage.File{}, fmt.Errorf("reading upload %s: %w", h.Filename, err)
	}
	return storage.File{
		Name:        h.Filename,
		ContentType: h.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
