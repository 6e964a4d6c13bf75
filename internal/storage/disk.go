package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Disk stores objects as files below Root and publishes them under BaseURL.
type Disk struct {
	Root    string
	BaseURL string // e.g. "https://example.com/uploads"
	Now     func() time.Time
}

// NewDisk returns a Disk rooted at root, creating the directory if needed.
func NewDisk(root, baseURL string) (*Disk, error) {
	if root == "" {
		return nil, fmt.Errorf("disk storage: %w", ErrNotConfigured)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Disk{Root: root, BaseURL: strings.TrimRight(baseURL, "/"), Now: time.Now}, nil
}

func (d *Disk) Upload(ctx context.Context, prefix string, f File) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	key := NewKey(prefix, f.Name, d.Now())
	path, err := d.path(key)
	if err != nil {
		return Object{}, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Object{}, fmt.Errorf("creating object dir: %w", err)
	}
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return Object{}, fmt.Errorf("writing object %s: %w", key, err)
	}

	return Object{Key: key, URL: d.BaseURL + "/" + key}, nil
}

func (d *Disk) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := d.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing object %s: %w", key, err)
	}
	return nil
}

// Handler serves stored objects. Mount it with http.StripPrefix.
func (d *Disk) Handler() http.Handler {
	return http.FileServer(noListing{http.Dir(d.Root)})
}

// path resolves key below Root, refusing keys that escape it.
func (d *Disk) path(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return "", fmt.Errorf("invalid object key %q", key)
		}
	}
	return filepath.Join(d.Root, filepath.FromSlash(key)), nil
}

// noListing hides directory indexes from the file server.
type noListing struct {
	fs http.FileSystem
}

func (n noListing) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}
