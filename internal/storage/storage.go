// Package storage puts uploaded media into an object store and removes it
// again. Objects are addressed by key; the URL is what gets published.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotConfigured is returned by backends that lack the settings they need.
var ErrNotConfigured = errors.New("storage is not configured")

// File is an upload waiting to be stored.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Object is a stored upload.
type Object struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Storage is an object store for uploaded media.
type Storage interface {
	// Upload stores f under a fresh key below prefix.
	Upload(ctx context.Context, prefix string, f File) (Object, error)
	// Delete removes the object at key. Deleting a missing object is not an
	// error.
	Delete(ctx context.Context, key string) error
}

var (
	unsafeChars = regexp.MustCompile(`[^a-z0-9.-]+`)
	dashRuns    = regexp.MustCompile(`-+`)
)

// SanitizeName lowercases name and reduces it to [a-z0-9.-], falling back to
// "upload" when nothing usable remains.
func SanitizeName(name string) string {
	s := unsafeChars.ReplaceAllString(strings.ToLower(name), "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" || s == "." || s == ".." {
		return "upload"
	}
	return s
}

// NewKey builds "<prefix>/<unix-ms>-<uuid>-<name>" for a new object.
func NewKey(prefix, name string, now time.Time) string {
	prefix = strings.Trim(prefix, "/")
	return fmt.Sprintf("%s/%d-%s-%s", prefix, now.UnixMilli(), uuid.NewString(), SanitizeName(name))
}

func contentType(f File) string {
	if f.ContentType == "" {
		return "application/octet-stream"
	}
	return f.ContentType
}
