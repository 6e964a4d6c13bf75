package catalog

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/uphproperties/uphsite/internal/store"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its alphanumeric runs with dashes.
func Slugify(name string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "property"
	}
	return s
}

// uniqueSlug returns Slugify(name), or the first of its "-1", "-2", ...
// variants that no property uses yet.
func (s *Service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := Slugify(name)
	candidate := base
	for i := 1; ; i++ {
		taken, err := store.SlugExists(ctx, s.db, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
