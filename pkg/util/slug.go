package util

import (
	"fmt"

	"github.com/gosimple/slug"
)

// Slugify builds a URL friendly slug, falling back to the given prefix for empty results
func Slugify(name, fallback string) string {
	s := slug.Make(name)
	if s == "" {
		return fallback
	}
	return s
}

// UniqueSlug appends a numeric suffix until exists reports the slug as free
func UniqueSlug(base string, exists func(string) (bool, error)) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
		if i > 1000 {
			return "", fmt.Errorf("could not allocate slug for %q", base)
		}
	}
}
