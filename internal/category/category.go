// Package category holds the set of task categories focus time can be
// attributed to, and the policy for categories outside that set.
package category

import (
	"slices"
	"strings"

	"github.com/sadopc/tomato/internal/domain"
)

// Predefined categories, in display order.
const (
	Work     = "work"
	Study    = "study"
	Creative = "creative"
	Personal = "personal"
	Health   = "health"
)

// Default is credited when a focus session has no task attached.
const Default = Work

// Predefined returns the built-in categories.
func Predefined() []string {
	return []string{Work, Study, Creative, Personal, Health}
}

// Catalog is the set of known categories. A closed catalog rejects anything
// outside Known; an open catalog accepts free-form names.
type Catalog struct {
	known []string
	open  bool
}

// NewCatalog normalizes and de-duplicates known. The default category is
// always part of the catalog.
func NewCatalog(known []string, open bool) Catalog {
	c := Catalog{open: open}
	for _, k := range append([]string{Default}, known...) {
		k = Normalize(k)
		if k == "" || slices.Contains(c.known, k) {
			continue
		}
		c.known = append(c.known, k)
	}
	return c
}

// Closed is a closed catalog of the predefined categories.
func Closed() Catalog { return NewCatalog(Predefined(), false) }

// Open is an open catalog seeded with the predefined categories.
func Open() Catalog { return NewCatalog(Predefined(), true) }

// Normalize lowercases and trims a category name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Known returns a copy of the known categories.
func (c Catalog) Known() []string { return slices.Clone(c.known) }

// IsOpen reports whether free-form categories are accepted.
func (c Catalog) IsOpen() bool { return c.open }

// Contains reports whether name is one of the known categories.
func (c Catalog) Contains(name string) bool {
	return slices.Contains(c.known, Normalize(name))
}

// Resolve normalizes name and checks it against the policy.
func (c Catalog) Resolve(name string) (string, error) {
	n := Normalize(name)
	if n == "" {
		return "", domain.NewValidationError("category", "required")
	}
	if !c.open && !slices.Contains(c.known, n) {
		return "", domain.NewValidationError("category", "unknown category "+n)
	}
	return n, nil
}
