// Package projection derives the visible list of a page from its entity snapshot and
// the current search term.
package projection

import (
	"strings"

	"github.com/noah-isme/campus-portal/internal/models"
)

// FieldSet extracts the searchable text of an entity.
type FieldSet[E any] func(E) []string

// Searchable fields per resource kind.
var (
	StudentFields FieldSet[models.Student] = func(s models.Student) []string {
		return []string{s.Name}
	}
	CourseFields FieldSet[models.Course] = func(c models.Course) []string {
		return []string{c.Name, c.Description}
	}
	UniversityFields FieldSet[models.University] = func(u models.University) []string {
		return []string{u.Name}
	}
)

// Filter keeps the items where any field contains term, ignoring case. The relative
// order of items is preserved and an empty term returns items unchanged. The term is
// matched as typed, so whitespace is significant.
func Filter[E any](items []E, term string, fields FieldSet[E]) []E {
	needle := strings.ToLower(term)
	if needle == "" || fields == nil {
		return items
	}
	out := make([]E, 0, len(items))
	for _, item := range items {
		if matches(fields(item), needle) {
			out = append(out, item)
		}
	}
	return out
}

func matches(values []string, needle string) bool {
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), needle) {
			return true
		}
	}
	return false
}
