package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	maxTitleLength  = 200
	maxAuthorLength = 100
	maxSearchLength = 200
	minYear         = 1000
	maxYear         = 9999
)

// ErrValidation matches every *ValidationError under errors.Is.
var ErrValidation = errors.New("validation failed")

// ValidationError lists rejected input per field. Nothing is persisted when a
// mutation returns one.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// BookFields is the complete input of a create.
type BookFields struct {
	Title           string
	Author          string
	PublicationYear int
	LibraryIDs      []int64
}

// BookPatch is a partial update; nil fields keep the stored value.
type BookPatch struct {
	Title           *string
	Author          *string
	PublicationYear *int
	LibraryIDs      *[]int64
}

// normalize trims the text fields and reports every invalid one.
func (f BookFields) normalize() (BookFields, error) {
	errs := fieldErrors{}
	f.Title = strings.TrimSpace(f.Title)
	f.Author = strings.TrimSpace(f.Author)

	switch {
	case f.Title == "":
		errs.add("title", "must not be blank")
	case utf8.RuneCountInString(f.Title) > maxTitleLength:
		errs.add("title", fmt.Sprintf("must be at most %d characters", maxTitleLength))
	}

	switch {
	case f.Author == "":
		errs.add("author", "must not be blank")
	case utf8.RuneCountInString(f.Author) > maxAuthorLength:
		errs.add("author", fmt.Sprintf("must be at most %d characters", maxAuthorLength))
	}

	if f.PublicationYear < minYear || f.PublicationYear > maxYear {
		errs.add("publication_year", fmt.Sprintf("must be between %d and %d", minYear, maxYear))
	}

	for _, id := range f.LibraryIDs {
		if id <= 0 {
			errs.add("library_ids", "must be positive ids")
			break
		}
	}
	return f, errs.err()
}

func normalizeSearch(q string) (string, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) > maxSearchLength {
		return "", &ValidationError{Fields: map[string]string{
			"q": fmt.Sprintf("must be at most %d characters", maxSearchLength),
		}}
	}
	return q, nil
}
