package catalog

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"recommender/internal/domain"
)

var (
	// ErrEmptyCatalog is returned when the source yields no records.
	ErrEmptyCatalog = errors.New("catalog is empty")
	// ErrDuplicateTitle is returned when two records share a normalized title.
	ErrDuplicateTitle = errors.New("duplicate catalog title")
	// ErrInvalidRecord is returned when a record fails field validation.
	ErrInvalidRecord = errors.New("invalid catalog record")
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks that the catalog is non-empty, that every record carries the
// required fields, and that titles are unique ignoring case.
func Validate(records []domain.CatalogItem) error {
	if len(records) == 0 {
		return ErrEmptyCatalog
	}
	v := recordValidator()
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if strings.TrimSpace(r.Title) == "" {
			return fmt.Errorf("%w: record %d: title is required", ErrInvalidRecord, i)
		}
		if err := v.Struct(r); err != nil {
			return fmt.Errorf("%w: record %d (%q): %s", ErrInvalidRecord, i, r.Title, describe(err))
		}
		key := NormalizeTitle(r.Title)
		if first, ok := seen[key]; ok {
			return fmt.Errorf("%w: %q at records %d and %d", ErrDuplicateTitle, r.Title, first, i)
		}
		seen[key] = i
	}
	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "gte", "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
