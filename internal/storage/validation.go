// Package storage provides the SQLite chart library.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/stellium/internal/model"
	"github.com/go-playground/validator/v10"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidChart = errors.New("invalid chart")
)

var validate = validator.New()

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateChart checks the record fields and that every point is keyed by
// its own normalized key.
func validateChart(record *model.ChartRecord) error {
	if record == nil {
		return fmt.Errorf("%w: chart", ErrNilParameter)
	}

	if err := validate.Struct(record); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %q", ErrInvalidChart, strings.ToLower(fe.Field()), fe.Tag())
		}
		return fmt.Errorf("%w: %w", ErrInvalidChart, err)
	}

	for key, point := range record.Chart {
		if key == "" || key != model.NormalizeKey(key) {
			return fmt.Errorf("%w: point key %q is not normalized", ErrInvalidChart, key)
		}
		if point.Key != key {
			return fmt.Errorf("%w: point %q stored under key %q", ErrInvalidChart, point.Key, key)
		}
	}
	return nil
}
