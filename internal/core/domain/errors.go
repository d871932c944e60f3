package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidInput  = errors.New("invalid input")
	ErrTemporary     = errors.New("temporary failure")

	// ErrAllCallsFailed marks a batch in which every attempted document
	// failed, which usually points at configuration rather than content.
	ErrAllCallsFailed = errors.New("all enhancement calls failed")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
