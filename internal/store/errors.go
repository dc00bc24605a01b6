package store

import (
	"errors"
	"fmt"

	"github.com/geocoder89/storefront/internal/domain/account"
	"github.com/geocoder89/storefront/internal/domain/category"
)

// StoreFailure wraps an underlying persistence error that is not one of the
// modeled outcomes (not found, duplicate). The cause is kept for errors.Is/As.
type StoreFailure struct {
	Op  string
	Err error
}

func (e *StoreFailure) Error() string {
	return fmt.Sprintf("store failure during %s: %v", e.Op, e.Err)
}

func (e *StoreFailure) Unwrap() error { return e.Err }

// modeled errors pass through untouched, everything else becomes a StoreFailure
var modeled = []error{
	account.ErrNotFound,
	account.ErrDuplicateEmail,
	category.ErrNotFound,
	category.ErrDuplicateName,
}

func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	for _, target := range modeled {
		if errors.Is(err, target) {
			return target
		}
	}

	var sf *StoreFailure
	if errors.As(err, &sf) {
		return err
	}

	return &StoreFailure{Op: op, Err: err}
}
