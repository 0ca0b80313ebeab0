package checkout

import (
	"errors"
	"fmt"

	domorder "github.com/tiendago/storefront/internal/domain/order"
	domproduct "github.com/tiendago/storefront/internal/domain/product"
)

var (
	ErrNotFound          = domorder.ErrNotFound
	ErrProductNotFound   = domproduct.ErrNotFound
	ErrNotPending        = domorder.ErrNotPending
	ErrInsufficientStock = domproduct.ErrInsufficientStock
	ErrRepository        = errors.New("checkout: repository failure")
	ErrValidation        = errors.New("validation")
)

func wrapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domorder.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, domproduct.ErrNotFound):
		return ErrProductNotFound
	case errors.Is(err, domorder.ErrConflict):
		return domorder.ErrConflict
	default:
		return fmt.Errorf("%w: %w", ErrRepository, err)
	}
}

func newValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
