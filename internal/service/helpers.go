package service

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/repository"
)

// isUserError reports whether err is the user's to fix rather than an
// operational failure.
func isUserError(err error) bool {
	var ve *domain.ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, domain.ErrLimitExceeded) ||
		errors.Is(err, repository.ErrNotFound)
}

// storeErr tags persistence failures as ErrStoreUnavailable, leaving
// user-facing sentinels untouched.
func storeErr(err error) error {
	if err == nil || isUserError(err) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
