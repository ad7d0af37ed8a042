package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrEmailTaken  = errors.New("email already taken")
	ErrUnavailable = errors.New("storage unavailable")
)

type GormRepo struct {
	DB *gorm.DB
}

// wrap translates storage-layer failures into the repo error set. Deadline and
// cancellation errors surface as ErrUnavailable so callers can retry.
func wrap(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}
