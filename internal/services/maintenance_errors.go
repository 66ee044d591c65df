package services

import (
	"errors"
	"fmt"

	"github.com/yungbote/assetpm-backend/internal/platform/apierr"
)

var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrNoSelection = errors.New("no pm ids provided")
)

func validationError(format string, args ...interface{}) error {
	return apierr.BadRequest("validation_failed", fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...)))
}

func notFoundError(code, msg string) error {
	return apierr.NotFound(code, fmt.Errorf("%w: %s", ErrNotFound, msg))
}
