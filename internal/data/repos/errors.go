package repos

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/assetpm-backend/internal/platform/apierr"
)

// MapError turns a storage failure into an apierr.Error carrying the status
// the HTTP layer should answer with.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return err
	}
	wrapped := fmt.Errorf("%s: %w", op, err)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierr.NotFound("not_found", wrapped)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apierr.New(http.StatusServiceUnavailable, "unavailable", wrapped)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return apierr.Conflict("conflict", wrapped) // unique_violation
		case "23503":
			return apierr.New(http.StatusPreconditionFailed, "precondition_failed", wrapped) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return apierr.New(http.StatusServiceUnavailable, "retryable", wrapped)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint failed"):
		return apierr.Conflict("conflict", wrapped)
	case strings.Contains(msg, "deadlock"), strings.Contains(msg, "database is locked"):
		return apierr.New(http.StatusServiceUnavailable, "retryable", wrapped)
	}
	return apierr.New(http.StatusInternalServerError, "internal", wrapped)
}
