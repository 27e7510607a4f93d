package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	apperrors "github.com/ameerarsath/publicdocsafe-sub002/internal/errors"
)

// WrapStoreError wraps a repository error, classifying transient failures
// (bad connections, timeouts, network errors) as ErrUnavailable so callers
// can retry with backoff. All other errors keep their original class.
func WrapStoreError(err error, message string) error {
	if err == nil {
		return nil
	}
	if isUnavailable(err) {
		return fmt.Errorf("%s: %w: %v", message, apperrors.ErrUnavailable, err)
	}
	return apperrors.Wrap(err, message)
}

func isUnavailable(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
