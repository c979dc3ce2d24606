package postgres

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/omnistat/platform-server/internal/model"
)

const uniqueViolationCode = "23505"

// classify maps low-level store failures onto the error taxonomy so
// callers can tell a deadline from a dead connection. Business errors
// pass through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return model.ErrTimeout
		}
		return model.ErrUnavailable
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return model.ErrUnavailable
	}

	return err
}

// isUniqueViolation reports whether err is a violated unique constraint.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
