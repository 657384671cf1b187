package gormdb

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"storefront-service/internal/domain"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// MySQL server error numbers worth a retry.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
	mysqlTooManyConns    = 1040
	mysqlServerShutdown  = 1053
)

// classify turns infrastructure failures that a caller may retry into
// domain.StorageUnavailable. Domain errors and permanent failures pass through.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.AsOrderError(err); ok {
		return err
	}
	if isTransient(err) {
		return domain.StorageUnavailable(err)
	}
	return err
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysqldriver.ErrInvalidConn) {
		return true
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlLockWaitTimeout, mysqlDeadlock, mysqlTooManyConns, mysqlServerShutdown:
			return true
		}
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "53300", "57014", "57P01":
			return true
		}
		return strings.HasPrefix(pgErr.Code, "08")
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(strings.ToLower(strings.TrimSpace(s)))
}
