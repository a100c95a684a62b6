package postgres

import (
	"fmt"
	"strings"

	apperrors "github.com/ny-kanto/mall-api/pkg/errors"
	"github.com/ny-kanto/mall-api/pkg/filter"
)

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23505")
}

// isForeignKeyViolation checks for SQLSTATE 23503.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "23503")
}

// isUnknownUser reports a foreign key violation on a user_id column: the
// caller's account is not known to this database.
func isUnknownUser(err error) bool {
	return isForeignKeyViolation(err) && strings.Contains(err.Error(), "user_id")
}

// isInvalidRegex checks for SQLSTATE 2201B, raised when Postgres rejects a
// search pattern.
func isInvalidRegex(err error) bool {
	return err != nil && strings.Contains(err.Error(), "2201B")
}

// listingError turns a rejected search pattern into a client error.
func listingError(op string, err error) error {
	if isInvalidRegex(err) {
		return apperrors.InvalidInput("invalid search pattern")
	}
	return fmt.Errorf("%s: %w", op, err)
}

// errUnknownAccount is returned when a verified caller has no users row.
var errUnknownAccount = apperrors.Unauthorized("account not found")

// whereClause renders a predicate as a WHERE clause.
func whereClause(where filter.Predicate) (string, []any) {
	cond, args := where.SQL(0)
	if cond == "" {
		return "", args
	}
	return "WHERE " + cond, args
}

// windowClause renders ORDER BY and, for a positive limit, LIMIT/OFFSET with
// parameters numbered after the n arguments already bound.
func windowClause(order filter.Sort, limit, skip, n int) (string, []any) {
	orderBy := order.SQL()
	if orderBy == "" {
		orderBy = "id"
	}
	clause := "ORDER BY " + orderBy
	if limit <= 0 {
		return clause, nil
	}
	return clause + fmt.Sprintf(" LIMIT $%d OFFSET $%d", n+1, n+2), []any{limit, skip}
}
