package dbx

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// PgCode returns the SQLSTATE of a Postgres error anywhere in err's chain,
// or "" when err did not come from the server.
func PgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
