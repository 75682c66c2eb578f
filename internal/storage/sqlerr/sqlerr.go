// Package sqlerr classifies storage errors from either SQL backend so callers
// can react to constraint and connectivity failures without parsing messages.
// Repositories return errors unmodified; classification happens at the edge.
package sqlerr

import (
	"database/sql/driver"
	"errors"
	"net"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

type Kind int

const (
	KindNone Kind = iota
	KindUniqueViolation
	KindNotNullViolation
	KindForeignKeyViolation
	KindCheckViolation
	KindConnectivity
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUniqueViolation:
		return "unique_violation"
	case KindNotNullViolation:
		return "not_null_violation"
	case KindForeignKeyViolation:
		return "foreign_key_violation"
	case KindCheckViolation:
		return "check_violation"
	case KindConnectivity:
		return "connectivity"
	}
	return "other"
}

// Constraint reports whether k is one of the integrity-constraint kinds.
func (k Kind) Constraint() bool {
	return k >= KindUniqueViolation && k <= KindCheckViolation
}

// SQLSTATE class 23 codes.
var pgCodes = map[string]Kind{
	"23505": KindUniqueViolation,
	"23502": KindNotNullViolation,
	"23503": KindForeignKeyViolation,
	"23514": KindCheckViolation,
}

var mysqlNumbers = map[uint16]Kind{
	1062: KindUniqueViolation,     // ER_DUP_ENTRY
	1048: KindNotNullViolation,    // ER_BAD_NULL_ERROR
	1364: KindNotNullViolation,    // ER_NO_DEFAULT_FOR_FIELD
	1451: KindForeignKeyViolation, // ER_ROW_IS_REFERENCED_2
	1452: KindForeignKeyViolation, // ER_NO_REFERENCED_ROW_2
	3819: KindCheckViolation,      // ER_CHECK_CONSTRAINT_VIOLATED
}

func Classify(err error) Kind {
	if err == nil {
		return KindNone
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if k, ok := pgCodes[pgErr.Code]; ok {
			return k
		}
		// class 08: connection exception
		if len(pgErr.Code) == 5 && pgErr.Code[:2] == "08" {
			return KindConnectivity
		}
		return KindOther
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if k, ok := mysqlNumbers[myErr.Number]; ok {
			return k
		}
		return KindOther
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return KindConnectivity
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return KindConnectivity
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindConnectivity
	}
	return KindOther
}

// Constraint names the violated constraint when the driver reports it.
func Constraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
