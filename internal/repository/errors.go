// Package repository defines the error taxonomy shared by the data access
// layer, the services and the HTTP handlers.  Handlers translate these
// sentinels into status codes; services wrap them with context using %w.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a referenced entity is absent.
var ErrNotFound = errors.New("not found")

// ErrUnauthorized is returned when the caller lacks rights over the
// target, e.g. editing someone else's event or deleting another user's
// comment.  Handlers translate this into an HTTP 403 response.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidArgument signals a malformed identity or an out-of-range value.
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInsufficientInventory is returned when a ticket decrement would drive
// available_tickets below zero.  No partial decrement is ever applied.
var ErrInsufficientInventory = errors.New("insufficient inventory")

// ErrDuplicateOrder is returned when an order with the same payment
// reference already exists.
var ErrDuplicateOrder = errors.New("duplicate order")

const (
	mysqlDuplicateEntry  = 1062 // ER_DUP_ENTRY
	mysqlNoReferencedRow = 1452 // ER_NO_REFERENCED_ROW_2
)

// isDuplicateKey reports whether err is a unique-key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// isForeignKeyViolation reports whether err is an insert or update that
// references a parent row which does not exist.
func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlNoReferencedRow
}
