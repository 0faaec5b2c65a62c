// Package repository defines the MySQL data access layer and the error
// values shared across repositories.  Higher layers distinguish failure
// scenarios with errors.Is against these sentinels.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write collides with existing state, such
// as a second review for the same meeting.
var ErrConflict = errors.New("conflict")

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrAvailabilityNotFound = errors.New("availability not found")
)

// isDuplicate reports whether err is MySQL's duplicate-key error (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
