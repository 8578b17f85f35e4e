package errors

import (
	"errors"
	"strings"
)

// ConflictPhrase is the gateway's wording for the one-slot-per-doctor-per-day rule.
const ConflictPhrase = "Mỗi bệnh nhân chỉ được đặt 1 slot/bác sĩ/ngày"

var (
	ErrBookingConflict = errors.New("patient already holds a slot with this doctor on this day")

	ErrAttemptInFlight = errors.New("a booking attempt is already being submitted")

	ErrStaleResponse = errors.New("slot listing superseded by a newer request")

	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD form")
)

// IsConflict reports whether a gateway body carries the conflict phrase.
func IsConflict(body string) bool {
	return strings.Contains(body, ConflictPhrase)
}
