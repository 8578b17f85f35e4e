package errors

import (
	"errors"
	"strings"
)

var (
	ErrScheduleExists = errors.New("schedule for this day already exists")

	ErrMissingDoctorID = errors.New("doctor id is required")
)

// duplicateMarkers are the gateway phrases used when a day is already scheduled.
var duplicateMarkers = []string{"Lịch đã tồn tại", "trùng"}

// IsDuplicate reports whether a gateway error text means the day already has a schedule.
func IsDuplicate(text string) bool {
	for _, marker := range duplicateMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
