package model

import "time"

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
	SlotCompleted SlotStatus = "completed"
	SlotCancelled SlotStatus = "cancelled"
)

// SlotTime is the wire form of a timestamp: {"seconds": ...}.
type SlotTime struct {
	Seconds int64 `json:"seconds"`
	Nanos   int32 `json:"nanos,omitempty"`
}

func (t SlotTime) Time() time.Time {
	return time.Unix(t.Seconds, int64(t.Nanos)).UTC()
}

func NewSlotTime(t time.Time) SlotTime {
	return SlotTime{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

type Slot struct {
	SlotID      string     `json:"slotId"`
	DoctorID    string     `json:"doctorId,omitempty"`
	DoctorName  string     `json:"doctorName,omitempty"`
	PatientID   string     `json:"patientId,omitempty"`
	PatientName string     `json:"patientName,omitempty"`
	StartTime   SlotTime   `json:"startTime"`
	EndTime     SlotTime   `json:"endTime"`
	IsBooked    bool       `json:"isBooked"`
	Status      SlotStatus `json:"status,omitempty"`
}

// EffectiveStatus prefers the explicit status and falls back to IsBooked.
func (s Slot) EffectiveStatus() SlotStatus {
	if s.Status != "" {
		return s.Status
	}
	if s.IsBooked {
		return SlotBooked
	}
	return SlotAvailable
}

// SlotsEnvelope keeps Slots as a pointer so a missing field is distinguishable from an empty one.
type SlotsEnvelope struct {
	Slots *[]Slot `json:"slots"`
}

// LabelledSlot is a slot ready for display.
type LabelledSlot struct {
	Slot
	Label string `json:"label"`
	Day   string `json:"day"`
}
