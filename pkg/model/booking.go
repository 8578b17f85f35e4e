package model

import "time"

type BookingRequest struct {
	SlotID    string `json:"slotId" validate:"required,max=64"`
	PatientID string `json:"patientId" validate:"required,max=64"`
}

// BookingConfirmation is the gateway's success body. Unknown fields are ignored.
type BookingConfirmation struct {
	SlotID    string    `json:"slotId,omitempty"`
	PatientID string    `json:"patientId,omitempty"`
	DoctorID  string    `json:"doctorId,omitempty"`
	Status    string    `json:"status,omitempty"`
	Message   string    `json:"message,omitempty"`
	StartTime *SlotTime `json:"startTime,omitempty"`
	EndTime   *SlotTime `json:"endTime,omitempty"`
	Success   *bool     `json:"success,omitempty"`
}

// BookingEvent is published after a confirmed reservation.
type BookingEvent struct {
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	SlotID     string    `json:"slot_id"`
	PatientID  string    `json:"patient_id"`
	DoctorID   string    `json:"doctor_id,omitempty"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

const BookingConfirmedEvent = "booking.confirmed"
