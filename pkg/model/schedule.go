package model

type CreateScheduleRequest struct {
	DoctorID string `json:"doctorId" validate:"required,max=64"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ScheduleRow is one line of a doctor's day view.
type ScheduleRow struct {
	SlotID     string     `json:"slotId"`
	Time       string     `json:"time"`
	Patient    string     `json:"patient"`
	Status     SlotStatus `json:"status"`
	StatusText string     `json:"statusText"`
}

type DaySchedule struct {
	DoctorID  string        `json:"doctorId"`
	Date      string        `json:"date"`
	Rows      []ScheduleRow `json:"rows"`
	Booked    int           `json:"booked"`
	Available int           `json:"available"`
}

// Notification is a human-readable push message for a doctor.
type Notification struct {
	Message  string `json:"message"`
	Source   string `json:"source"`
	Received int64  `json:"received"`
}
