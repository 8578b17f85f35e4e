package model

type Appointment struct {
	SlotID     string `json:"slotId"`
	DoctorID   string `json:"doctorId"`
	DoctorName string `json:"doctorName"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Status     string `json:"status"`
	PatientID  string `json:"patientId"`
}

type AppointmentsEnvelope struct {
	Success bool          `json:"success"`
	Data    []Appointment `json:"data"`
}

// AppointmentView is an appointment with its localized status text.
type AppointmentView struct {
	Appointment
	StatusText string `json:"statusText"`
}

type AppointmentFilter struct {
	Query  string `validate:"omitempty,max=100"`
	Status string `validate:"omitempty,oneof=all booked completed cancelled"`
}
