package locale

import "strings"

// AppointmentStatusText is the patient-facing label for an appointment status.
func AppointmentStatusText(status string) string {
	switch strings.ToLower(status) {
	case "booked":
		return "Đã đặt lịch"
	case "completed":
		return "Đã hoàn thành"
	case "cancelled":
		return "Đã hủy"
	default:
		return "Chờ xác nhận"
	}
}

// ScheduleStatusText is the doctor-facing label for a slot status.
func ScheduleStatusText(status string) string {
	switch strings.ToLower(status) {
	case "completed":
		return "Đã khám"
	case "waiting":
		return "Chờ khám"
	case "booked":
		return "Đã đặt"
	default:
		return "Trống"
	}
}

const UnknownPatient = "Bệnh nhân chưa xác định"
