package schedule

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clinicportal/internal/booking"
	scheduleerrors "clinicportal/internal/schedule/errors"
	"clinicportal/pkg/client"
	apperrors "clinicportal/pkg/errors"
	"clinicportal/pkg/locale"
	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
	"clinicportal/pkg/validator"
)

const (
	msgScheduleFetchFailed = "Không thể lấy lịch đã đặt"
	msgCreateFailed        = "Không thể tạo lịch hôm nay"
	msgMissingDoctorID     = "Không tìm thấy mã bác sĩ"

	TitleMissingInfo = "Thiếu thông tin"
	TitleCreated     = "Tạo lịch thành công"

	statusWaiting = "waiting"
)

// Gateway is the scheduling service surface the doctor views need.
type Gateway interface {
	DoctorSlots(ctx context.Context, doctorID, date string) (*client.Response, error)
	CreateSchedule(ctx context.Context, req model.CreateScheduleRequest) (*client.Response, error)
}

// Created is the toast shown after today's schedule was generated.
type Created struct {
	Date    string `json:"date"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type Service struct {
	gateway   Gateway
	validator *validator.Validator
	loc       *time.Location
	log       *logger.Logger
	now       func() time.Time
}

func NewService(gateway Gateway, v *validator.Validator, loc *time.Location, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		gateway:   gateway,
		validator: v,
		loc:       loc,
		log:       log,
		now:       time.Now,
	}
}

// Today is the current date in the display time zone.
func (s *Service) Today() string {
	return locale.Today(s.now(), s.loc)
}

// Day builds the doctor's schedule for date: rows ordered by start time with
// localized status texts, plus booked and available counts.
func (s *Service) Day(ctx context.Context, doctorID, date string) (*model.DaySchedule, error) {
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" {
		return nil, apperrors.InvalidInput(msgMissingDoctorID).WithTitle(TitleMissingInfo)
	}

	resp, err := s.gateway.DoctorSlots(ctx, doctorID, date)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.log.Error("Failed to fetch doctor schedule", "doctor_id", doctorID, "date", date, "error", err)
		return nil, apperrors.SlotFetch(msgScheduleFetchFailed, err)
	}
	if !resp.IsSuccess() {
		s.log.Warn("Gateway rejected schedule fetch", "doctor_id", doctorID, "date", date, "status", resp.StatusCode)
		return nil, apperrors.SlotFetch(msgScheduleFetchFailed, nil)
	}

	var envelope model.SlotsEnvelope
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, apperrors.SlotFetch(msgScheduleFetchFailed, err)
	}

	day := &model.DaySchedule{
		DoctorID: doctorID,
		Date:     date,
		Rows:     []model.ScheduleRow{},
	}
	if envelope.Slots == nil {
		return day, nil
	}

	for _, slot := range booking.SortByStart(*envelope.Slots) {
		status := slot.EffectiveStatus()
		patient := strings.TrimSpace(slot.PatientName)
		if patient == "" {
			patient = locale.UnknownPatient
		}

		day.Rows = append(day.Rows, model.ScheduleRow{
			SlotID:     slot.SlotID,
			Time:       locale.FormatRange(slot.StartTime.Time(), slot.EndTime.Time(), s.loc),
			Patient:    patient,
			Status:     status,
			StatusText: locale.ScheduleStatusText(string(status)),
		})

		switch status {
		case model.SlotBooked, model.SlotCompleted, statusWaiting:
			day.Booked++
		case model.SlotAvailable:
			day.Available++
		}
	}

	return day, nil
}

// CreateToday asks the gateway to generate today's working slots for doctorID.
func (s *Service) CreateToday(ctx context.Context, doctorID string) (*Created, error) {
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" {
		appErr := apperrors.InvalidInput(msgMissingDoctorID).WithTitle(TitleMissingInfo)
		appErr.Err = scheduleerrors.ErrMissingDoctorID
		return nil, appErr
	}

	req := model.CreateScheduleRequest{DoctorID: doctorID, Date: s.Today()}
	if err := s.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		details := map[string]any{}
		if errors.As(err, &verrs) {
			details = verrs.Details()
		}
		return nil, apperrors.Validation(msgCreateFailed, details).WithTitle(apperrors.TitleScheduleFailed)
	}

	resp, err := s.gateway.CreateSchedule(ctx, req)
	if err != nil {
		s.log.Error("Create schedule request failed", "doctor_id", doctorID, "date", req.Date, "error", err)
		return nil, s.createFailure(req.Date, err.Error(), http.StatusBadGateway, err)
	}
	if !resp.IsSuccess() {
		text := client.GetErrorMessage(resp)
		s.log.Warn("Gateway rejected schedule creation",
			"doctor_id", doctorID,
			"date", req.Date,
			"status", resp.StatusCode,
			"message", text,
		)
		return nil, s.createFailure(req.Date, text, http.StatusUnprocessableEntity, nil)
	}

	s.log.Info("Schedule created", "doctor_id", doctorID, "date", req.Date)
	return &Created{
		Date:    req.Date,
		Title:   TitleCreated,
		Message: fmt.Sprintf("Đã tạo lịch làm việc cho hôm nay (%s)", req.Date),
	}, nil
}

func (s *Service) createFailure(date, text string, status int, cause error) error {
	if scheduleerrors.IsDuplicate(text) {
		appErr := apperrors.Schedule(
			fmt.Sprintf("Lịch cho ngày %s đã tồn tại. Bạn không thể tạo lại.", date),
			http.StatusConflict,
			scheduleerrors.ErrScheduleExists,
		)
		return appErr
	}
	if strings.TrimSpace(text) == "" {
		text = msgCreateFailed
	}
	return apperrors.Schedule(text, status, cause)
}
