package booking

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	bookingerrors "clinicportal/internal/booking/errors"
	"clinicportal/pkg/client"
	apperrors "clinicportal/pkg/errors"
	"clinicportal/pkg/kafka"
	"clinicportal/pkg/locale"
	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
	"clinicportal/pkg/validator"
)

const (
	msgSlotFetchFailed = "Không thể tải danh sách lịch hẹn"
	msgSlotsMissing    = "Không có dữ liệu khung giờ"
	msgHistoryFailed   = "Không thể lấy lịch đã đặt"

	msgBookingUnreachable = "Không thể kết nối đến dịch vụ đặt lịch"

	eventSource = "clinicportal"
)

// Gateway is the scheduling service surface the booking flow needs.
type Gateway interface {
	AvailableSlots(ctx context.Context, doctorID, date string) (*client.Response, error)
	Book(ctx context.Context, req model.BookingRequest, idempotencyKey string) (*client.Response, error)
	History(ctx context.Context, patientID string) (*client.Response, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Reservation is one reserve request. DoctorID is optional and only used to
// key the published event.
type Reservation struct {
	model.BookingRequest
	DoctorID       string
	IdempotencyKey string
	CorrelationID  string
}

type Service struct {
	gateway   Gateway
	events    EventPublisher
	validator *validator.Validator
	loc       *time.Location
	log       *logger.Logger
	now       func() time.Time
}

// NewService builds the booking flow. events may be nil when no broker is configured.
func NewService(gateway Gateway, events EventPublisher, v *validator.Validator, loc *time.Location, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		gateway:   gateway,
		events:    events,
		validator: v,
		loc:       loc,
		log:       log,
		now:       time.Now,
	}
}

// ListAvailableSlots fetches a doctor's slots for date, sorted by start time
// and labelled with the local time range.
func (s *Service) ListAvailableSlots(ctx context.Context, doctorID, date string) ([]model.LabelledSlot, error) {
	doctorID = strings.TrimSpace(doctorID)
	if doctorID == "" {
		return nil, apperrors.InvalidInput("doctorId is required")
	}
	if _, err := time.Parse(locale.ISODate, date); err != nil {
		return nil, apperrors.InvalidInput(bookingerrors.ErrInvalidDate.Error())
	}

	resp, err := s.gateway.AvailableSlots(ctx, doctorID, date)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.log.Error("Failed to fetch slots", "doctor_id", doctorID, "date", date, "error", err)
		return nil, apperrors.SlotFetch(msgSlotFetchFailed, err)
	}
	if !resp.IsSuccess() {
		s.log.Warn("Gateway rejected slot listing", "doctor_id", doctorID, "date", date, "status", resp.StatusCode)
		return nil, apperrors.SlotFetch(msgSlotFetchFailed, nil)
	}

	slots, err := decodeSlots(resp)
	if err != nil {
		return nil, err
	}

	return s.label(SortByStart(slots)), nil
}

// ReserveSlot books one slot for a patient. Rejections carry the gateway body
// verbatim, except the per-day conflict which gets its dedicated message.
func (s *Service) ReserveSlot(ctx context.Context, res Reservation) (*model.BookingConfirmation, error) {
	res.SlotID = strings.TrimSpace(res.SlotID)
	res.PatientID = strings.TrimSpace(res.PatientID)
	if err := s.validator.Struct(res.BookingRequest); err != nil {
		var verrs validator.ValidationErrors
		details := map[string]any{}
		if errors.As(err, &verrs) {
			details = verrs.Details()
		}
		return nil, apperrors.Validation("Vui lòng chọn khung giờ", details)
	}

	resp, err := s.gateway.Book(ctx, res.BookingRequest, res.IdempotencyKey)
	if err != nil {
		s.log.Error("Booking request failed", "slot_id", res.SlotID, "patient_id", res.PatientID, "error", err)
		appErr := apperrors.Booking(msgBookingUnreachable, 0)
		appErr.HTTPStatus = http.StatusBadGateway
		appErr.Err = err
		return nil, appErr
	}

	if !resp.IsSuccess() {
		return nil, s.rejection(res, resp)
	}

	var confirmation model.BookingConfirmation
	if err := resp.DecodeJSON(&confirmation); err != nil {
		s.log.Error("Failed to parse booking confirmation",
			"slot_id", res.SlotID,
			"body", truncate(resp.Text(), 256),
			"error", err,
		)
		return nil, apperrors.BookingResponseParse(err)
	}
	if confirmation.SlotID == "" {
		confirmation.SlotID = res.SlotID
	}
	if confirmation.PatientID == "" {
		confirmation.PatientID = res.PatientID
	}

	s.log.Info("Slot reserved",
		"slot_id", confirmation.SlotID,
		"patient_id", confirmation.PatientID,
		"doctor_id", firstNonEmpty(confirmation.DoctorID, res.DoctorID),
	)

	s.publishConfirmed(ctx, res, &confirmation)
	return &confirmation, nil
}

// History returns the patient's booked slots, newest first.
func (s *Service) History(ctx context.Context, patientID string) ([]model.LabelledSlot, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, apperrors.InvalidInput("patientId is required")
	}

	resp, err := s.gateway.History(ctx, patientID)
	if err != nil {
		s.log.Error("Failed to fetch booking history", "patient_id", patientID, "error", err)
		return nil, apperrors.SlotFetch(msgHistoryFailed, err)
	}
	if !resp.IsSuccess() {
		return nil, apperrors.SlotFetch(msgHistoryFailed, nil)
	}

	slots, err := decodeSlots(resp)
	if err != nil {
		return nil, err
	}

	sorted := SortByStart(slots)
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}
	return s.label(sorted), nil
}

func (s *Service) rejection(res Reservation, resp *client.Response) error {
	body := strings.TrimSpace(resp.Text())

	if bookingerrors.IsConflict(body) {
		s.log.Info("Booking conflict", "slot_id", res.SlotID, "patient_id", res.PatientID)
		appErr := apperrors.Booking(bookingerrors.ConflictPhrase, resp.StatusCode).WithTitle(apperrors.TitleBookingClash)
		appErr.HTTPStatus = http.StatusConflict
		appErr.Err = bookingerrors.ErrBookingConflict
		return appErr
	}

	s.log.Warn("Booking rejected",
		"slot_id", res.SlotID,
		"patient_id", res.PatientID,
		"status", resp.StatusCode,
		"body", truncate(body, 256),
	)
	return apperrors.Booking(body, resp.StatusCode)
}

func (s *Service) publishConfirmed(ctx context.Context, res Reservation, conf *model.BookingConfirmation) {
	if s.events == nil {
		return
	}

	key := firstNonEmpty(conf.DoctorID, res.DoctorID, conf.SlotID)
	event := model.BookingEvent{
		Type:       model.BookingConfirmedEvent,
		SlotID:     conf.SlotID,
		PatientID:  conf.PatientID,
		DoctorID:   firstNonEmpty(conf.DoctorID, res.DoctorID),
		Message:    firstNonEmpty(conf.Message, "Bệnh nhân vừa đặt lịch khám mới"),
		OccurredAt: s.now().UTC(),
	}

	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(event).
		WithEventType(model.BookingConfirmedEvent).
		WithCorrelationID(res.CorrelationID).
		WithSource(eventSource).
		Build()
	if err != nil {
		s.log.Error("Failed to build booking event", "slot_id", conf.SlotID, "error", err)
		return
	}

	// the reservation already succeeded; a lost event only delays the doctor's view
	if err := s.events.Publish(ctx, msg); err != nil {
		s.log.Warn("Failed to publish booking event", "slot_id", conf.SlotID, "error", err)
	}
}

func (s *Service) label(slots []model.Slot) []model.LabelledSlot {
	out := make([]model.LabelledSlot, 0, len(slots))
	for _, slot := range slots {
		out = append(out, model.LabelledSlot{
			Slot:  slot,
			Label: locale.FormatRange(slot.StartTime.Time(), slot.EndTime.Time(), s.loc),
			Day:   locale.FormatDate(slot.StartTime.Time(), s.loc),
		})
	}
	return out
}

func decodeSlots(resp *client.Response) ([]model.Slot, error) {
	var envelope model.SlotsEnvelope
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, apperrors.SlotFetch(msgSlotsMissing, err)
	}
	if envelope.Slots == nil {
		return nil, apperrors.SlotFetch(msgSlotsMissing, nil)
	}
	return *envelope.Slots, nil
}

// SortByStart returns a copy of slots ordered by start time. Ties keep their
// upstream order.
func SortByStart(slots []model.Slot) []model.Slot {
	sorted := make([]model.Slot, len(slots))
	copy(sorted, slots)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].StartTime, sorted[j].StartTime
		if a.Seconds != b.Seconds {
			return a.Seconds < b.Seconds
		}
		return a.Nanos < b.Nanos
	})
	return sorted
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
