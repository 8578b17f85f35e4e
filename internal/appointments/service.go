// Package appointments serves a patient's appointment history with the
// doctor-name search and status filter of the history view.
package appointments

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"clinicportal/pkg/client"
	apperrors "clinicportal/pkg/errors"
	"clinicportal/pkg/locale"
	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
	"clinicportal/pkg/sanitizer"
	"clinicportal/pkg/validator"
)

const (
	StatusAll = "all"

	msgLoadFailed    = "Không thể tải lịch sử lịch hẹn"
	msgInvalidFilter = "Bộ lọc không hợp lệ"
)

type Backend interface {
	PatientAppointments(ctx context.Context, patientID string) (*client.Response, error)
}

type Service struct {
	backend   Backend
	validator *validator.Validator
	log       *logger.Logger
}

func NewService(backend Backend, v *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		backend:   backend,
		validator: v,
		log:       log,
	}
}

// ForPatient returns the patient's appointments matching filter, newest first.
func (s *Service) ForPatient(ctx context.Context, patientID string, filter model.AppointmentFilter) ([]model.AppointmentView, error) {
	patientID = strings.TrimSpace(patientID)
	if patientID == "" {
		return nil, apperrors.InvalidInput("patientId is required")
	}

	filter.Query = sanitizer.NormalizeSearch(filter.Query)
	filter.Status = strings.ToLower(strings.TrimSpace(filter.Status))
	if err := s.validator.Struct(filter); err != nil {
		var verrs validator.ValidationErrors
		details := map[string]any{}
		if errors.As(err, &verrs) {
			details = verrs.Details()
		}
		return nil, apperrors.Validation(msgInvalidFilter, details)
	}

	resp, err := s.backend.PatientAppointments(ctx, patientID)
	if err != nil {
		s.log.Error("Failed to fetch appointments", "patient_id", patientID, "error", err)
		return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, msgLoadFailed, http.StatusBadGateway).WithTitle(apperrors.TitleGeneric)
	}
	if !resp.IsSuccess() {
		s.log.Warn("Appointment service rejected request", "patient_id", patientID, "status", resp.StatusCode)
		return nil, apperrors.New(apperrors.CodeUnavailable, msgLoadFailed, http.StatusBadGateway).WithTitle(apperrors.TitleGeneric)
	}

	var envelope model.AppointmentsEnvelope
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, msgLoadFailed, http.StatusBadGateway).WithTitle(apperrors.TitleGeneric)
	}

	return Filter(envelope.Data, filter), nil
}

// Filter keeps appointments whose doctor name contains the query and whose
// status matches, attaching the localized status text.
func Filter(appointments []model.Appointment, filter model.AppointmentFilter) []model.AppointmentView {
	views := []model.AppointmentView{}
	for _, a := range appointments {
		if !sanitizer.ContainsFold(a.DoctorName, filter.Query) {
			continue
		}
		if filter.Status != "" && filter.Status != StatusAll && !strings.EqualFold(a.Status, filter.Status) {
			continue
		}
		views = append(views, model.AppointmentView{
			Appointment: a,
			StatusText:  locale.AppointmentStatusText(a.Status),
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		ti, okI := locale.ParseTimestamp(views[i].StartTime)
		tj, okJ := locale.ParseTimestamp(views[j].StartTime)
		if okI != okJ {
			return okI
		}
		return ti.After(tj)
	})
	return views
}
