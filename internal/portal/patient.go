package portal

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"clinicportal/internal/booking"
	bookingerrors "clinicportal/internal/booking/errors"
	apperrors "clinicportal/pkg/errors"
	httputil "clinicportal/pkg/http"
	"clinicportal/pkg/middleware"
	"clinicportal/pkg/model"
)

const (
	titleBooked = "Đặt lịch thành công"
	msgBooked   = "Lịch khám đã được đặt. Bạn sẽ nhận được xác nhận sớm."

	msgSubmitting = "Yêu cầu đang được xử lý"
	msgSuperseded = "Danh sách khung giờ đã được làm mới"
)

type reserveRequest struct {
	SlotID   string `json:"slotId"`
	DoctorID string `json:"doctorId,omitempty"`
}

// Doctors lists or searches the directory for the booking form.
func (h *Handler) Doctors(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, _ := upstream(r)
	query := r.URL.Query()

	doctors, err := h.directory.Search(ctx, model.DoctorSearch{
		Name:      query.Get("name"),
		Specialty: query.Get("specialty"),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, doctors)
}

// Slots loads a doctor's slots through the viewer's board so only the newest
// selection updates the view.
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, _ := upstream(r)
	query := r.URL.Query()

	board := h.boards.For(h.cookies.BrowserID(r))
	slots, err := board.Load(ctx, query.Get("doctorId"), query.Get("date"))
	if err != nil {
		if errors.Is(err, bookingerrors.ErrStaleResponse) {
			httputil.WriteError(w, apperrors.Conflict(msgSuperseded))
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, slots)
}

// Reserve books one slot for the signed-in patient.
func (h *Handler) Reserve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, sess := upstream(r)

	var req reserveRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	outcome, err := h.attempts.Submit(ctx, sess.UserID, func(ctx context.Context) (*model.BookingConfirmation, error) {
		return h.booking.ReserveSlot(ctx, booking.Reservation{
			BookingRequest: model.BookingRequest{SlotID: req.SlotID, PatientID: sess.UserID},
			DoctorID:       strings.TrimSpace(req.DoctorID),
			IdempotencyKey: r.Header.Get(middleware.IdempotencyHeader),
			CorrelationID:  middleware.RequestID(r),
		})
	})
	if err != nil {
		if errors.Is(err, bookingerrors.ErrAttemptInFlight) {
			httputil.WriteError(w, apperrors.Conflict(msgSubmitting).WithTitle(apperrors.TitleBookingFailed))
			return
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, ActionResponse{
		Notice:   Notice{Title: titleBooked, Description: msgBooked},
		Redirect: outcome.Redirect,
		Data:     outcome,
	})
}

func (h *Handler) BookingHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, sess := upstream(r)

	slots, err := h.booking.History(ctx, sess.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, slots)
}

func (h *Handler) Appointments(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, sess := upstream(r)
	query := r.URL.Query()

	views, err := h.appointments.ForPatient(ctx, sess.UserID, model.AppointmentFilter{
		Query:  query.Get("q"),
		Status: query.Get("status"),
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, views)
}
