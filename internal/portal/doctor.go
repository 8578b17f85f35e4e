package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"

	"clinicportal/internal/notify"
	"clinicportal/internal/schedule"
	apperrors "clinicportal/pkg/errors"
	httputil "clinicportal/pkg/http"
	"clinicportal/pkg/locale"
)

// DoctorSchedule is the doctor's day view; ?date= overrides today.
func (h *Handler) DoctorSchedule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, sess := upstream(r)

	date := r.URL.Query().Get("date")
	if date == "" {
		date = h.schedules.Today()
	} else if _, err := time.Parse(locale.ISODate, date); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("date must be in YYYY-MM-DD form"))
		return
	}

	day, err := h.schedules.Day(ctx, sess.UserID, date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, ViewResponse{View: "doctor", Session: sess, Data: day})
}

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, sess := upstream(r)

	created, err := h.schedules.CreateToday(ctx, sess.UserID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteCreated(w, ActionResponse{
		Notice: Notice{Title: created.Title, Description: created.Message},
		Data:   created,
	})
}

// Events streams schedule refreshes and booking notifications to the doctor
// view as server-sent events until the browser disconnects.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, sess := upstream(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteError(w, apperrors.Internal("streaming unsupported", nil))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	var mu sync.Mutex
	send := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			h.log.Error("Failed to encode event", "event", event, "error", err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	emit := func(u schedule.Update) {
		if u.Notification != nil {
			send(u.EventName(), Notice{Title: schedule.NotificationTitle, Description: u.Notification.Message})
			return
		}
		send(u.EventName(), u.Schedule)
	}

	sub := notify.Subscriber{UserID: sess.UserID, Role: sess.Role}
	h.log.Info("Doctor event stream opened", "doctor_id", sess.UserID)

	err := h.schedules.Watch(ctx, sub, h.source, h.reconnect, emit)
	if err != nil && !errors.Is(err, ctx.Err()) {
		h.log.Warn("Doctor event stream ended with error", "doctor_id", sess.UserID, "error", err)
		send("error", apperrors.AsAppError(err).Toast())
	}
	h.log.Info("Doctor event stream closed", "doctor_id", sess.UserID)
}
