package schedule

import (
	"context"

	"clinicportal/internal/notify"
	"clinicportal/pkg/model"
)

// NotificationTitle heads the toast raised for every pushed notification.
const NotificationTitle = "📥 Có lịch khám mới!"

// Update is one event of a live schedule view. Exactly one field is set.
type Update struct {
	Schedule     *model.DaySchedule  `json:"schedule,omitempty"`
	Notification *model.Notification `json:"notification,omitempty"`
}

// EventName is the SSE event type for u.
func (u Update) EventName() string {
	if u.Notification != nil {
		return "notification"
	}
	return "schedule"
}

// Watch emits today's schedule for the doctor, then for every notification
// from src emits the notification followed by a refreshed schedule. It
// returns when ctx ends or src exhausts its reconnect budget. A nil src only
// emits the initial schedule and waits for ctx.
func (s *Service) Watch(ctx context.Context, sub notify.Subscriber, src notify.Source, policy notify.Backoff, emit func(Update)) error {
	day, err := s.Day(ctx, sub.UserID, s.Today())
	if err != nil {
		return err
	}
	emit(Update{Schedule: day})

	if src == nil {
		<-ctx.Done()
		return nil
	}

	deliver := func(n model.Notification) {
		emit(Update{Notification: &n})

		day, err := s.Day(ctx, sub.UserID, s.Today())
		if err != nil {
			s.log.Warn("Schedule refresh after notification failed", "doctor_id", sub.UserID, "error", err)
			return
		}
		emit(Update{Schedule: day})
	}

	s.log.Info("Watching schedule", "doctor_id", sub.UserID, "source", notify.Describe(src))
	return notify.Run(ctx, src, sub, deliver, policy, s.log)
}
