package notify

import (
	"context"

	"clinicportal/pkg/kafka"
	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
)

const (
	SourceKafka = "kafka"

	defaultBookingMessage = "Bệnh nhân vừa đặt lịch khám mới"
)

// BookingEventHandler turns booking.confirmed events into notifications for
// the booked doctor. Other event types are acknowledged and skipped.
func BookingEventHandler(broker *Broker, log *logger.Logger) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		if t := msg.GetEventType(); t != "" && t != model.BookingConfirmedEvent {
			return nil
		}

		var event model.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("decode booking event", err)
		}
		if event.Type != "" && event.Type != model.BookingConfirmedEvent {
			return nil
		}

		doctorID := event.DoctorID
		if doctorID == "" {
			log.Warn("Booking event without doctor id", "event_id", msg.GetEventID(), "slot_id", event.SlotID)
			return nil
		}

		message := event.Message
		if message == "" {
			message = defaultBookingMessage
		}

		n := broker.Publish(doctorID, model.Notification{
			Message:  message,
			Source:   SourceKafka,
			Received: event.OccurredAt.Unix(),
		})
		log.Debug("Booking event fanned out",
			"doctor_id", doctorID,
			"slot_id", event.SlotID,
			"listeners", n,
		)
		return nil
	}
}
