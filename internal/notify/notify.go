// Package notify delivers real-time booking notifications to doctors. A
// Source pushes human-readable messages for one subscriber until its context
// ends; Run keeps a Source connected with capped exponential backoff.
package notify

import (
	"context"
	"fmt"

	"clinicportal/pkg/model"
)

// Subscriber identifies who a notification stream is for.
type Subscriber struct {
	UserID string
	Role   model.Role
}

// Source streams notifications for sub to deliver. Listen returns when the
// underlying connection ends or ctx is cancelled. deliver is never called
// concurrently for one Listen call.
type Source interface {
	Listen(ctx context.Context, sub Subscriber, deliver func(model.Notification)) error
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, sub Subscriber, deliver func(model.Notification)) error

func (f SourceFunc) Listen(ctx context.Context, sub Subscriber, deliver func(model.Notification)) error {
	return f(ctx, sub, deliver)
}

// Describe names a transport for logs.
func Describe(src Source) string {
	switch src.(type) {
	case *SignalRSource:
		return SourceSignalR
	case *Broker:
		return SourceKafka
	case nil:
		return "none"
	default:
		return fmt.Sprintf("%T", src)
	}
}
