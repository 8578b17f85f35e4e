package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
)

var ErrReconnectExhausted = errors.New("notification source gave up reconnecting")

// Backoff caps reconnect attempts. MaxElapsed of zero retries forever.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	MaxElapsed time.Duration
}

// healthyAfter is how long a connection must last before the backoff resets.
const healthyAfter = 30 * time.Second

func (p Backoff) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	if p.Initial > 0 {
		b.InitialInterval = p.Initial
	}
	if p.Max > 0 {
		b.MaxInterval = p.Max
	}
	b.MaxElapsedTime = p.MaxElapsed
	b.Reset()
	return b
}

// Run keeps src connected for sub until ctx ends. Each drop is followed by an
// exponentially growing pause; once MaxElapsed passes without a healthy
// connection Run returns ErrReconnectExhausted.
func Run(ctx context.Context, src Source, sub Subscriber, deliver func(model.Notification), policy Backoff, log *logger.Logger) error {
	b := policy.newBackOff()

	for {
		started := time.Now()
		err := src.Listen(ctx, sub, deliver)
		if ctx.Err() != nil {
			return nil
		}
		if time.Since(started) >= healthyAfter {
			b.Reset()
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			log.Error("Notification source exhausted reconnect budget",
				"user_id", sub.UserID,
				"error", err,
			)
			return fmt.Errorf("%w: %v", ErrReconnectExhausted, err)
		}

		log.Warn("Notification source disconnected, reconnecting",
			"user_id", sub.UserID,
			"retry_in", wait.String(),
			"error", err,
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
