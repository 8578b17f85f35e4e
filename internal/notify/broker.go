package notify

import (
	"context"
	"sync"

	"clinicportal/pkg/model"
)

const defaultSubscriberBuffer = 16

type subscription struct {
	ch chan model.Notification
}

// Broker fans notifications out to in-process listeners keyed by user id.
// Slow listeners drop messages instead of blocking publishers.
type Broker struct {
	mu     sync.RWMutex
	topics map[string]map[*subscription]struct{}
	buffer int
}

func NewBroker() *Broker {
	return &Broker{
		topics: make(map[string]map[*subscription]struct{}),
		buffer: defaultSubscriberBuffer,
	}
}

func (b *Broker) subscribe(userID string) *subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{ch: make(chan model.Notification, b.buffer)}
	if b.topics[userID] == nil {
		b.topics[userID] = make(map[*subscription]struct{})
	}
	b.topics[userID][sub] = struct{}{}
	return sub
}

func (b *Broker) unsubscribe(userID string, sub *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[userID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, userID)
	}
	close(sub.ch)
}

// Publish delivers n to every listener of userID and reports how many
// listeners accepted it.
func (b *Broker) Publish(userID string, n model.Notification) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for sub := range b.topics[userID] {
		select {
		case sub.ch <- n:
			delivered++
		default:
		}
	}
	return delivered
}

// Listeners returns the number of active listeners for userID.
func (b *Broker) Listeners(userID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[userID])
}

// Listen implements Source. It returns nil once ctx is done.
func (b *Broker) Listen(ctx context.Context, sub Subscriber, deliver func(model.Notification)) error {
	s := b.subscribe(sub.UserID)
	defer b.unsubscribe(sub.UserID, s)

	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-s.ch:
			if !ok {
				return nil
			}
			deliver(n)
		}
	}
}
