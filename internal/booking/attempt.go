package booking

import (
	"context"
	"sync"

	bookingerrors "clinicportal/internal/booking/errors"
	"clinicportal/pkg/model"
)

type AttemptState int

const (
	Idle AttemptState = iota
	Submitting
	Succeeded
	Failed
)

func (s AttemptState) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// HistoryView is where a succeeded attempt sends the patient.
const HistoryView = "/history"

// Attempt tracks one patient's booking submission:
// idle -> submitting -> succeeded | failed. A terminal attempt may be
// submitted again; a submitting one may not.
type Attempt struct {
	mu           sync.Mutex
	state        AttemptState
	err          error
	confirmation *model.BookingConfirmation
}

func (a *Attempt) begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == Submitting {
		return bookingerrors.ErrAttemptInFlight
	}
	a.state = Submitting
	a.err = nil
	a.confirmation = nil
	return nil
}

func (a *Attempt) finish(conf *model.BookingConfirmation, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err != nil {
		a.state = Failed
		a.err = err
		return
	}
	a.state = Succeeded
	a.confirmation = conf
}

func (a *Attempt) State() AttemptState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// outcome reports a finished attempt. A failed one returns its reason.
func (a *Attempt) outcome() (Outcome, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == Failed {
		return Outcome{State: Failed}, a.err
	}
	return Outcome{State: a.state, Confirmation: a.confirmation, Redirect: HistoryView}, nil
}

// Outcome is what the view needs after a submission.
type Outcome struct {
	State        AttemptState               `json:"state"`
	Confirmation *model.BookingConfirmation `json:"confirmation,omitempty"`
	Redirect     string                     `json:"redirect,omitempty"`
}

func (s AttemptState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Attempts holds the submitting attempt of each patient. Finished attempts
// are dropped so the map only grows with concurrent submitters.
type Attempts struct {
	mu       sync.Mutex
	inFlight map[string]*Attempt
}

func NewAttempts() *Attempts {
	return &Attempts{inFlight: make(map[string]*Attempt)}
}

// Submit runs reserve as the attempt for key. A second Submit for the same
// key while the first is still running fails with ErrAttemptInFlight and
// never reaches the gateway.
func (a *Attempts) Submit(ctx context.Context, key string, reserve func(ctx context.Context) (*model.BookingConfirmation, error)) (Outcome, error) {
	a.mu.Lock()
	attempt, ok := a.inFlight[key]
	if !ok {
		attempt = &Attempt{}
		a.inFlight[key] = attempt
	}
	err := attempt.begin()
	a.mu.Unlock()
	if err != nil {
		return Outcome{State: Submitting}, err
	}

	conf, err := reserve(ctx)
	attempt.finish(conf, err)

	a.mu.Lock()
	if a.inFlight[key] == attempt {
		delete(a.inFlight, key)
	}
	a.mu.Unlock()

	return attempt.outcome()
}

// InFlight reports whether key has a submission running.
func (a *Attempts) InFlight(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	attempt, ok := a.inFlight[key]
	return ok && attempt.State() == Submitting
}
