package portal

import (
	"context"
	"encoding/json"
	"net/http"

	"clinicportal/internal/booking"
	"clinicportal/internal/directory"
	"clinicportal/internal/guard"
	"clinicportal/internal/notify"
	"clinicportal/internal/schedule"
	"clinicportal/pkg/client"
	apperrors "clinicportal/pkg/errors"
	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
	"clinicportal/pkg/validator"
)

// Sessions is the session manager surface the portal needs.
type Sessions interface {
	guard.Resolver
	LoginAsPatient(ctx context.Context, browserID string, req model.LoginRequest) (*model.Session, error)
	LoginAsDoctor(ctx context.Context, browserID string, req model.LoginRequest) (*model.Session, error)
	Ready(ctx context.Context) error
}

type Booking interface {
	ListAvailableSlots(ctx context.Context, doctorID, date string) ([]model.LabelledSlot, error)
	ReserveSlot(ctx context.Context, res booking.Reservation) (*model.BookingConfirmation, error)
	History(ctx context.Context, patientID string) ([]model.LabelledSlot, error)
}

type Schedules interface {
	Today() string
	Day(ctx context.Context, doctorID, date string) (*model.DaySchedule, error)
	CreateToday(ctx context.Context, doctorID string) (*schedule.Created, error)
	Watch(ctx context.Context, sub notify.Subscriber, src notify.Source, policy notify.Backoff, emit func(schedule.Update)) error
}

type Directory interface {
	Page(ctx context.Context, pageIndex, pageSize int) (*model.DoctorPage, error)
	Get(ctx context.Context, id string) (*model.Doctor, error)
	Search(ctx context.Context, search model.DoctorSearch) ([]model.Doctor, error)
	Create(ctx context.Context, req model.DoctorCreateRequest) (*directory.Result, error)
	Update(ctx context.Context, id string, req model.DoctorUpdateRequest) (*directory.Result, error)
	Delete(ctx context.Context, id string) (*directory.Result, error)
}

type Appointments interface {
	ForPatient(ctx context.Context, patientID string, filter model.AppointmentFilter) ([]model.AppointmentView, error)
}

// Deps are the collaborators of the portal handlers. Source may be nil when
// live notifications are disabled.
type Deps struct {
	Sessions     Sessions
	Cookies      *Cookies
	Booking      Booking
	Attempts     *booking.Attempts
	Boards       *booking.Boards
	Schedules    Schedules
	Directory    Directory
	Appointments Appointments
	Source       notify.Source
	Reconnect    notify.Backoff
	Validator    *validator.Validator
	Log          *logger.Logger
}

type Handler struct {
	sessions     Sessions
	cookies      *Cookies
	booking      Booking
	attempts     *booking.Attempts
	boards       *booking.Boards
	schedules    Schedules
	directory    Directory
	appointments Appointments
	source       notify.Source
	reconnect    notify.Backoff
	validator    *validator.Validator
	guard        *guard.Guard
	log          *logger.Logger
}

func NewHandler(deps Deps) *Handler {
	return &Handler{
		sessions:     deps.Sessions,
		cookies:      deps.Cookies,
		booking:      deps.Booking,
		attempts:     deps.Attempts,
		boards:       deps.Boards,
		schedules:    deps.Schedules,
		directory:    deps.Directory,
		appointments: deps.Appointments,
		source:       deps.Source,
		reconnect:    deps.Reconnect,
		validator:    deps.Validator,
		guard:        guard.New(deps.Sessions, deps.Cookies.BrowserID, deps.Log),
		log:          deps.Log,
	}
}

// Notice is a success toast.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ViewResponse is the payload of a page route.
type ViewResponse struct {
	View    string         `json:"view"`
	Session *model.Session `json:"session,omitempty"`
	Data    any            `json:"data,omitempty"`
}

// ActionResponse is the payload of a successful form action.
type ActionResponse struct {
	Notice   Notice `json:"notice"`
	Redirect string `json:"redirect,omitempty"`
	Data     any    `json:"data,omitempty"`
}

// upstream carries the signed-in user's credential to the backend clients.
func upstream(r *http.Request) (context.Context, *model.Session) {
	sess := guard.SessionFrom(r.Context())
	if sess == nil {
		return r.Context(), nil
	}
	return client.WithBearer(r.Context(), sess.Credential), sess
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}
