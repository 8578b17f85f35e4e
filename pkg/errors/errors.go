package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeRateLimited  = "RATE_LIMITED"

	CodeAuthentication       = "AUTHENTICATION_ERROR"
	CodeSlotFetch            = "SLOT_FETCH_ERROR"
	CodeBooking              = "BOOKING_ERROR"
	CodeBookingResponseParse = "BOOKING_RESPONSE_PARSE_ERROR"
	CodeDirectory            = "DIRECTORY_ERROR"
	CodeSchedule             = "SCHEDULE_ERROR"
)

// Toast titles shown to the user, one per failure family.
const (
	TitleGeneric        = "Lỗi"
	TitleLoginFailed    = "Đăng nhập thất bại"
	TitleAccessDenied   = "Truy cập bị từ chối"
	TitleBookingFailed  = "Đặt lịch thất bại"
	TitleBookingClash   = "Trùng lịch"
	TitleScheduleFailed = "Lỗi khi tạo lịch"
)

type AppError struct {
	Code       string         `json:"code"`
	Title      string         `json:"title,omitempty"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e.HTTPStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.HTTPStatus
}

// Toast is the transient notification payload the browser renders for a failure.
type Toast struct {
	Code        string         `json:"code"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Details     map[string]any `json:"details,omitempty"`
}

func (e *AppError) Toast() Toast {
	title := e.Title
	if title == "" {
		title = TitleGeneric
	}
	return Toast{
		Code:        e.Code,
		Title:       title,
		Description: e.Message,
		Details:     e.Details,
	}
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(e.Toast())
	return data
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithTitle(title string) *AppError {
	e.Title = title
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// Authentication covers bad credentials, undecodable tokens and role mismatches.
func Authentication(message string, err error) *AppError {
	return &AppError{
		Code:       CodeAuthentication,
		Title:      TitleLoginFailed,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func SlotFetch(message string, err error) *AppError {
	return &AppError{
		Code:       CodeSlotFetch,
		Title:      TitleGeneric,
		Message:    message,
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// Booking carries the raw body text returned by the gateway when a reservation
// is rejected. upstreamStatus is kept in Details for callers that need it.
func Booking(body string, upstreamStatus int) *AppError {
	return &AppError{
		Code:       CodeBooking,
		Title:      TitleBookingFailed,
		Message:    body,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"upstream_status": upstreamStatus},
	}
}

func BookingResponseParse(err error) *AppError {
	return &AppError{
		Code:       CodeBookingResponseParse,
		Title:      TitleBookingFailed,
		Message:    "booking confirmation could not be read",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func Directory(message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       CodeDirectory,
		Title:      TitleGeneric,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func Schedule(message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       CodeSchedule,
		Title:      TitleScheduleFailed,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err (or anything it wraps) is an AppError with code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}
