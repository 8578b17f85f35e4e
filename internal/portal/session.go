package portal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"clinicportal/internal/guard"
	"clinicportal/internal/session"
	apperrors "clinicportal/pkg/errors"
	httputil "clinicportal/pkg/http"
	"clinicportal/pkg/model"
	"clinicportal/pkg/sanitizer"
	"clinicportal/pkg/validator"
)

const (
	titleLoggedIn   = "Đăng nhập thành công"
	titleRegistered = "Đăng ký thành công"

	msgRegistered      = "Tài khoản đã được tạo. Vui lòng đăng nhập."
	msgMissingRequired = "Vui lòng điền đầy đủ thông tin bắt buộc"
	msgPasswordMatch   = "Mật khẩu xác nhận không khớp"
	msgInvalidPhone    = "Số điện thoại không hợp lệ"
	msgCheckFields     = "Vui lòng kiểm tra lại thông tin"
)

// Root sends the browser to its landing view, or to login.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res := h.sessions.Restore(r.Context(), h.cookies.BrowserID(r))
	switch res.State {
	case session.StatePending:
		httputil.WritePending(w)
	case session.StateAuthenticated:
		httputil.Redirect(w, r, guard.LandingView(res.Session.Role))
	default:
		httputil.Redirect(w, r, guard.LoginPath)
	}
}

func (h *Handler) view(name string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		httputil.WriteSuccess(w, ViewResponse{View: name, Session: guard.SessionFrom(r.Context())})
	}
}

func (h *Handler) LoginPatient(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.login(w, r, h.sessions.LoginAsPatient)
}

func (h *Handler) LoginDoctor(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.login(w, r, h.sessions.LoginAsDoctor)
}

type loginFunc func(ctx context.Context, browserID string, req model.LoginRequest) (*model.Session, error)

// login rotates the browser id: a previous record is dropped and the new id
// only reaches the browser once the upstream accepted the credentials.
func (h *Handler) login(w http.ResponseWriter, r *http.Request, login loginFunc) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if previous := h.cookies.BrowserID(r); previous != "" {
		h.sessions.Logout(r.Context(), previous)
		h.cookies.Clear(w)
	}

	browserID := h.cookies.NewBrowserID()
	sess, err := login(r.Context(), browserID, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.cookies.Set(w, browserID); err != nil {
		h.log.Error("Failed to seal session cookie", "error", err)
		h.sessions.Logout(r.Context(), browserID)
		httputil.WriteError(w, apperrors.Internal("failed to issue session cookie", err))
		return
	}

	httputil.WriteSuccess(w, ActionResponse{
		Notice: Notice{
			Title:       titleLoggedIn,
			Description: fmt.Sprintf("Chào mừng, %s!", sess.DisplayName),
		},
		Redirect: guard.LandingView(sess.Role),
		Data:     sess,
	})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.sessions.Logout(r.Context(), h.cookies.BrowserID(r))
	h.cookies.Clear(w)
	httputil.WriteNoContent(w)
}

// CurrentSession answers the session, 202 while resolving, or 204 when anonymous.
func (h *Handler) CurrentSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res := h.sessions.Restore(r.Context(), h.cookies.BrowserID(r))
	switch res.State {
	case session.StatePending:
		httputil.WritePending(w)
	case session.StateAuthenticated:
		httputil.WriteSuccess(w, res.Session)
	default:
		httputil.WriteNoContent(w)
	}
}

// Register validates the sign-up form. Account creation itself is not
// forwarded anywhere.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if err := h.validateRegistration(&req); err != nil {
		h.log.Debug("Registration rejected", "email", req.Email, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.log.Info("Registration form accepted", "email", req.Email)
	httputil.WriteSuccess(w, ActionResponse{
		Notice:   Notice{Title: titleRegistered, Description: msgRegistered},
		Redirect: guard.LoginPath,
	})
}

func (h *Handler) validateRegistration(req *model.RegisterRequest) error {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return apperrors.Validation(msgMissingRequired, nil)
	}

	if err := h.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperrors.Validation(msgCheckFields, nil)
		}
		if verrs.Has("confirmPassword") {
			return apperrors.Validation(msgPasswordMatch, verrs.Details())
		}
		return apperrors.Validation(msgCheckFields, verrs.Details())
	}

	if req.Phone != "" {
		phone := sanitizer.NormalizePhone(req.Phone)
		if phone == "" {
			return apperrors.Validation(msgInvalidPhone, map[string]any{"phone": msgInvalidPhone})
		}
		req.Phone = phone
	}
	return nil
}
