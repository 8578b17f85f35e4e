package session

import (
	"context"
	"errors"
	"time"

	sessionerrors "clinicportal/internal/session/errors"
	"clinicportal/pkg/client"
	apperrors "clinicportal/pkg/errors"
	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
	"clinicportal/pkg/sanitizer"
	"clinicportal/pkg/validator"
)

const (
	msgFillAllFields     = "Vui lòng điền đầy đủ thông tin"
	msgBadCredentials    = "Tài khoản hoặc mật khẩu không đúng"
	msgPatientOnly       = "Tài khoản không có quyền truy cập Dashboard bệnh nhân"
	msgDoctorOnly        = "Tài khoản không có quyền truy cập Dashboard bác sĩ"
	msgSessionPersisting = "Không thể lưu phiên đăng nhập"

	defaultResolveTimeout = 2 * time.Second
)

// Authenticator is one of the upstream login endpoints.
type Authenticator interface {
	Login(ctx context.Context, req model.LoginRequest) (*client.Response, error)
}

type State int

const (
	StatePending State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "pending"
	}
}

// Resolution is the outcome of restoring a browser's session. Session is set
// only when State is StateAuthenticated.
type Resolution struct {
	State   State
	Session *model.Session
}

type Manager struct {
	store          Store
	patients       Authenticator
	doctors        Authenticator
	validator      *validator.Validator
	log            *logger.Logger
	resolveTimeout time.Duration
	now            func() time.Time
}

type Option func(*Manager)

// WithResolveTimeout bounds how long Restore waits on the store before
// reporting StatePending.
func WithResolveTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.resolveTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func NewManager(store Store, patients, doctors Authenticator, v *validator.Validator, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:          store,
		patients:       patients,
		doctors:        doctors,
		validator:      v,
		log:            log,
		resolveTimeout: defaultResolveTimeout,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore rebuilds the session from the persisted record. It never calls an
// upstream service. Records that do not decode are cleared as a whole.
func (m *Manager) Restore(ctx context.Context, browserID string) Resolution {
	if browserID == "" {
		return Resolution{State: StateAnonymous}
	}

	ctx, cancel := context.WithTimeout(ctx, m.resolveTimeout)
	defer cancel()

	rec, err := m.store.Load(ctx, browserID)
	if err != nil {
		m.log.Warn("Session store unavailable, resolution pending",
			"browser_id", browserID,
			"error", err,
		)
		return Resolution{State: StatePending}
	}

	if rec.Empty() {
		return Resolution{State: StateAnonymous}
	}

	sess, err := m.sessionFromRecord(rec)
	if err != nil {
		m.log.Warn("Discarding invalid session",
			"browser_id", browserID,
			"error", err,
		)
		m.clear(ctx, browserID)
		return Resolution{State: StateAnonymous}
	}

	return Resolution{State: StateAuthenticated, Session: sess}
}

// CurrentSession returns the browser's session, or nil when there is none
// or resolution is still pending.
func (m *Manager) CurrentSession(ctx context.Context, browserID string) *model.Session {
	return m.Restore(ctx, browserID).Session
}

func (m *Manager) LoginAsPatient(ctx context.Context, browserID string, req model.LoginRequest) (*model.Session, error) {
	return m.login(ctx, browserID, req, m.patients, model.RolePatient, msgPatientOnly)
}

func (m *Manager) LoginAsDoctor(ctx context.Context, browserID string, req model.LoginRequest) (*model.Session, error) {
	return m.login(ctx, browserID, req, m.doctors, model.RoleDoctor, msgDoctorOnly)
}

// Logout clears every persisted key. It never fails; store errors are logged.
func (m *Manager) Logout(ctx context.Context, browserID string) {
	if browserID == "" {
		return
	}
	m.clear(ctx, browserID)
	m.log.Info("Session cleared", "browser_id", browserID)
}

// Ready reports whether the backing store answers.
func (m *Manager) Ready(ctx context.Context) error {
	return m.store.Ping(ctx)
}

func (m *Manager) login(ctx context.Context, browserID string, req model.LoginRequest, auth Authenticator, want model.Role, deniedMsg string) (*model.Session, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if err := m.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		details := map[string]any{}
		if errors.As(err, &verrs) {
			details = verrs.Details()
		}
		return nil, apperrors.Validation(msgFillAllFields, details).WithTitle(apperrors.TitleGeneric)
	}

	resp, err := auth.Login(ctx, req)
	if err != nil {
		m.log.Error("Login request failed", "role", want.String(), "error", err)
		return nil, apperrors.Authentication(msgBadCredentials, err)
	}
	if !resp.IsSuccess() {
		msg := client.GetErrorMessage(resp)
		if msg == "" {
			msg = msgBadCredentials
		}
		m.log.Warn("Login rejected", "role", want.String(), "status", resp.StatusCode, "email", req.Email)
		return nil, apperrors.Authentication(msg, nil)
	}

	var body model.LoginResponse
	if err := resp.DecodeJSON(&body); err != nil {
		return nil, apperrors.Authentication(msgBadCredentials, err)
	}
	if body.Token == "" {
		msg := body.Message
		if msg == "" {
			msg = msgBadCredentials
		}
		return nil, apperrors.Authentication(msg, sessionerrors.ErrMissingToken)
	}

	rec, err := m.recordFromLogin(body, req.Email)
	if err != nil {
		m.log.Warn("Login token rejected", "role", want.String(), "error", err)
		return nil, apperrors.Authentication(msgBadCredentials, err)
	}

	sess := &model.Session{
		UserID:      rec.UserID,
		Email:       rec.Email,
		DisplayName: firstNonEmpty(rec.Name, DefaultDisplayName),
		Role:        model.RoleFromID(rec.RoleID),
		Credential:  rec.Token,
	}
	if sess.Role != want {
		m.log.Warn("Login role mismatch",
			"expected", want.String(),
			"actual", sess.Role.String(),
			"user_id", sess.UserID,
		)
		return nil, apperrors.Authentication(deniedMsg, sessionerrors.ErrRoleMismatch).WithTitle(apperrors.TitleAccessDenied)
	}

	if err := m.store.Save(ctx, browserID, rec); err != nil {
		m.log.Error("Failed to persist session", "browser_id", browserID, "error", err)
		return nil, apperrors.Internal(msgSessionPersisting, err)
	}

	m.log.Info("Login succeeded",
		"browser_id", browserID,
		"user_id", sess.UserID,
		"role", sess.Role.String(),
	)
	return sess, nil
}

// recordFromLogin merges the auth reply with the token claims. Identity fields
// from the reply win, then the token, then the submitted e-mail. The role
// follows the same order as restore: the token's claim first, the reply's
// roleId only when the token has none. The resolved role is what gets stored.
func (m *Manager) recordFromLogin(body model.LoginResponse, submittedEmail string) (Record, error) {
	id, err := DecodeToken(body.Token, m.now())
	if err != nil {
		return Record{}, err
	}

	rec := Record{
		Token:  body.Token,
		UserID: firstNonEmpty(body.UserID.String(), id.UserID),
		Name:   firstNonEmpty(body.Name, id.Name),
		Email:  firstNonEmpty(body.Email, id.Email, submittedEmail),
	}

	if rec.UserID == "" {
		return Record{}, sessionerrors.ErrMissingUserID
	}

	switch {
	case id.Role.Valid():
		rec.RoleID = id.Role.ID()
	case model.RoleFromID(body.RoleID.String()).Valid():
		rec.RoleID = model.RoleFromID(body.RoleID.String()).ID()
	default:
		return Record{}, sessionerrors.ErrInvalidRole
	}
	return rec, nil
}

// sessionFromRecord decodes the stored token. Identity fields written at login
// win over the claims. The token's role claim is authoritative; the stored
// roleId is used only when the token carries none.
func (m *Manager) sessionFromRecord(rec Record) (*model.Session, error) {
	id, err := DecodeToken(rec.Token, m.now())
	if err != nil {
		return nil, err
	}

	role := id.Role
	if !role.Valid() {
		role = model.RoleFromID(rec.RoleID)
	}
	if !role.Valid() {
		return nil, sessionerrors.ErrInvalidRole
	}

	userID := firstNonEmpty(rec.UserID, id.UserID)
	if userID == "" {
		return nil, sessionerrors.ErrMissingUserID
	}

	return &model.Session{
		UserID:      userID,
		Email:       firstNonEmpty(rec.Email, id.Email),
		DisplayName: firstNonEmpty(rec.Name, id.Name, DefaultDisplayName),
		Role:        role,
		Credential:  rec.Token,
	}, nil
}

func (m *Manager) clear(ctx context.Context, browserID string) {
	if err := m.store.Clear(ctx, browserID); err != nil {
		m.log.Error("Failed to clear session", "browser_id", browserID, "error", err)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
