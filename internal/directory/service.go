package directory

import (
	"context"
	"errors"
	"net/http"
	"strings"

	directoryerrors "clinicportal/internal/directory/errors"
	"clinicportal/pkg/client"
	apperrors "clinicportal/pkg/errors"
	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
	"clinicportal/pkg/sanitizer"
	"clinicportal/pkg/validator"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxAvatarBytes bounds uploaded avatars forwarded to the directory.
	MaxAvatarBytes = 5 << 20

	TitleSuccess = "Thành công"

	msgCreated       = "Đã thêm bác sĩ mới thành công"
	msgUpdated       = "Đã cập nhật bác sĩ"
	msgDeleted       = "Đã xoá bác sĩ"
	msgCreateFailed  = "Không thể thêm bác sĩ"
	msgUpdateFailed  = "Không thể cập nhật bác sĩ"
	msgDeleteFailed  = "Không thể xoá bác sĩ"
	msgLoadFailed    = "Không thể tải danh sách bác sĩ"
	msgNotFound      = "Không tìm thấy bác sĩ"
	msgInvalidFields = "Vui lòng kiểm tra lại thông tin bác sĩ"
	msgMissingID     = "Thiếu mã bác sĩ"
)

var avatarTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/gif":  {},
	"image/webp": {},
}

// Backend is the doctor-directory service surface.
type Backend interface {
	GetAll(ctx context.Context) (*client.Response, error)
	GetPaged(ctx context.Context, pageIndex, pageSize int) (*client.Response, error)
	GetByID(ctx context.Context, id string) (*client.Response, error)
	Search(ctx context.Context, search model.DoctorSearch) (*client.Response, error)
	Create(ctx context.Context, req model.DoctorCreateRequest) (*client.Response, error)
	Update(ctx context.Context, id string, req model.DoctorUpdateRequest) (*client.Response, error)
	Delete(ctx context.Context, id string) (*client.Response, error)
}

// Result is the toast shown after a successful directory write.
type Result struct {
	Title   string        `json:"title"`
	Message string        `json:"message"`
	Doctor  *model.Doctor `json:"doctor,omitempty"`
}

type Service struct {
	backend   Backend
	validator *validator.Validator
	log       *logger.Logger
}

func NewService(backend Backend, v *validator.Validator, log *logger.Logger) *Service {
	return &Service{
		backend:   backend,
		validator: v,
		log:       log,
	}
}

func (s *Service) List(ctx context.Context) ([]model.Doctor, error) {
	resp, err := s.backend.GetAll(ctx)
	if err := s.readFailure("list", "", resp, err, msgLoadFailed); err != nil {
		return nil, err
	}
	return decodeDoctors(resp)
}

// Page returns one page of the directory. pageIndex starts at 1; a
// non-positive pageSize falls back to DefaultPageSize.
func (s *Service) Page(ctx context.Context, pageIndex, pageSize int) (*model.DoctorPage, error) {
	if pageIndex < 1 {
		pageIndex = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	resp, err := s.backend.GetPaged(ctx, pageIndex, pageSize)
	if err := s.readFailure("page", "", resp, err, msgLoadFailed); err != nil {
		return nil, err
	}

	var page model.DoctorPage
	if err := resp.DecodeJSON(&page); err != nil {
		return nil, apperrors.Directory(msgLoadFailed, http.StatusBadGateway, err)
	}
	if page.Items == nil {
		page.Items = []model.Doctor{}
	}
	page.PageIndex = pageIndex
	page.PageSize = pageSize
	return &page, nil
}

func (s *Service) Get(ctx context.Context, id string) (*model.Doctor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput(msgMissingID)
	}

	resp, err := s.backend.GetByID(ctx, id)
	if err := s.readFailure("get", id, resp, err, msgLoadFailed); err != nil {
		return nil, err
	}

	var doctor model.Doctor
	if err := resp.DecodeJSON(&doctor); err != nil {
		return nil, apperrors.Directory(msgLoadFailed, http.StatusBadGateway, err)
	}
	return &doctor, nil
}

// Search filters by name and specialty. An empty search lists everyone.
func (s *Service) Search(ctx context.Context, search model.DoctorSearch) ([]model.Doctor, error) {
	search.Name = sanitizer.NormalizeName(search.Name)
	search.Specialty = sanitizer.NormalizeName(search.Specialty)
	if err := s.validator.Struct(search); err != nil {
		return nil, s.validationFailure(err)
	}
	if search.Empty() {
		return s.List(ctx)
	}

	resp, err := s.backend.Search(ctx, search)
	if err := s.readFailure("search", "", resp, err, msgLoadFailed); err != nil {
		return nil, err
	}
	return decodeDoctors(resp)
}

func (s *Service) Create(ctx context.Context, req model.DoctorCreateRequest) (*Result, error) {
	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Specialization = sanitizer.NormalizeName(req.Specialization)
	req.Bio = strings.TrimSpace(req.Bio)

	if err := s.validator.Struct(req); err != nil {
		s.log.Warn("Doctor create validation failed", "email", req.Email, "error", err)
		return nil, s.validationFailure(err)
	}
	if err := validateAvatar(req.Avatar); err != nil {
		return nil, apperrors.Validation(err.Error(), map[string]any{"avatar": err.Error()})
	}

	resp, err := s.backend.Create(ctx, req)
	if err := s.writeFailure("create", "", resp, err, msgCreateFailed); err != nil {
		return nil, err
	}

	result := &Result{Title: TitleSuccess, Message: msgCreated}
	var doctor model.Doctor
	if err := resp.DecodeJSON(&doctor); err == nil && doctor.ID != "" {
		result.Doctor = &doctor
	}

	s.log.Info("Doctor created", "email", req.Email, "specialization", req.Specialization)
	return result, nil
}

func (s *Service) Update(ctx context.Context, id string, req model.DoctorUpdateRequest) (*Result, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput(msgMissingID)
	}

	req.Name = sanitizer.NormalizeName(req.Name)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.Specialization = sanitizer.NormalizeName(req.Specialization)
	req.Bio = strings.TrimSpace(req.Bio)
	req.AvatarURL = sanitizer.NormalizeURL(req.AvatarURL)

	if err := s.validator.Struct(req); err != nil {
		s.log.Warn("Doctor update validation failed", "id", id, "error", err)
		return nil, s.validationFailure(err)
	}
	if err := validateAvatar(req.Avatar); err != nil {
		return nil, apperrors.Validation(err.Error(), map[string]any{"avatar": err.Error()})
	}

	resp, err := s.backend.Update(ctx, id, req)
	if err := s.writeFailure("update", id, resp, err, msgUpdateFailed); err != nil {
		return nil, err
	}

	s.log.Info("Doctor updated", "id", id)
	return &Result{Title: TitleSuccess, Message: msgUpdated}, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*Result, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput(msgMissingID)
	}

	resp, err := s.backend.Delete(ctx, id)
	if err := s.writeFailure("delete", id, resp, err, msgDeleteFailed); err != nil {
		return nil, err
	}

	s.log.Info("Doctor deleted", "id", id)
	return &Result{Title: TitleSuccess, Message: msgDeleted}, nil
}

// ────────────────────────────────────────────────
// Helpers
// ────────────────────────────────────────────────

func (s *Service) readFailure(op, id string, resp *client.Response, err error, fallback string) error {
	if err != nil {
		s.log.Error("Doctor directory request failed", "op", op, "id", id, "error", err)
		return apperrors.Directory(fallback, http.StatusBadGateway, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return apperrors.Directory(msgNotFound, http.StatusNotFound, directoryerrors.ErrNotFound)
	}
	if !resp.IsSuccess() {
		s.log.Warn("Doctor directory rejected request", "op", op, "id", id, "status", resp.StatusCode)
		return apperrors.Directory(fallback, http.StatusBadGateway, nil)
	}
	return nil
}

// writeFailure surfaces the directory's own message when it sent one.
func (s *Service) writeFailure(op, id string, resp *client.Response, err error, fallback string) error {
	if err != nil {
		s.log.Error("Doctor directory write failed", "op", op, "id", id, "error", err)
		return apperrors.Directory(fallback, http.StatusBadGateway, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return apperrors.Directory(msgNotFound, http.StatusNotFound, directoryerrors.ErrNotFound)
	}
	if resp.IsSuccess() {
		return nil
	}

	message := client.GetErrorMessage(resp)
	if message == "" {
		message = fallback
	}
	s.log.Warn("Doctor directory rejected write",
		"op", op,
		"id", id,
		"status", resp.StatusCode,
		"message", message,
	)

	status := http.StatusBadGateway
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusConflict {
		status = resp.StatusCode
	}
	return apperrors.Directory(message, status, nil)
}

func (s *Service) validationFailure(err error) error {
	var verrs validator.ValidationErrors
	details := map[string]any{}
	if errors.As(err, &verrs) {
		details = verrs.Details()
	}
	return apperrors.Validation(msgInvalidFields, details)
}

func validateAvatar(avatar *model.Avatar) error {
	if avatar == nil {
		return nil
	}
	if _, ok := avatarTypes[strings.ToLower(avatar.ContentType)]; !ok {
		return directoryerrors.ErrInvalidAvatar
	}
	if len(avatar.Data) > MaxAvatarBytes {
		return directoryerrors.ErrAvatarTooLarge
	}
	return nil
}

// decodeDoctors accepts a bare array or an {items} page.
func decodeDoctors(resp *client.Response) ([]model.Doctor, error) {
	var doctors []model.Doctor
	if err := resp.DecodeJSON(&doctors); err == nil {
		if doctors == nil {
			doctors = []model.Doctor{}
		}
		return doctors, nil
	}

	var page model.DoctorPage
	if err := resp.DecodeJSON(&page); err != nil {
		return nil, apperrors.Directory(msgLoadFailed, http.StatusBadGateway, err)
	}
	if page.Items == nil {
		page.Items = []model.Doctor{}
	}
	return page.Items, nil
}
