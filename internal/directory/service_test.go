package directory

import (
	"context"
	"errors"
	"net/http"
	"testing"

	directoryerrors "clinicportal/internal/directory/errors"
	"clinicportal/pkg/client"
	apperrors "clinicportal/pkg/errors"
	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
	"clinicportal/pkg/validator"
)

// ────────────────────────────────────────────────
// Fakes
// ────────────────────────────────────────────────

type mockBackend struct {
	getAllFunc   func(ctx context.Context) (*client.Response, error)
	getPagedFunc func(ctx context.Context, pageIndex, pageSize int) (*client.Response, error)
	getByIDFunc  func(ctx context.Context, id string) (*client.Response, error)
	searchFunc   func(ctx context.Context, search model.DoctorSearch) (*client.Response, error)
	createFunc   func(ctx context.Context, req model.DoctorCreateRequest) (*client.Response, error)
	updateFunc   func(ctx context.Context, id string, req model.DoctorUpdateRequest) (*client.Response, error)
	deleteFunc   func(ctx context.Context, id string) (*client.Response, error)
	calls        int
}

func (m *mockBackend) GetAll(ctx context.Context) (*client.Response, error) {
	m.calls++
	if m.getAllFunc != nil {
		return m.getAllFunc(ctx)
	}
	return reply(http.StatusOK, `[]`), nil
}

func (m *mockBackend) GetPaged(ctx context.Context, pageIndex, pageSize int) (*client.Response, error) {
	m.calls++
	if m.getPagedFunc != nil {
		return m.getPagedFunc(ctx, pageIndex, pageSize)
	}
	return reply(http.StatusOK, `{"items":[],"totalPages":0}`), nil
}

func (m *mockBackend) GetByID(ctx context.Context, id string) (*client.Response, error) {
	m.calls++
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return reply(http.StatusNotFound, ``), nil
}

func (m *mockBackend) Search(ctx context.Context, search model.DoctorSearch) (*client.Response, error) {
	m.calls++
	if m.searchFunc != nil {
		return m.searchFunc(ctx, search)
	}
	return reply(http.StatusOK, `[]`), nil
}

func (m *mockBackend) Create(ctx context.Context, req model.DoctorCreateRequest) (*client.Response, error) {
	m.calls++
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return reply(http.StatusCreated, `{}`), nil
}

func (m *mockBackend) Update(ctx context.Context, id string, req model.DoctorUpdateRequest) (*client.Response, error) {
	m.calls++
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, req)
	}
	return reply(http.StatusOK, `{}`), nil
}

func (m *mockBackend) Delete(ctx context.Context, id string) (*client.Response, error) {
	m.calls++
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return reply(http.StatusNoContent, ``), nil
}

func reply(status int, body string) *client.Response {
	return &client.Response{Response: &http.Response{StatusCode: status}, Body: []byte(body)}
}

func newTestService(b Backend) *Service {
	log := logger.Nop()
	return NewService(b, validator.New(log), log)
}

func validCreate() model.DoctorCreateRequest {
	return model.DoctorCreateRequest{
		Name:           "  Nguyễn   Văn An ",
		Email:          " An.Nguyen@Clinic.VN ",
		Specialization: "Tim mạch",
		Experience:     12,
	}
}

// ────────────────────────────────────────────────
// Reads
// ────────────────────────────────────────────────

func TestList_AcceptsArrayAndPage(t *testing.T) {
	for _, body := range []string{
		`[{"id":"d1","name":"An"},{"id":"d2","name":"Bình"}]`,
		`{"items":[{"id":"d1","name":"An"},{"id":"d2","name":"Bình"}],"totalPages":1}`,
	} {
		b := &mockBackend{getAllFunc: func(ctx context.Context) (*client.Response, error) {
			return reply(http.StatusOK, body), nil
		}}
		doctors, err := newTestService(b).List(context.Background())
		if err != nil {
			t.Fatalf("expected no error for %s, got %v", body, err)
		}
		if len(doctors) != 2 || doctors[1].Name != "Bình" {
			t.Errorf("unexpected doctors %+v", doctors)
		}
	}
}

func TestList_Failure(t *testing.T) {
	b := &mockBackend{getAllFunc: func(ctx context.Context) (*client.Response, error) {
		return nil, errors.New("dial tcp: refused")
	}}
	_, err := newTestService(b).List(context.Background())
	if !apperrors.HasCode(err, apperrors.CodeDirectory) {
		t.Errorf("expected directory error, got %v", err)
	}
}

func TestPage_DefaultsAndClamps(t *testing.T) {
	tests := []struct {
		index, size         int
		wantIndex, wantSize int
	}{
		{0, 0, 1, DefaultPageSize},
		{3, 25, 3, 25},
		{2, 1000, 2, MaxPageSize},
	}

	for _, tt := range tests {
		var gotIndex, gotSize int
		b := &mockBackend{getPagedFunc: func(ctx context.Context, pageIndex, pageSize int) (*client.Response, error) {
			gotIndex, gotSize = pageIndex, pageSize
			return reply(http.StatusOK, `{"items":[{"id":"d1"}],"totalPages":4}`), nil
		}}

		page, err := newTestService(b).Page(context.Background(), tt.index, tt.size)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if gotIndex != tt.wantIndex || gotSize != tt.wantSize {
			t.Errorf("expected page %d/%d, got %d/%d", tt.wantIndex, tt.wantSize, gotIndex, gotSize)
		}
		if page.TotalPages != 4 || len(page.Items) != 1 || page.PageSize != tt.wantSize {
			t.Errorf("unexpected page %+v", page)
		}
	}
}

func TestGet_NotFound(t *testing.T) {
	_, err := newTestService(&mockBackend{}).Get(context.Background(), "missing")
	if !errors.Is(err, directoryerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if apperrors.AsAppError(err).StatusCode() != http.StatusNotFound {
		t.Errorf("expected 404, got %d", apperrors.AsAppError(err).StatusCode())
	}
}

func TestGet_Success(t *testing.T) {
	b := &mockBackend{getByIDFunc: func(ctx context.Context, id string) (*client.Response, error) {
		return reply(http.StatusOK, `{"id":"`+id+`","name":"An","specialization":"Nhi"}`), nil
	}}
	doctor, err := newTestService(b).Get(context.Background(), " d7 ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if doctor.ID != "d7" || doctor.Specialization != "Nhi" {
		t.Errorf("unexpected doctor %+v", doctor)
	}
}

func TestSearch(t *testing.T) {
	t.Run("empty search lists everyone", func(t *testing.T) {
		listed := false
		b := &mockBackend{
			getAllFunc: func(ctx context.Context) (*client.Response, error) {
				listed = true
				return reply(http.StatusOK, `[]`), nil
			},
			searchFunc: func(ctx context.Context, search model.DoctorSearch) (*client.Response, error) {
				t.Error("search endpoint should not be called")
				return nil, nil
			},
		}
		if _, err := newTestService(b).Search(context.Background(), model.DoctorSearch{Name: "   "}); err != nil {
			t.Fatal(err)
		}
		if !listed {
			t.Error("expected full listing")
		}
	})

	t.Run("normalised terms forwarded", func(t *testing.T) {
		b := &mockBackend{searchFunc: func(ctx context.Context, search model.DoctorSearch) (*client.Response, error) {
			if search.Name != "Văn An" || search.Specialty != "Tim mạch" {
				t.Errorf("unexpected search %+v", search)
			}
			return reply(http.StatusOK, `[{"id":"d1"}]`), nil
		}}
		doctors, err := newTestService(b).Search(context.Background(), model.DoctorSearch{Name: " Văn  An", Specialty: "Tim mạch "})
		if err != nil {
			t.Fatal(err)
		}
		if len(doctors) != 1 {
			t.Errorf("expected 1 doctor, got %d", len(doctors))
		}
	})
}

// ────────────────────────────────────────────────
// Writes
// ────────────────────────────────────────────────

func TestCreate_Success(t *testing.T) {
	b := &mockBackend{createFunc: func(ctx context.Context, req model.DoctorCreateRequest) (*client.Response, error) {
		if req.Name != "Nguyễn Văn An" || req.Email != "an.nguyen@clinic.vn" {
			t.Errorf("expected sanitized request, got %+v", req)
		}
		return reply(http.StatusCreated, `{"id":"d9","name":"Nguyễn Văn An"}`), nil
	}}

	result, err := newTestService(b).Create(context.Background(), validCreate())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Title != "Thành công" || result.Message != "Đã thêm bác sĩ mới thành công" {
		t.Errorf("unexpected toast %+v", result)
	}
	if result.Doctor == nil || result.Doctor.ID != "d9" {
		t.Errorf("expected created doctor echoed, got %+v", result.Doctor)
	}
}

func TestCreate_ValidationStopsBeforeBackend(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.DoctorCreateRequest)
		field  string
	}{
		{"missing name", func(r *model.DoctorCreateRequest) { r.Name = " " }, "name"},
		{"bad email", func(r *model.DoctorCreateRequest) { r.Email = "not-an-email" }, "email"},
		{"negative experience", func(r *model.DoctorCreateRequest) { r.Experience = -1 }, "experience"},
		{"bad avatar", func(r *model.DoctorCreateRequest) {
			r.Avatar = &model.Avatar{FileName: "cv.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
		}, "avatar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBackend{}
			req := validCreate()
			tt.mutate(&req)

			_, err := newTestService(b).Create(context.Background(), req)
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := appErr.Details[tt.field]; !ok {
				t.Errorf("expected detail for %s, got %v", tt.field, appErr.Details)
			}
			if b.calls != 0 {
				t.Error("expected no backend call")
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	req := model.DoctorUpdateRequest{Name: "An", Email: "an@clinic.vn", Specialization: "Nhi", AvatarURL: "https://cdn.clinic.vn/a.png"}

	t.Run("success", func(t *testing.T) {
		b := &mockBackend{updateFunc: func(ctx context.Context, id string, got model.DoctorUpdateRequest) (*client.Response, error) {
			if id != "d1" || got.AvatarURL != "https://cdn.clinic.vn/a.png" {
				t.Errorf("unexpected update %s %+v", id, got)
			}
			return reply(http.StatusOK, `{}`), nil
		}}
		result, err := newTestService(b).Update(context.Background(), "d1", req)
		if err != nil {
			t.Fatal(err)
		}
		if result.Message != "Đã cập nhật bác sĩ" {
			t.Errorf("unexpected message %s", result.Message)
		}
	})

	t.Run("server message surfaced", func(t *testing.T) {
		b := &mockBackend{updateFunc: func(ctx context.Context, id string, got model.DoctorUpdateRequest) (*client.Response, error) {
			return reply(http.StatusConflict, `{"message":"Email đã được sử dụng"}`), nil
		}}
		_, err := newTestService(b).Update(context.Background(), "d1", req)
		appErr := apperrors.AsAppError(err)
		if appErr.Message != "Email đã được sử dụng" || appErr.StatusCode() != http.StatusConflict {
			t.Errorf("unexpected error %+v", appErr)
		}
	})

	t.Run("fallback message", func(t *testing.T) {
		b := &mockBackend{updateFunc: func(ctx context.Context, id string, got model.DoctorUpdateRequest) (*client.Response, error) {
			return reply(http.StatusInternalServerError, ``), nil
		}}
		_, err := newTestService(b).Update(context.Background(), "d1", req)
		appErr := apperrors.AsAppError(err)
		if appErr.Message != "Không thể cập nhật bác sĩ" || appErr.StatusCode() != http.StatusBadGateway {
			t.Errorf("unexpected error %+v", appErr)
		}
	})
}

func TestDelete(t *testing.T) {
	result, err := newTestService(&mockBackend{}).Delete(context.Background(), "d1")
	if err != nil {
		t.Fatal(err)
	}
	if result.Message != "Đã xoá bác sĩ" {
		t.Errorf("unexpected message %s", result.Message)
	}

	b := &mockBackend{}
	if _, err := newTestService(b).Delete(context.Background(), ""); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
	if b.calls != 0 {
		t.Error("expected no backend call")
	}
}
