package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"clinicportal/internal/notify"
	scheduleerrors "clinicportal/internal/schedule/errors"
	"clinicportal/pkg/client"
	apperrors "clinicportal/pkg/errors"
	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
	"clinicportal/pkg/validator"
)

// ────────────────────────────────────────────────
// Fakes
// ────────────────────────────────────────────────

type mockGateway struct {
	mu           sync.Mutex
	slotsFunc    func(ctx context.Context, doctorID, date string) (*client.Response, error)
	createFunc   func(ctx context.Context, req model.CreateScheduleRequest) (*client.Response, error)
	slotCalls    int
	createCalled bool
}

func (m *mockGateway) DoctorSlots(ctx context.Context, doctorID, date string) (*client.Response, error) {
	m.mu.Lock()
	m.slotCalls++
	m.mu.Unlock()
	if m.slotsFunc != nil {
		return m.slotsFunc(ctx, doctorID, date)
	}
	return reply(http.StatusOK, `{"slots":[]}`), nil
}

func (m *mockGateway) CreateSchedule(ctx context.Context, req model.CreateScheduleRequest) (*client.Response, error) {
	m.createCalled = true
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return reply(http.StatusOK, `{}`), nil
}

func (m *mockGateway) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slotCalls
}

func reply(status int, body string) *client.Response {
	return &client.Response{Response: &http.Response{StatusCode: status}, Body: []byte(body)}
}

var saigon = time.FixedZone("ICT", 7*3600)

func newTestService(gw Gateway) *Service {
	log := logger.Nop()
	svc := NewService(gw, validator.New(log), saigon, log)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 23, 30, 0, 0, time.UTC) } // 3 March locally
	return svc
}

func at(hour, minute int) model.SlotTime {
	return model.NewSlotTime(time.Date(2026, 3, 3, hour, minute, 0, 0, saigon))
}

func slotsBody(t *testing.T, slots ...model.Slot) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{"slots": slots})
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// ────────────────────────────────────────────────
// Day
// ────────────────────────────────────────────────

func TestDay_RowsSortedAndCounted(t *testing.T) {
	body := slotsBody(t,
		model.Slot{SlotID: "s3", StartTime: at(9, 0), EndTime: at(9, 30), Status: model.SlotCompleted, PatientName: "Trần B"},
		model.Slot{SlotID: "s1", StartTime: at(8, 0), EndTime: at(8, 30), IsBooked: true, PatientName: "Nguyễn A"},
		model.Slot{SlotID: "s2", StartTime: at(8, 30), EndTime: at(9, 0)},
		model.Slot{SlotID: "s4", StartTime: at(9, 30), EndTime: at(10, 0), Status: "waiting"},
		model.Slot{SlotID: "s5", StartTime: at(10, 0), EndTime: at(10, 30), Status: model.SlotCancelled},
	)
	gw := &mockGateway{slotsFunc: func(ctx context.Context, doctorID, date string) (*client.Response, error) {
		if doctorID != "d1" || date != "2026-03-03" {
			t.Errorf("unexpected query %s %s", doctorID, date)
		}
		return reply(http.StatusOK, body), nil
	}}

	day, err := newTestService(gw).Day(context.Background(), "d1", "2026-03-03")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	wantOrder := []string{"s1", "s2", "s3", "s4", "s5"}
	for i, id := range wantOrder {
		if day.Rows[i].SlotID != id {
			t.Fatalf("row %d: expected %s, got %s", i, id, day.Rows[i].SlotID)
		}
	}

	first := day.Rows[0]
	if first.Time != "08:00 - 08:30" || first.Patient != "Nguyễn A" || first.Status != model.SlotBooked || first.StatusText != "Đã đặt" {
		t.Errorf("unexpected first row %+v", first)
	}
	if day.Rows[1].Patient != "Bệnh nhân chưa xác định" || day.Rows[1].StatusText != "Trống" {
		t.Errorf("unexpected empty row %+v", day.Rows[1])
	}
	if day.Rows[3].StatusText != "Chờ khám" {
		t.Errorf("expected waiting text, got %s", day.Rows[3].StatusText)
	}
	if day.Booked != 3 || day.Available != 1 {
		t.Errorf("expected 3 booked / 1 available, got %d / %d", day.Booked, day.Available)
	}
}

func TestDay_MissingSlotsIsEmpty(t *testing.T) {
	gw := &mockGateway{slotsFunc: func(ctx context.Context, doctorID, date string) (*client.Response, error) {
		return reply(http.StatusOK, `{}`), nil
	}}

	day, err := newTestService(gw).Day(context.Background(), "d1", "2026-03-03")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(day.Rows) != 0 || day.Booked != 0 || day.Available != 0 {
		t.Errorf("expected empty schedule, got %+v", day)
	}
}

func TestDay_Failures(t *testing.T) {
	tests := []struct {
		name string
		fn   func(ctx context.Context, doctorID, date string) (*client.Response, error)
	}{
		{"transport", func(ctx context.Context, doctorID, date string) (*client.Response, error) {
			return nil, errors.New("dial tcp: refused")
		}},
		{"upstream status", func(ctx context.Context, doctorID, date string) (*client.Response, error) {
			return reply(http.StatusInternalServerError, "boom"), nil
		}},
		{"bad body", func(ctx context.Context, doctorID, date string) (*client.Response, error) {
			return reply(http.StatusOK, "<html>"), nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestService(&mockGateway{slotsFunc: tt.fn}).Day(context.Background(), "d1", "2026-03-03")
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeSlotFetch || appErr.Message != "Không thể lấy lịch đã đặt" {
				t.Errorf("expected slot fetch error, got %v", err)
			}
		})
	}
}

func TestDay_MissingDoctor(t *testing.T) {
	gw := &mockGateway{}
	_, err := newTestService(gw).Day(context.Background(), " ", "2026-03-03")
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
	if gw.calls() != 0 {
		t.Error("expected no gateway call")
	}
}

// ────────────────────────────────────────────────
// CreateToday
// ────────────────────────────────────────────────

func TestCreateToday_Success(t *testing.T) {
	gw := &mockGateway{createFunc: func(ctx context.Context, req model.CreateScheduleRequest) (*client.Response, error) {
		if req.DoctorID != "d1" || req.Date != "2026-03-03" {
			t.Errorf("unexpected request %+v", req)
		}
		return reply(http.StatusCreated, `{"created":16}`), nil
	}}

	created, err := newTestService(gw).CreateToday(context.Background(), "d1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.Title != "Tạo lịch thành công" || created.Message != "Đã tạo lịch làm việc cho hôm nay (2026-03-03)" {
		t.Errorf("unexpected toast %+v", created)
	}
}

func TestCreateToday_MissingDoctor(t *testing.T) {
	gw := &mockGateway{}
	_, err := newTestService(gw).CreateToday(context.Background(), "")

	appErr := apperrors.AsAppError(err)
	if appErr.Title != "Thiếu thông tin" || appErr.Message != "Không tìm thấy mã bác sĩ" {
		t.Errorf("unexpected error %+v", appErr)
	}
	if gw.createCalled {
		t.Error("expected no gateway call")
	}
}

func TestCreateToday_Duplicate(t *testing.T) {
	for _, body := range []string{`{"message":"Lịch đã tồn tại cho bác sĩ"}`, `Lịch bị trùng`} {
		gw := &mockGateway{createFunc: func(ctx context.Context, req model.CreateScheduleRequest) (*client.Response, error) {
			return reply(http.StatusBadRequest, body), nil
		}}

		_, err := newTestService(gw).CreateToday(context.Background(), "d1")
		if !errors.Is(err, scheduleerrors.ErrScheduleExists) {
			t.Fatalf("expected ErrScheduleExists for %q, got %v", body, err)
		}
		appErr := apperrors.AsAppError(err)
		if appErr.Message != "Lịch cho ngày 2026-03-03 đã tồn tại. Bạn không thể tạo lại." {
			t.Errorf("unexpected message %s", appErr.Message)
		}
		if appErr.Title != apperrors.TitleScheduleFailed || appErr.StatusCode() != http.StatusConflict {
			t.Errorf("unexpected title/status %s %d", appErr.Title, appErr.StatusCode())
		}
	}
}

func TestCreateToday_OtherFailures(t *testing.T) {
	tests := []struct {
		name     string
		resp     *client.Response
		err      error
		expected string
	}{
		{"server message", reply(http.StatusBadRequest, `{"message":"Bác sĩ không hoạt động"}`), nil, "Bác sĩ không hoạt động"},
		{"empty body", reply(http.StatusInternalServerError, ""), nil, "Không thể tạo lịch hôm nay"},
		{"transport", nil, errors.New("connection reset"), "connection reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{createFunc: func(ctx context.Context, req model.CreateScheduleRequest) (*client.Response, error) {
				return tt.resp, tt.err
			}}
			_, err := newTestService(gw).CreateToday(context.Background(), "d1")
			appErr := apperrors.AsAppError(err)
			if appErr.Code != apperrors.CodeSchedule || appErr.Message != tt.expected {
				t.Errorf("expected %q, got %+v", tt.expected, appErr)
			}
		})
	}
}

// ────────────────────────────────────────────────
// Watch
// ────────────────────────────────────────────────

func TestWatch_RefetchesOnNotification(t *testing.T) {
	gw := &mockGateway{}
	svc := newTestService(gw)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	src := notify.SourceFunc(func(ctx context.Context, sub notify.Subscriber, deliver func(model.Notification)) error {
		deliver(model.Notification{Message: "Bệnh nhân mới", Source: "test"})
		cancel()
		return nil
	})

	var updates []Update
	err := svc.Watch(ctx, notify.Subscriber{UserID: "d1", Role: model.RoleDoctor}, src,
		notify.Backoff{Initial: time.Millisecond}, func(u Update) { updates = append(updates, u) })
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(updates))
	}
	if updates[0].EventName() != "schedule" || updates[1].EventName() != "notification" || updates[2].EventName() != "schedule" {
		t.Errorf("unexpected update order %s %s %s", updates[0].EventName(), updates[1].EventName(), updates[2].EventName())
	}
	if updates[1].Notification.Message != "Bệnh nhân mới" {
		t.Errorf("unexpected notification %+v", updates[1].Notification)
	}
	if gw.calls() != 2 {
		t.Errorf("expected 2 schedule fetches, got %d", gw.calls())
	}
}

func TestWatch_InitialFailureStops(t *testing.T) {
	gw := &mockGateway{slotsFunc: func(ctx context.Context, doctorID, date string) (*client.Response, error) {
		return reply(http.StatusBadGateway, ""), nil
	}}

	called := false
	err := newTestService(gw).Watch(context.Background(), notify.Subscriber{UserID: "d1"}, nil, notify.Backoff{}, func(Update) { called = true })
	if !apperrors.HasCode(err, apperrors.CodeSlotFetch) {
		t.Errorf("expected slot fetch error, got %v", err)
	}
	if called {
		t.Error("expected no updates")
	}
}
