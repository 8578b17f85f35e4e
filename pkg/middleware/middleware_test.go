package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"clinicportal/pkg/logger"
)

func TestIdempotency_ReplaysSuccessfulResponse(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"slotId":"s1"}`))
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
		req.Header.Set(IdempotencyHeader, "k1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Errorf("attempt %d: expected 201, got %d", i, rec.Code)
		}
		if rec.Body.String() != `{"slotId":"s1"}` {
			t.Errorf("attempt %d: unexpected body %q", i, rec.Body.String())
		}
	}

	if calls != 1 {
		t.Errorf("expected handler to run once, ran %d times", calls)
	}
}

func TestIdempotency_DoesNotCacheFailures(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusConflict)
	}))

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
		req.Header.Set(IdempotencyHeader, "k1")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Errorf("expected failed responses to be retried, ran %d times", calls)
	}
}

func TestIdempotency_DoesNotCacheAccepted(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	var calls int32
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"status":"loading"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	var codes []int
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
		req.Header.Set(IdempotencyHeader, "k1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Header().Get("Idempotent-Replayed") != "" {
			t.Errorf("attempt %d: expected no replay", i)
		}
	}

	if calls != 2 {
		t.Errorf("expected handler to run twice, ran %d times", calls)
	}
	if codes[0] != http.StatusAccepted || codes[1] != http.StatusOK {
		t.Errorf("expected 202 then 200, got %v", codes)
	}
}

func TestIdempotency_RejectsConcurrentDuplicate(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	release := make(chan struct{})
	entered := make(chan struct{})
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
		req.Header.Set(IdempotencyHeader, "k1")
		h.ServeHTTP(httptest.NewRecorder(), req)
	}()
	<-entered

	req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
	req.Header.Set(IdempotencyHeader, "k1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	close(release)
	wg.Wait()

	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for in-flight duplicate, got %d", rec.Code)
	}
}

func TestIdempotency_ScopeSeparatesSessions(t *testing.T) {
	store := NewInMemoryIdempotencyStore(time.Minute)
	defer store.Stop()

	var calls int32
	scope := func(r *http.Request) string { return r.Header.Get("X-Session") }
	h := Idempotency(store, scope)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))

	for _, sid := range []string{"a", "b"} {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", nil)
		req.Header.Set(IdempotencyHeader, "same")
		req.Header.Set("X-Session", sid)
		h.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls != 2 {
		t.Errorf("expected one call per session, got %d", calls)
	}
}

func TestContentTypeValidation(t *testing.T) {
	h := ContentTypeValidation(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name        string
		method      string
		contentType string
		body        string
		want        int
	}{
		{"json", http.MethodPost, "application/json; charset=utf-8", "{}", http.StatusOK},
		{"multipart", http.MethodPut, "multipart/form-data; boundary=x", "--x--", http.StatusOK},
		{"text", http.MethodPost, "text/plain", "hi", http.StatusUnsupportedMediaType},
		{"empty post", http.MethodPost, "", "", http.StatusOK},
		{"get", http.MethodGet, "", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/x", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRateLimit_PerKey(t *testing.T) {
	limiter := NewKeyRateLimiter(0.001, 2, func(r *http.Request) string { return r.Header.Get("X-Key") }, logger.Nop())
	defer limiter.Stop()

	h := RateLimit(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/session/patient", nil)
		req.Header.Set("X-Key", "1.2.3.4")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("expected burst of two then 429, got %v", codes)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/session/patient", nil)
	req.Header.Set("X-Key", "5.6.7.8")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected other key to be allowed, got %d", rec.Code)
	}
}

func TestRecovery_WritesToast(t *testing.T) {
	h := Recovery(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Internal server error") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestRequestTimeout(t *testing.T) {
	h := RequestTimeout(20 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/slots", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestRequestTimeout_SkipsEventStreams(t *testing.T) {
	h := RequestTimeout(5 * time.Millisecond)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Deadline(); ok {
			t.Error("expected no deadline on event stream")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/doctor/events", nil)
	req.Header.Set("Accept", "text/event-stream")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRequestTimeout_ExposesFlusher(t *testing.T) {
	h := RequestTimeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, ok := w.(http.Flusher)
		if !ok {
			t.Error("expected writer to implement http.Flusher")
			return
		}
		_, _ = w.Write([]byte("data: ping\n\n"))
		f.Flush()
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/doctor/events", nil))
	if !rec.Flushed {
		t.Error("expected flush to reach the underlying writer")
	}
}

func TestRequestLogging_SetsRequestID(t *testing.T) {
	var seen string
	h := RequestLogging(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == "" {
		t.Error("expected request id in context")
	}
	if rec.Header().Get(RequestIDHeader) != seen {
		t.Errorf("expected response header %q, got %q", seen, rec.Header().Get(RequestIDHeader))
	}
}
