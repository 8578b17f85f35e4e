package portal

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"clinicportal/pkg/middleware"
	"clinicportal/pkg/model"
)

// RegisterRoutes mounts every portal route. Login endpoints are rate limited
// per client; the booking endpoint honours Idempotency-Key per browser.
func (h *Handler) RegisterRoutes(router *httprouter.Router, idempotency middleware.IdempotencyStore, loginLimiter *middleware.KeyRateLimiter) {
	g := h.guard
	limited := middleware.RateLimit(loginLimiter)
	idempotent := middleware.Idempotency(idempotency, h.cookies.BrowserID)

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	router.GET("/login", g.PublicOnly(h.view("login")))
	router.GET("/register", g.PublicOnly(h.view("register")))
	router.POST("/api/session/patient", g.PublicOnly(with(h.LoginPatient, limited)))
	router.POST("/api/session/doctor", g.PublicOnly(with(h.LoginDoctor, limited)))
	router.POST("/api/register", g.PublicOnly(with(h.Register, limited)))
	router.GET("/api/session", h.CurrentSession)
	router.DELETE("/api/session", h.Logout)

	router.GET("/dashboard", g.Protect(h.view("dashboard"), model.RolePatient))
	router.GET("/book-appointment", g.Protect(h.view("book-appointment"), model.RolePatient))
	router.GET("/history", g.Protect(h.view("history"), model.RolePatient))
	router.GET("/api/doctors", g.Protect(h.Doctors, model.RolePatient, model.RoleAdmin))
	router.GET("/api/slots", g.Protect(h.Slots, model.RolePatient))
	router.POST("/api/bookings", g.Protect(with(h.Reserve, idempotent), model.RolePatient))
	router.GET("/api/bookings/history", g.Protect(h.BookingHistory, model.RolePatient))
	router.GET("/api/appointments", g.Protect(h.Appointments, model.RolePatient))

	router.GET("/doctor", g.Protect(h.DoctorSchedule, model.RoleDoctor))
	router.GET("/doctor/schedule", g.Protect(h.DoctorSchedule, model.RoleDoctor))
	router.POST("/api/doctor/schedule", g.Protect(h.CreateSchedule, model.RoleDoctor))
	router.GET("/api/doctor/events", g.Protect(h.Events, model.RoleDoctor))

	router.GET("/admin", g.Protect(h.view("admin"), model.RoleAdmin))
	router.GET("/admin/doctors", g.Protect(h.AdminDoctorsView, model.RoleAdmin))
	router.GET("/api/admin/doctors", g.Protect(h.ListDoctors, model.RoleAdmin))
	router.POST("/api/admin/doctors", g.Protect(h.CreateDoctor, model.RoleAdmin))
	router.GET("/api/admin/doctors/:id", g.Protect(h.GetDoctor, model.RoleAdmin))
	router.PUT("/api/admin/doctors/:id", g.Protect(h.UpdateDoctor, model.RoleAdmin))
	router.DELETE("/api/admin/doctors/:id", g.Protect(h.DeleteDoctor, model.RoleAdmin))
}

// with runs net/http middleware in front of a routed handle.
func with(h httprouter.Handle, mws ...func(http.Handler) http.Handler) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		var next http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h(w, r, ps)
		})
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		next.ServeHTTP(w, r)
	}
}
