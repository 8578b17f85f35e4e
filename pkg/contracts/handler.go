package contracts

import (
	"github.com/julienschmidt/httprouter"

	"clinicportal/pkg/middleware"
)

// Handler mounts its routes. The application owns the shared idempotency
// store and the login limiter so it can stop them on shutdown.
type Handler interface {
	RegisterRoutes(router *httprouter.Router, idempotency middleware.IdempotencyStore, loginLimiter *middleware.KeyRateLimiter)
}
