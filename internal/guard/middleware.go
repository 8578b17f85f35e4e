package guard

import (
	"context"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"clinicportal/internal/session"
	httputil "clinicportal/pkg/http"
	"clinicportal/pkg/logger"
	"clinicportal/pkg/model"
)

type contextKey string

const sessionKey contextKey = "session"

// Resolver restores and drops browser sessions.
type Resolver interface {
	Restore(ctx context.Context, browserID string) session.Resolution
	Logout(ctx context.Context, browserID string)
}

// BrowserIDFunc extracts the browser id from a request, or "" when absent.
type BrowserIDFunc func(r *http.Request) string

type Guard struct {
	sessions  Resolver
	browserID BrowserIDFunc
	log       *logger.Logger
}

func New(sessions Resolver, browserID BrowserIDFunc, log *logger.Logger) *Guard {
	return &Guard{
		sessions:  sessions,
		browserID: browserID,
		log:       log,
	}
}

// Protect wraps h with Authorize. Allowed requests carry the session in
// their context; see SessionFrom.
func (g *Guard) Protect(h httprouter.Handle, allowed ...model.Role) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		id := g.browserID(r)
		res := g.sessions.Restore(r.Context(), id)
		decision := Authorize(res, allowed...)

		switch decision.Outcome {
		case Pending:
			httputil.WritePending(w)
		case Redirect:
			if decision.Invalidate {
				g.sessions.Logout(r.Context(), id)
			}
			g.log.Debug("Route guard redirect",
				"path", r.URL.Path,
				"state", res.State.String(),
				"location", decision.Location,
			)
			httputil.Redirect(w, r, decision.Location)
		default:
			ctx := context.WithValue(r.Context(), sessionKey, res.Session)
			h(w, r.WithContext(ctx), ps)
		}
	}
}

// PublicOnly wraps h so signed-in browsers are redirected to their landing view.
func (g *Guard) PublicOnly(h httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		decision := PublicOnly(g.sessions.Restore(r.Context(), g.browserID(r)))

		switch decision.Outcome {
		case Pending:
			httputil.WritePending(w)
		case Redirect:
			httputil.Redirect(w, r, decision.Location)
		default:
			h(w, r, ps)
		}
	}
}

// SessionFrom returns the session attached by Protect.
func SessionFrom(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(sessionKey).(*model.Session)
	return sess
}

// WithSession attaches sess to ctx. Used by handlers invoked outside Protect.
func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}
