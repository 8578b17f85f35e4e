package guard

import (
	"clinicportal/internal/session"
	"clinicportal/pkg/model"
)

const (
	LoginPath   = "/login"
	AdminPath   = "/admin"
	PatientPath = "/dashboard"
	DoctorPath  = "/doctor"
)

type Outcome int

const (
	Allow Outcome = iota
	Pending
	Redirect
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Pending:
		return "pending"
	default:
		return "redirect"
	}
}

// Decision is what a view should do for the current session. Location is set
// for Redirect. Invalidate asks the caller to drop the session entirely.
type Decision struct {
	Outcome    Outcome
	Location   string
	Invalidate bool
}

// Authorize gates a view on the session and an allow-list of roles. An empty
// allow-list admits any authenticated session. Denials redirect to the login
// view rather than answering 403.
func Authorize(res session.Resolution, allowed ...model.Role) Decision {
	switch res.State {
	case session.StatePending:
		return Decision{Outcome: Pending}
	case session.StateAnonymous:
		return Decision{Outcome: Redirect, Location: LoginPath}
	}

	sess := res.Session
	if sess == nil {
		return Decision{Outcome: Redirect, Location: LoginPath}
	}
	if !sess.Role.Valid() {
		return Decision{Outcome: Redirect, Location: LoginPath, Invalidate: true}
	}
	if len(allowed) > 0 && !sess.HasRole(allowed...) {
		return Decision{Outcome: Redirect, Location: LoginPath}
	}
	return Decision{Outcome: Allow}
}

// PublicOnly admits anonymous visitors and sends signed-in ones to their
// landing view.
func PublicOnly(res session.Resolution) Decision {
	switch res.State {
	case session.StatePending:
		return Decision{Outcome: Pending}
	case session.StateAuthenticated:
		if res.Session != nil {
			return Decision{Outcome: Redirect, Location: LandingView(res.Session.Role)}
		}
	}
	return Decision{Outcome: Allow}
}

// LandingView is the default view for a role. Unknown roles land on the
// patient dashboard, whose own guard then sends them to login.
func LandingView(role model.Role) string {
	switch role {
	case model.RoleAdmin:
		return AdminPath
	case model.RoleDoctor:
		return DoctorPath
	default:
		return PatientPath
	}
}
