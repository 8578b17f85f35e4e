package portal

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"clinicportal/pkg/sealer"
)

const cookiePurpose = "browser-session"

// Cookies maps a browser to its session record through a sealed id cookie.
type Cookies struct {
	name   string
	secure bool
	ttl    time.Duration
	sealer *sealer.Sealer
}

func NewCookies(name string, secure bool, ttl time.Duration, s *sealer.Sealer) *Cookies {
	return &Cookies{
		name:   name,
		secure: secure,
		ttl:    ttl,
		sealer: s,
	}
}

// BrowserID opens the cookie. Missing or tampered cookies yield "".
func (c *Cookies) BrowserID(r *http.Request) string {
	cookie, err := r.Cookie(c.name)
	if err != nil || cookie.Value == "" {
		return ""
	}
	id, err := c.sealer.Open(cookie.Value, cookiePurpose)
	if err != nil {
		return ""
	}
	return id
}

// NewBrowserID mints an id for a browser that is about to sign in.
func (c *Cookies) NewBrowserID() string {
	return uuid.NewString()
}

// Set seals id into the browser's cookie.
func (c *Cookies) Set(w http.ResponseWriter, id string) error {
	value, err := c.sealer.Seal(id, cookiePurpose)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
