package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CookieName holds the fallback sender id for clients that do not send one.
const CookieName = "vaspx_session"

// SetSessionCookie sets a browser-session cookie (no MaxAge), so the id
// lives as long as the browser session like a client-generated sender.
func SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GetSessionCookie reads the session ID from the cookie
func GetSessionCookie(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

func newSessionID() string {
	return "user_" + uuid.NewString()
}

// senderFor prefers the sender from the request body, then the session
// cookie, and otherwise mints a new id and sets the cookie.
func senderFor(w http.ResponseWriter, r *http.Request, sender string) string {
	if s := strings.TrimSpace(sender); s != "" {
		return s
	}
	if sid, err := GetSessionCookie(r); err == nil && sid != "" {
		return sid
	}
	sid := newSessionID()
	SetSessionCookie(w, sid)
	return sid
}
