package locale

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	// SessionCookie is the name of the signed session cookie.
	SessionCookie = "vs_session"
	sessionMaxAge = 365 * 24 * time.Hour
	langKey       = "lang"
)

// Sessions stores per-client state in a signed cookie. The only value kept
// today is the chosen language.
type Sessions struct {
	codec  *securecookie.SecureCookie
	secure bool
	logger *slog.Logger
}

// NewSessions builds a cookie store signed with secret. An empty secret
// gets a random key, so sessions do not survive a restart.
func NewSessions(secret string, secure bool, logger *slog.Logger) *Sessions {
	key := []byte(secret)
	if len(key) == 0 {
		logger.Warn("SESSION_SECRET not set, using a random session key")
		key = securecookie.GenerateRandomKey(32)
	}
	codec := securecookie.New(key, nil)
	codec.MaxAge(int(sessionMaxAge.Seconds()))
	return &Sessions{codec: codec, secure: secure, logger: logger}
}

func (s *Sessions) values(r *http.Request) map[string]string {
	values := map[string]string{}
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return values
	}
	if err := s.codec.Decode(SessionCookie, c.Value, &values); err != nil {
		s.logger.Debug("Ignoring invalid session cookie", "error", err)
		return map[string]string{}
	}
	return values
}

// Language returns the stored language, or "" when none is stored.
func (s *Sessions) Language(r *http.Request) string {
	return s.values(r)[langKey]
}

// SetLanguage persists lang in the session cookie.
func (s *Sessions) SetLanguage(w http.ResponseWriter, r *http.Request, lang string) {
	values := s.values(r)
	if values[langKey] == lang {
		return
	}
	values[langKey] = lang
	encoded, err := s.codec.Encode(SessionCookie, values)
	if err != nil {
		s.logger.Error("Failed to encode session cookie", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
