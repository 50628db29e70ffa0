package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const SessionHeader = "X-Session-ID"

type sessionContextKey struct{}

// Session resolves the shopper's session id from the X-Session-ID header or
// the session cookie, minting one when neither is present.
type Session struct {
	cookieName string
	ttl        time.Duration
	secure     bool
}

func NewSession(cookieName string, ttl time.Duration, secure bool) *Session {
	return &Session{cookieName: cookieName, ttl: ttl, secure: secure}
}

func (s *Session) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(SessionHeader)

		if sessionID == "" {
			if cookie, err := r.Cookie(s.cookieName); err == nil {
				sessionID = cookie.Value
			}
		}

		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = uuid.NewString()

			http.SetCookie(w, &http.Cookie{
				Name:     s.cookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(s.ttl.Seconds()),
				HttpOnly: true,
				Secure:   s.secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		w.Header().Set(SessionHeader, sessionID)

		logger := LoggerFromContext(r.Context()).With(slog.String("session_id", sessionID))

		ctx := context.WithValue(r.Context(), sessionContextKey{}, sessionID)
		ctx = context.WithValue(ctx, LoggerKey, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionFromContext returns the id set by Session.
func SessionFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionContextKey{}).(string)
	return id, ok && id != ""
}

// WithSession is used by callers that resolve the session themselves.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sessionID)
}
