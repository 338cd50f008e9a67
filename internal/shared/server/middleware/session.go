package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-checker/internal/sessions"
)

const (
	// SessionCookie holds the browser's session ID.
	SessionCookie = "resume_checker_session"
	sessionKey    = "session"
)

// Session binds every request to a per-browser session, issuing a cookie for
// new or expired sessions.
func Session(store *sessions.Store, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		sess, created := store.GetOrCreate(id)
		if created {
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     SessionCookie,
				Value:    sess.ID,
				Path:     "/",
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFromContext returns the session attached by Session.
func SessionFromContext(c *gin.Context) *sessions.Session {
	if c == nil {
		return nil
	}
	val, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	sess, _ := val.(*sessions.Session)
	return sess
}
