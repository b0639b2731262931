package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/agrovia/farmstead/internal/http/response"
	"github.com/agrovia/farmstead/internal/service"
	"github.com/agrovia/farmstead/pkg/auth"
	"github.com/agrovia/farmstead/pkg/logger"
)

// SessionCookieName is the cookie carrying the opaque session id.
const SessionCookieName = "sid"

type ctxKey string

const authCtxKey ctxKey = "auth"

// AuthContext is the single result type every verifier produces; each
// route declares which variant it accepts instead of inspecting tokens
// inline.
type AuthContext struct {
	UserID  int64
	SID     string
	IsAdmin bool
}

func FromRequest(r *http.Request) *AuthContext {
	v := r.Context().Value(authCtxKey)
	if v == nil {
		return nil
	}
	return v.(*AuthContext)
}

// RequireSession gates regular-user routes on a live session cookie.
func RequireSession(creds service.CredentialService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				response.Unauthorized(w, "authentication required")
				return
			}

			session, err := creds.ResolveSession(r.Context(), cookie.Value)
			if err != nil {
				logger.ErrorContext(r.Context(), "session resolution failed", "error", err)
				response.Unauthorized(w, "authentication required")
				return
			}
			if session == nil {
				response.Unauthorized(w, "invalid or expired session")
				return
			}

			ac := &AuthContext{UserID: session.Payload.UserID, SID: session.SID}
			ctx := context.WithValue(r.Context(), authCtxKey, ac)
			ctx = context.WithValue(ctx, logger.UserIDKey, session.Payload.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates admin routes on a bearer JWT carrying the isAdmin
// claim. Admin tokens are stateless; there is no session to look up.
func RequireAdmin(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				response.Unauthorized(w, "missing or invalid authorization header")
				return
			}

			raw := strings.TrimPrefix(authz, "Bearer ")
			if _, err := auth.ParseAdminToken(raw, jwtSecret); err != nil {
				response.Unauthorized(w, "invalid token")
				return
			}

			ac := &AuthContext{IsAdmin: true}
			ctx := context.WithValue(r.Context(), authCtxKey, ac)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
