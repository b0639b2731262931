package handlers

import (
	"net/http"
	"strconv"

	mw "github.com/agrovia/farmstead/internal/http/middleware"
	"github.com/agrovia/farmstead/internal/service"
	"github.com/agrovia/farmstead/pkg/config"
)

type Handlers struct {
	creds  service.CredentialService
	resets service.ResetService
	otp    service.OTPService
	config *config.Config
}

func New(
	creds service.CredentialService,
	resets service.ResetService,
	otp service.OTPService,
	config *config.Config,
) *Handlers {
	return &Handlers{
		creds:  creds,
		resets: resets,
		otp:    otp,
		config: config,
	}
}

func (h *Handlers) setSessionCookie(w http.ResponseWriter, sid string) {
	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookieName,
		Value:    sid,
		Path:     "/",
		MaxAge:   int(h.config.Auth.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *Handlers) clearSessionCookie(w http.ResponseWriter) {
	// MaxAge < 0 serializes as Max-Age=0, which tells the browser to
	// drop the cookie immediately.
	http.SetCookie(w, &http.Cookie{
		Name:     mw.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.IsProduction(),
		SameSite: http.SameSiteStrictMode,
	})
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
