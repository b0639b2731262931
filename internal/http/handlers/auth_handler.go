package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/agrovia/farmstead/internal/domain"
	mw "github.com/agrovia/farmstead/internal/http/middleware"
	"github.com/agrovia/farmstead/internal/http/response"
)

// Register handles new producer sign-up.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	profile, err := h.creds.Register(r.Context(), &req)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Registration successful",
		"user":    profile,
	})
}

// Login authenticates and issues the session cookie.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	profile, session, err := h.creds.Login(r.Context(), &req)
	if err != nil {
		response.Error(w, err)
		return
	}

	h.setSessionCookie(w, session.SID)
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"user":    profile,
	})
}

// Logout deletes the session and clears the cookie. Logging out twice is
// fine.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	ac := mw.FromRequest(r)
	if ac == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	if err := h.creds.Logout(r.Context(), ac.SID); err != nil {
		response.Error(w, err)
		return
	}

	h.clearSessionCookie(w)
	response.JSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the caller's profile.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	ac := mw.FromRequest(r)
	if ac == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	profile, err := h.creds.GetProfile(r.Context(), ac.UserID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, profile)
}

// UpdateMe patches the caller's profile. Unknown sub-type values are
// dropped, not rejected.
func (h *Handlers) UpdateMe(w http.ResponseWriter, r *http.Request) {
	ac := mw.FromRequest(r)
	if ac == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	profile, err := h.creds.UpdateProfile(r.Context(), ac.UserID, &req)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, profile)
}

// DeleteAccount removes the caller's user row and session, then clears
// the cookie.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	ac := mw.FromRequest(r)
	if ac == nil {
		response.Unauthorized(w, "authentication required")
		return
	}

	if err := h.creds.DeleteAccount(r.Context(), ac.UserID, ac.SID); err != nil {
		response.Error(w, err)
		return
	}

	h.clearSessionCookie(w)
	response.JSON(w, http.StatusOK, map[string]string{"message": "Account deleted"})
}
