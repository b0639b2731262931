package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/agrovia/farmstead/internal/domain"
	"github.com/agrovia/farmstead/internal/http/response"
	"github.com/go-chi/chi/v5"
)

// AdminLogin authenticates against the admin credential table and
// returns a bearer token instead of a cookie.
func (h *Handlers) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	token, err := h.creds.AdminLogin(r.Context(), &req)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_in": int64(h.config.Auth.AdminTokenTTL.Seconds()),
	})
}

// ListUsers returns a page of user profiles (admin only).
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	profiles, err := h.creds.ListUsers(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, profiles)
}

// GetUser returns one user's profile (admin only).
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	profile, err := h.creds.GetUser(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, profile)
}

// DeleteUser removes a user (admin only).
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.creds.DeleteUser(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
