package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/agrovia/farmstead/internal/http/response"
)

// ForgotPassword starts the reset flow. The acknowledgement is the same
// whether or not the email went out.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		response.BadRequest(w, "Email is required")
		return
	}

	if err := h.resets.RequestReset(r.Context(), req.Email); err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"message": "Password reset email sent",
	})
}

// ResetPassword redeems a reset token. The token is single use: the
// record is gone once the password changes.
func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if err := h.resets.RedeemReset(r.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"message": "Password updated",
	})
}
