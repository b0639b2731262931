package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/agrovia/farmstead/internal/http/response"
)

// SendOTP emails a fresh verification code, replacing any outstanding
// one for the address.
func (h *Handlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	if err := h.otp.SendOTP(r.Context(), req.Email); err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"message": "Verification code sent",
	})
}

// VerifyOTP checks a presented code. A correct code is consumed; a wrong
// one can be retried.
func (h *Handlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	verified, err := h.otp.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"verified": verified})
}
