package handler

import (
	"net/http"

	"github.com/go-blog-nosql/internal/application/auth"
	"github.com/go-blog-nosql/internal/application/otp"
	"github.com/go-blog-nosql/internal/domain"
	"github.com/go-blog-nosql/internal/pkg/validate"
)

// AuthHandler handles signup and email verification.
type AuthHandler struct {
	auth auth.Service
	otp  otp.Service
}

func NewAuthHandler(authSvc auth.Service, otpSvc otp.Service) *AuthHandler {
	return &AuthHandler{auth: authSvc, otp: otpSvc}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.auth.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "Server error while Signup")
		return
	}
	writeOK(w, "Signup successful, please check your email for the OTP.", u)
}

func (h *AuthHandler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeServiceError(w, err, "Server Error While Verifying User")
		return
	}
	if err := h.otp.Verify(r.Context(), req.Email, req.OTP); err != nil {
		writeServiceError(w, err, "Server Error While Verifying User")
		return
	}
	writeOK(w, "User's Email Verified", nil)
}

func (h *AuthHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.ResendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(req); err != nil {
		writeServiceError(w, err, "Error while Resending-Otp")
		return
	}
	if err := h.otp.Resend(r.Context(), req.Email); err != nil {
		writeServiceError(w, err, "Error while Resending-Otp")
		return
	}
	writeOK(w, "OTP sent again", nil)
}
