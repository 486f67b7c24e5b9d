package handler

import (
	"errors"
	"net/http"

	"github.com/go-blog-nosql/internal/application/auth"
	"github.com/go-blog-nosql/internal/application/user"
	"github.com/go-blog-nosql/internal/domain"
	"github.com/go-blog-nosql/internal/transport/http/middleware"
)

// maxUploadBytes caps the update-profile multipart body.
const maxUploadBytes = 5 << 20

// UserHandler handles login and the caller's own profile.
type UserHandler struct {
	auth         auth.Service
	users        user.Service
	secureCookie bool
}

func NewUserHandler(authSvc auth.Service, userSvc user.Service, secureCookie bool) *UserHandler {
	return &UserHandler{auth: authSvc, users: userSvc, secureCookie: secureCookie}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "Server error while login",
			outcome{domain.ErrUserNotFound, "Email not Registered"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    res.Token,
		Path:     "/",
		Expires:  res.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	w.Header().Set("Authorization", "Bearer "+res.Token)
	writeJSON(w, http.StatusOK, LoginEnvelope{
		Success:   true,
		Message:   "Login Successfull",
		ID:        res.UserID,
		ProfileID: res.ProfileID,
		Token:     res.Token,
	})
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, middleware.MsgLoginRequired)
		return
	}
	p, err := h.users.GetProfile(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, err, "Server error while getting User's profile",
			outcome{domain.ErrNotFound, "User Profile not found"})
		return
	}
	writeOK(w, "User's profile fetched successfully", p)
}

// UpdateProfile accepts multipart fields firstName, lastName and image, all optional.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, middleware.MsgLoginRequired)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeInvalidPayload(w, "image must be at most 5MB")
		return
	}

	in := user.UpdateProfileInput{
		FirstName: formValue(r, "firstName"),
		LastName:  formValue(r, "lastName"),
	}
	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		in.Image = file
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		writeInvalidPayload(w, "image could not be read")
		return
	}

	p, err := h.users.UpdateProfile(r.Context(), claims.UserID, in)
	if err != nil {
		writeServiceError(w, err, "Server error while updating Profile",
			outcome{domain.ErrNotFound, "User Profile not found"},
			outcome{domain.ErrBadRequest, "image must be a jpeg, png, webp or gif"})
		return
	}
	writeOK(w, "Updated Profile Successfully", p)
}

// formValue returns nil when the field was not sent at all.
func formValue(r *http.Request, key string) *string {
	vals, ok := r.PostForm[key]
	if !ok || len(vals) == 0 {
		return nil
	}
	v := vals[0]
	return &v
}
