// Package handler exposes the auth flows over HTTP: register, login, refresh,
// and logout, including the refresh cookie contract.
package handler

import (
	"errors"
	"net/http"
	"time"

	"horizon/backend/internal/audit"
	"horizon/backend/internal/identity/service"
	"horizon/backend/internal/server/httpjson"
	"horizon/backend/internal/server/middleware"
	userdomain "horizon/backend/internal/user/domain"
)

const (
	refreshCookieName = "refresh_token"
	// The cookie is scoped to the auth routes so browsers never attach the
	// refresh token to ordinary API calls.
	refreshCookiePath = "/auth"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidToken       = "Invalid or expired token"
	msgDuplicateUser      = "Email or university ID already registered"
)

// AuthHandler serves the /auth endpoints.
type AuthHandler struct {
	auth         *service.AuthService
	recorder     *audit.Recorder
	cookieSecure bool
	refreshTTL   time.Duration
}

// NewAuthHandler returns an AuthHandler. recorder may wrap a nil dispatcher.
func NewAuthHandler(auth *service.AuthService, recorder *audit.Recorder, cookieSecure bool, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		recorder:     recorder,
		cookieSecure: cookieSecure,
		refreshTTL:   refreshTTL,
	}
}

type registerRequest struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Email             string `json:"email"`
	Password          string `json:"password"`
	PhoneNumber       string `json:"phone_number"`
	UniversityName    string `json:"university_name"`
	UniversityUID     string `json:"university_uid"`
	GraduationYear    int    `json:"graduation_year"`
	DegreeProgram     string `json:"degree_program"`
	Gender            string `json:"gender"`
	Hostel            string `json:"hostel"`
	ProfilePictureURL string `json:"profile_picture_url"`
}

// userResponse is the user body returned to clients. No password fields.
type userResponse struct {
	ID                string          `json:"id"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	Email             string          `json:"email"`
	PhoneNumber       string          `json:"phone_number"`
	UniversityName    string          `json:"university_name"`
	UniversityUID     string          `json:"university_uid"`
	GraduationYear    int             `json:"graduation_year"`
	DegreeProgram     string          `json:"degree_program"`
	Gender            string          `json:"gender"`
	Role              userdomain.Role `json:"role"`
	Hostel            string          `json:"hostel,omitempty"`
	ProfilePictureURL string          `json:"profile_picture_url,omitempty"`
	IsVerified        bool            `json:"is_verified"`
	CreatedAt         time.Time       `json:"created_at"`
}

func newUserResponse(u *userdomain.User) userResponse {
	return userResponse{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		PhoneNumber:       u.PhoneNumber,
		UniversityName:    u.UniversityName,
		UniversityUID:     u.UniversityUID,
		GraduationYear:    u.GraduationYear,
		DegreeProgram:     u.DegreeProgram,
		Gender:            u.Gender,
		Role:              u.Role,
		Hostel:            u.Hostel,
		ProfilePictureURL: u.ProfilePictureURL,
		IsVerified:        u.IsVerified,
		CreatedAt:         u.CreatedAt,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken   string    `json:"access_token"`
	TokenType     string    `json:"token_type"`
	ExpiresAt     time.Time `json:"expires_at"`
	EmailVerified *bool     `json:"email_verified,omitempty"`
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		Email:             req.Email,
		Password:          req.Password,
		PhoneNumber:       req.PhoneNumber,
		UniversityName:    req.UniversityName,
		UniversityUID:     req.UniversityUID,
		GraduationYear:    req.GraduationYear,
		DegreeProgram:     req.DegreeProgram,
		Gender:            req.Gender,
		Hostel:            req.Hostel,
		ProfilePictureURL: req.ProfilePictureURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrDuplicateUser):
			httpjson.Error(w, http.StatusConflict, msgDuplicateUser)
		default:
			httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}
	httpjson.Write(w, http.StatusCreated, newUserResponse(user))
}

// Login handles POST /auth/login. The refresh token travels only in the
// cookie; the response body carries the access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	deviceID := r.Header.Get(middleware.DeviceIDHeader)
	res, err := h.auth.Login(r.Context(), req.Email, req.Password, deviceID)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.recorder.Security(middleware.RequestInfo(r), "login_failed")
			httpjson.Error(w, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ri := middleware.RequestInfo(r)
	ri.ActorID = res.UserID
	ri.DeviceID = res.DeviceID
	h.recorder.Security(ri, "login")
	if res.NewDevice {
		h.recorder.NewDevice(ri, res.UserID, res.DeviceID)
	}

	h.setRefreshCookie(w, res.RefreshToken)
	verified := res.EmailVerified
	httpjson.Write(w, http.StatusOK, tokenResponse{
		AccessToken:   res.AccessToken,
		TokenType:     "bearer",
		ExpiresAt:     res.AccessExpiresAt,
		EmailVerified: &verified,
	})
}

// Refresh handles POST /auth/refresh. The old cookie is dead after this call
// whether it succeeds or fails.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	raw := h.refreshCookieValue(r)
	if raw == "" {
		httpjson.Error(w, http.StatusUnauthorized, msgInvalidToken)
		return
	}
	deviceID := r.Header.Get(middleware.DeviceIDHeader)
	res, err := h.auth.Refresh(r.Context(), raw, deviceID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDeviceMismatch):
			h.recorder.Security(middleware.RequestInfo(r), "refresh_device_mismatch")
			h.clearRefreshCookie(w)
			httpjson.Error(w, http.StatusUnauthorized, msgInvalidToken)
		case errors.Is(err, service.ErrInvalidRefreshToken):
			h.recorder.Security(middleware.RequestInfo(r), "refresh_rejected")
			h.clearRefreshCookie(w)
			httpjson.Error(w, http.StatusUnauthorized, msgInvalidToken)
		default:
			httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	ri := middleware.RequestInfo(r)
	ri.ActorID = res.UserID
	ri.DeviceID = res.DeviceID
	h.recorder.Security(ri, "refresh")

	h.setRefreshCookie(w, res.RefreshToken)
	httpjson.Write(w, http.StatusOK, tokenResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   res.AccessExpiresAt,
	})
}

// Logout handles POST /auth/logout. Revokes the presented session when the
// cookie exists; always clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	raw := h.refreshCookieValue(r)
	if raw != "" {
		if err := h.auth.Logout(r.Context(), raw); err != nil {
			httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		h.recorder.Security(middleware.RequestInfo(r), "logout")
	}
	h.clearRefreshCookie(w)
	httpjson.Write(w, http.StatusOK, map[string]string{"detail": "Logged out"})
}

func (h *AuthHandler) refreshCookieValue(r *http.Request) string {
	c, err := r.Cookie(refreshCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, raw string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    raw,
		Path:     refreshCookiePath,
		MaxAge:   int(h.refreshTTL / time.Second),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
