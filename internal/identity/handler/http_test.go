package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"horizon/backend/internal/audit"
	"horizon/backend/internal/identity/service"
	"horizon/backend/internal/security"
	"horizon/backend/internal/server/middleware"
	sessiondomain "horizon/backend/internal/session/domain"
	sessionrepo "horizon/backend/internal/session/repository"
	userdomain "horizon/backend/internal/user/domain"
	userrepo "horizon/backend/internal/user/repository"
)

type memUsers struct {
	users []*userdomain.User
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(_ context.Context, u *userdomain.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email || existing.UniversityUID == u.UniversityUID {
			return userrepo.ErrDuplicateUser
		}
	}
	m.users = append(m.users, u)
	return nil
}

type memSessions struct {
	sessions map[string]*sessiondomain.RefreshSession
}

func (m *memSessions) FindActive(_ context.Context, tokenHash string) (*sessiondomain.RefreshSession, error) {
	s, ok := m.sessions[tokenHash]
	if !ok || !s.Usable(time.Now().UTC()) {
		return nil, nil
	}
	return s, nil
}

func (m *memSessions) FindByUserAndDevice(_ context.Context, userID, deviceID string) (*sessiondomain.RefreshSession, error) {
	for _, s := range m.sessions {
		if s.UserID == userID && s.DeviceID == deviceID && !s.Revoked {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memSessions) Insert(_ context.Context, s *sessiondomain.RefreshSession) error {
	if _, exists := m.sessions[s.TokenHash]; exists {
		return sessionrepo.ErrDuplicateToken
	}
	m.sessions[s.TokenHash] = s
	return nil
}

func (m *memSessions) Revoke(_ context.Context, tokenHash string) error {
	if s, ok := m.sessions[tokenHash]; ok {
		s.Revoked = true
	}
	return nil
}

func (m *memSessions) Touch(_ context.Context, tokenHash string, at time.Time) error {
	if s, ok := m.sessions[tokenHash]; ok {
		s.LastUsedAt = &at
	}
	return nil
}

func newTestHandler(t *testing.T) *AuthHandler {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	require.NoError(t, err)
	svc := service.NewAuthService(
		&memUsers{},
		&memSessions{sessions: map[string]*sessiondomain.RefreshSession{}},
		security.NewHasher(bcrypt.MinCost),
		tokens,
		30*24*time.Hour,
	)
	return NewAuthHandler(svc, audit.NewRecorder(nil), true, 30*24*time.Hour)
}

const registerBody = `{
	"first_name": "Ada",
	"last_name": "Lovelace",
	"email": "ada@example.edu",
	"password": "correct-horse",
	"university_name": "Example University",
	"university_uid": "EX-1815",
	"graduation_year": 2027,
	"degree_program": "Mathematics"
}`

func doRegister(t *testing.T, h *AuthHandler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(registerBody))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	return rec
}

func doLogin(t *testing.T, h *AuthHandler, deviceID string) *httptest.ResponseRecorder {
	t.Helper()
	body := `{"email": "ada@example.edu", "password": "correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	if deviceID != "" {
		req.Header.Set(middleware.DeviceIDHeader, deviceID)
	}
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	return nil
}

func TestRegisterEndpoint(t *testing.T) {
	h := newTestHandler(t)
	rec := doRegister(t, h)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password", "response must not leak password material")

	var body userResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ada@example.edu", body.Email)
	assert.Equal(t, userdomain.RoleAttendee, body.Role)
	assert.NotEmpty(t, body.ID)
}

func TestRegisterEndpoint_Duplicate(t *testing.T) {
	h := newTestHandler(t)
	require.Equal(t, http.StatusCreated, doRegister(t, h).Code)
	assert.Equal(t, http.StatusConflict, doRegister(t, h).Code)
}

func TestRegisterEndpoint_BadBody(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.Register(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	h := newTestHandler(t)
	doRegister(t, h)
	rec := doLogin(t, h, "dev-1")

	require.Equal(t, http.StatusOK, rec.Code)

	var body tokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.AccessToken)
	assert.Equal(t, "bearer", body.TokenType)
	require.NotNil(t, body.EmailVerified)
	assert.False(t, *body.EmailVerified)

	c := refreshCookie(t, rec)
	require.NotNil(t, c, "login must set the refresh cookie")
	assert.NotEmpty(t, c.Value)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, refreshCookiePath, c.Path)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, int((30 * 24 * time.Hour).Seconds()), c.MaxAge)
	assert.NotContains(t, rec.Body.String(), c.Value, "refresh token must not appear in the body")
}

func TestLoginEndpoint_BadPassword(t *testing.T) {
	h := newTestHandler(t)
	doRegister(t, h)

	body := `{"email": "ada@example.edu", "password": "wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, refreshCookie(t, rec))
}

func TestRefreshEndpoint_RotatesCookie(t *testing.T) {
	h := newTestHandler(t)
	doRegister(t, h)
	login := doLogin(t, h, "dev-1")
	oldCookie := refreshCookie(t, login)
	require.NotNil(t, oldCookie)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(oldCookie)
	req.Header.Set(middleware.DeviceIDHeader, "dev-1")
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	newCookie := refreshCookie(t, rec)
	require.NotNil(t, newCookie)
	assert.NotEqual(t, oldCookie.Value, newCookie.Value, "refresh must rotate the cookie")

	// The old cookie is spent.
	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(oldCookie)
	req.Header.Set(middleware.DeviceIDHeader, "dev-1")
	rec = httptest.NewRecorder()
	h.Refresh(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshEndpoint_DeviceMismatch(t *testing.T) {
	h := newTestHandler(t)
	doRegister(t, h)
	login := doLogin(t, h, "dev-1")
	cookie := refreshCookie(t, login)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(cookie)
	req.Header.Set(middleware.DeviceIDHeader, "dev-2")
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	cleared := refreshCookie(t, rec)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0, "mismatch must clear the cookie")
}

func TestRefreshEndpoint_NoCookie(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	rec := httptest.NewRecorder()
	h.Refresh(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	h := newTestHandler(t)
	doRegister(t, h)
	login := doLogin(t, h, "dev-1")
	cookie := refreshCookie(t, login)
	require.NotNil(t, cookie)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.Logout(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cleared := refreshCookie(t, rec)
	require.NotNil(t, cleared)
	assert.Less(t, cleared.MaxAge, 0)

	// The revoked session cannot be refreshed.
	req = httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.AddCookie(cookie)
	req.Header.Set(middleware.DeviceIDHeader, "dev-1")
	rec = httptest.NewRecorder()
	h.Refresh(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Logout without a cookie is still OK.
	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec = httptest.NewRecorder()
	h.Logout(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
