// Package service implements the credential and refresh-session flows:
// registration, login, refresh rotation, logout, and new-device recognition.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"horizon/backend/internal/security"
	sessiondomain "horizon/backend/internal/session/domain"
	userdomain "horizon/backend/internal/user/domain"
	userrepo "horizon/backend/internal/user/repository"
)

// Sentinel errors for the auth service; the handler maps them to HTTP statuses.
var (
	ErrDuplicateUser = errors.New("email or university uid already registered")
	// ErrInvalidCredentials covers bad email/password pairs. The handler sends
	// the same message as for bad tokens so callers cannot tell which check failed.
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrDeviceMismatch means the refresh token was presented from a device it
	// is not bound to. The session is revoked before this is returned; a
	// mismatch is treated as a theft signal, not a soft warning.
	ErrDeviceMismatch = errors.New("device mismatch")
	ErrValidation     = errors.New("validation failed")
)

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// SessionRepo is the minimal refresh-session repository needed by the auth service.
type SessionRepo interface {
	FindActive(ctx context.Context, tokenHash string) (*sessiondomain.RefreshSession, error)
	FindByUserAndDevice(ctx context.Context, userID, deviceID string) (*sessiondomain.RefreshSession, error)
	Insert(ctx context.Context, s *sessiondomain.RefreshSession) error
	Revoke(ctx context.Context, tokenHash string) error
	Touch(ctx context.Context, tokenHash string, at time.Time) error
}

// AuthService implements register, login, refresh rotation, and logout.
type AuthService struct {
	users      UserRepo
	sessions   SessionRepo
	hasher     *security.Hasher
	tokens     *security.TokenProvider
	refreshTTL time.Duration
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(users UserRepo, sessions SessionRepo, hasher *security.Hasher, tokens *security.TokenProvider, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		sessions:   sessions,
		hasher:     hasher,
		tokens:     tokens,
		refreshTTL: refreshTTL,
	}
}

// RegisterInput carries the registration payload. Password is hashed before
// anything is persisted and never stored raw.
type RegisterInput struct {
	FirstName         string
	LastName          string
	Email             string
	Password          string
	PhoneNumber       string
	UniversityName    string
	UniversityUID     string
	GraduationYear    int
	DegreeProgram     string
	Gender            string
	Hostel            string
	ProfilePictureURL string
}

// Register creates a user with the attendee role. Returns ErrDuplicateUser when
// the email or university uid is already taken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*userdomain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(in.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	}

	hashed, err := s.hasher.Hash([]byte(in.Password))
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	user := &userdomain.User{
		ID:                uuid.New().String(),
		FirstName:         strings.TrimSpace(in.FirstName),
		LastName:          strings.TrimSpace(in.LastName),
		Email:             email,
		PhoneNumber:       strings.TrimSpace(in.PhoneNumber),
		UniversityName:    strings.TrimSpace(in.UniversityName),
		UniversityUID:     strings.TrimSpace(in.UniversityUID),
		GraduationYear:    in.GraduationYear,
		DegreeProgram:     strings.TrimSpace(in.DegreeProgram),
		Gender:            strings.TrimSpace(in.Gender),
		Role:              userdomain.RoleAttendee,
		Hostel:            strings.TrimSpace(in.Hostel),
		ProfilePictureURL: strings.TrimSpace(in.ProfilePictureURL),
		PasswordHash:      hashed,
		IsVerified:        false,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, userrepo.ErrDuplicateUser) {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}
	return user, nil
}

// AuthResult holds the outcome of Login or Refresh.
type AuthResult struct {
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string // raw value; exists outside the client only here
	UserID          string
	Role            userdomain.Role
	DeviceID        string
	EmailVerified   bool
	NewDevice       bool
}

// Login authenticates with email/password, creates the first refresh session
// for this credential, and reports whether the device was previously unseen.
// The new-device check runs before the session insert; inserting first would
// make every login appear non-new.
func (s *AuthService) Login(ctx context.Context, email, password, deviceID string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		deviceID = uuid.New().String()
	}

	newDevice, err := s.IsNewDevice(ctx, user.ID, deviceID)
	if err != nil {
		return nil, err
	}

	rawRefresh, err := s.createSession(ctx, user.ID, user.Role, deviceID)
	if err != nil {
		return nil, err
	}
	accessToken, accessExp, err := s.tokens.IssueAccess(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:     accessToken,
		AccessExpiresAt: accessExp,
		RefreshToken:    rawRefresh,
		UserID:          user.ID,
		Role:            user.Role,
		DeviceID:        deviceID,
		EmailVerified:   user.IsVerified,
		NewDevice:       newDevice,
	}, nil
}

// Refresh validates the presented refresh token against the store, rotates it,
// and issues a new access/refresh pair.
//
// Rotation revokes the old record before inserting the new one. The two steps
// are not atomic; a crash in between costs the user a re-login but can never
// resurrect the old token.
func (s *AuthService) Refresh(ctx context.Context, rawToken, deviceID string) (*AuthResult, error) {
	sess, oldHash, err := s.validate(ctx, rawToken, deviceID)
	if err != nil {
		return nil, err
	}

	newRaw, err := s.rotate(ctx, oldHash, sess)
	if err != nil {
		return nil, err
	}
	accessToken, accessExp, err := s.tokens.IssueAccess(sess.UserID, sess.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:     accessToken,
		AccessExpiresAt: accessExp,
		RefreshToken:    newRaw,
		UserID:          sess.UserID,
		Role:            sess.Role,
		DeviceID:        sess.DeviceID,
	}, nil
}

// validate looks up the active session for the raw token and enforces device
// binding. A bound session presented from a different device is revoked on the
// spot. On success the session is touched.
func (s *AuthService) validate(ctx context.Context, rawToken, presentedDeviceID string) (*sessiondomain.RefreshSession, string, error) {
	if rawToken == "" {
		return nil, "", ErrInvalidRefreshToken
	}
	tokenHash := security.HashRefreshToken(rawToken)
	sess, err := s.sessions.FindActive(ctx, tokenHash)
	if err != nil {
		return nil, "", err
	}
	if sess == nil {
		return nil, "", ErrInvalidRefreshToken
	}
	now := time.Now().UTC()
	// The store filters on expiry too; re-check here so the protocol never
	// depends on the timeliness of the TTL purge.
	if !sess.Usable(now) {
		return nil, "", ErrInvalidRefreshToken
	}
	if sess.DeviceID != "" && presentedDeviceID != "" && sess.DeviceID != presentedDeviceID {
		if err := s.sessions.Revoke(ctx, tokenHash); err != nil {
			return nil, "", err
		}
		return nil, "", ErrDeviceMismatch
	}
	if err := s.sessions.Touch(ctx, tokenHash, now); err != nil {
		return nil, "", err
	}
	return sess, tokenHash, nil
}

// rotate retires the old record and stores a fresh session carrying forward
// the user, role, and device binding. Returns the new raw token.
func (s *AuthService) rotate(ctx context.Context, oldHash string, sess *sessiondomain.RefreshSession) (string, error) {
	if err := s.sessions.Revoke(ctx, oldHash); err != nil {
		return "", err
	}
	return s.insertSession(ctx, sess.UserID, sess.Role, sess.DeviceID)
}

func (s *AuthService) createSession(ctx context.Context, userID string, role userdomain.Role, deviceID string) (string, error) {
	return s.insertSession(ctx, userID, role, deviceID)
}

func (s *AuthService) insertSession(ctx context.Context, userID string, role userdomain.Role, deviceID string) (string, error) {
	raw, err := security.NewRefreshToken()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	sess := &sessiondomain.RefreshSession{
		TokenHash: security.HashRefreshToken(raw),
		UserID:    userID,
		Role:      role,
		DeviceID:  deviceID,
		ExpiresAt: now.Add(s.refreshTTL),
		Revoked:   false,
		CreatedAt: now,
	}
	if err := s.sessions.Insert(ctx, sess); err != nil {
		return "", err
	}
	return raw, nil
}

// Logout revokes the session for the presented refresh token. A missing token
// is an idempotent no-op, not an error.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, security.HashRefreshToken(rawToken))
}

// IsNewDevice reports whether the (user, device) pair has no prior non-revoked
// session. Advisory only: it drives a notification and never blocks login.
func (s *AuthService) IsNewDevice(ctx context.Context, userID, deviceID string) (bool, error) {
	existing, err := s.sessions.FindByUserAndDevice(ctx, userID, deviceID)
	if err != nil {
		return false, err
	}
	return existing == nil, nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	const simpleEmail = `^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`
	ok, _ := regexp.MatchString(simpleEmail, email)
	if !ok {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}
	return nil
}
