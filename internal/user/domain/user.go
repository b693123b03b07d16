package domain

import (
	"errors"
	"time"
)

// Role is the fixed role carried in access tokens and refresh sessions.
type Role string

const (
	RoleAttendee Role = "attendee"
	RoleManager  Role = "manager"
	RoleCore     Role = "core"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAttendee, RoleManager, RoleCore:
		return true
	}
	return false
}

// User is the core user entity.
type User struct {
	ID                string    `bson:"_id"`
	FirstName         string    `bson:"first_name"`
	LastName          string    `bson:"last_name"`
	Email             string    `bson:"email"`
	PhoneNumber       string    `bson:"phone_number"`
	UniversityName    string    `bson:"university_name"`
	UniversityUID     string    `bson:"university_uid"`
	GraduationYear    int       `bson:"graduation_year"`
	DegreeProgram     string    `bson:"degree_program"`
	Gender            string    `bson:"gender"`
	Role              Role      `bson:"role"`
	Hostel            string    `bson:"hostel,omitempty"`
	ProfilePictureURL string    `bson:"profile_picture_url,omitempty"`
	PasswordHash      string    `bson:"password_hash"`
	IsVerified        bool      `bson:"is_verified"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.UniversityUID == "" {
		return errors.New("university uid is required")
	}
	if u.FirstName == "" || u.LastName == "" {
		return errors.New("first and last name are required")
	}
	if u.GraduationYear < 2000 || u.GraduationYear > 2100 {
		return errors.New("graduation year out of range")
	}
	if u.Role == "" {
		u.Role = RoleAttendee
	}
	if !u.Role.Valid() {
		return errors.New("unknown role")
	}
	return nil
}
