package booking

import (
	"encoding/json"
	"fmt"
	"time"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a raw value onto the closed role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RolePatient, RoleDoctor, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

func (r Role) MarshalJSON() ([]byte, error) {
	if _, err := ParseRole(string(r)); err != nil {
		return nil, err
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON leaves the role empty for "" and null so callers can apply
// their default.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRole, data)
	}
	if s == "" {
		*r = ""
		return nil
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ParseStatus maps a raw value onto the closed status set.
func ParseStatus(s string) (AppointmentStatus, error) {
	switch AppointmentStatus(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return AppointmentStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

func (st AppointmentStatus) MarshalJSON() ([]byte, error) {
	if _, err := ParseStatus(string(st)); err != nil {
		return nil, err
	}
	return json.Marshal(string(st))
}

func (st *AppointmentStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidStatus, data)
	}
	parsed, err := ParseStatus(s)
	if err != nil {
		return err
	}
	*st = parsed
	return nil
}

type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Role      Role
	CreatedAt time.Time
}

// Appointment references users by id only; the stores never check that
// PatientID or DoctorID exist.
type Appointment struct {
	ID        string
	PatientID string
	DoctorID  string
	Date      time.Time
	Status    AppointmentStatus
	CreatedAt time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role // empty means patient
}

type BookInput struct {
	PatientID string
	DoctorID  string
	Date      time.Time
}
