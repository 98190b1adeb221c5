package booking

import (
	"context"
	"errors"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidStatus       = errors.New("invalid appointment status")
)

// UserStore persists user records. The returned user carries the
// store-generated id and creation time.
type UserStore interface {
	CreateUser(ctx context.Context, u User) (*User, error)
}

// AppointmentStore persists appointment records.
type AppointmentStore interface {
	CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error)
	GetAppointmentByID(ctx context.Context, id string) (*Appointment, error)

	// ListAppointments returns every record in store-native order.
	ListAppointments(ctx context.Context) ([]Appointment, error)
}

// Repository is everything the service needs from a storage driver.
type Repository interface {
	UserStore
	AppointmentStore

	Ping(ctx context.Context) error
}
