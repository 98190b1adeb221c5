// Package bookingtest provides an in-memory booking.Repository for tests.
package bookingtest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/appointment-booking/internal/booking"
	"github.com/hackgods/appointment-booking/internal/notify"
)

type MemoryRepository struct {
	mu           sync.Mutex
	users        []booking.User
	appointments []booking.Appointment

	// Err, when set, is returned by every operation.
	Err error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) CreateUser(_ context.Context, u booking.User) (*booking.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	r.users = append(r.users, u)
	return &u, nil
}

func (r *MemoryRepository) CreateAppointment(_ context.Context, a booking.Appointment) (*booking.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	r.appointments = append(r.appointments, a)
	return &a, nil
}

func (r *MemoryRepository) GetAppointmentByID(_ context.Context, id string) (*booking.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	for _, a := range r.appointments {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, booking.ErrAppointmentNotFound
}

func (r *MemoryRepository) ListAppointments(context.Context) ([]booking.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]booking.Appointment, len(r.appointments))
	copy(out, r.appointments)
	return out, nil
}

func (r *MemoryRepository) Ping(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Err
}

// Users returns a snapshot of stored users.
func (r *MemoryRepository) Users() []booking.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]booking.User, len(r.users))
	copy(out, r.users)
	return out
}

// Appointments returns a snapshot of stored appointments.
func (r *MemoryRepository) Appointments() []booking.Appointment {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]booking.Appointment, len(r.appointments))
	copy(out, r.appointments)
	return out
}

// Dispatcher records dispatched messages synchronously.
type Dispatcher struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (d *Dispatcher) Dispatch(msg notify.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, msg)
}

func (d *Dispatcher) Messages() []notify.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]notify.Message, len(d.messages))
	copy(out, d.messages)
	return out
}
