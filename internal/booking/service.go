package booking

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/appointment-booking/internal/config"
	"github.com/hackgods/appointment-booking/internal/notify"
)

const (
	ActivationSubject = "Account Activation"
	ActivationBody    = "Please activate your account."
)

var ErrMissingField = errors.New("missing required field")

// Dispatcher hands a message off for delivery without waiting on it.
type Dispatcher interface {
	Dispatch(msg notify.Message)
}

type Service struct {
	repo       Repository
	dispatcher Dispatcher
	cfg        config.Config
	log        *zap.Logger
}

func NewService(repo Repository, dispatcher Dispatcher, cfg config.Config, log *zap.Logger) *Service {
	return &Service{
		repo:       repo,
		dispatcher: dispatcher,
		cfg:        cfg,
		log:        log,
	}
}

// RegisterUser stores a new user and queues the activation message.
// Name, email and password are accepted as given.
func (s *Service) RegisterUser(ctx context.Context, in RegisterInput) (*User, error) {
	role := in.Role
	if role == "" {
		role = RolePatient
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}

	password := in.Password
	if s.cfg.HashPasswords {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		password = string(hash)
	}

	user, err := s.repo.CreateUser(ctx, User{
		Name:     in.Name,
		Email:    in.Email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))

	s.dispatcher.Dispatch(notify.Message{
		To:      user.Email,
		Subject: ActivationSubject,
		Body:    ActivationBody,
	})

	return user, nil
}

// BookAppointment records a pending appointment. Patient and doctor ids are
// not resolved against the user store and no conflict check is made.
func (s *Service) BookAppointment(ctx context.Context, in BookInput) (*Appointment, error) {
	switch {
	case in.PatientID == "":
		return nil, fmt.Errorf("%w: patientId", ErrMissingField)
	case in.DoctorID == "":
		return nil, fmt.Errorf("%w: doctorId", ErrMissingField)
	case in.Date.IsZero():
		return nil, fmt.Errorf("%w: date", ErrMissingField)
	}

	appt, err := s.repo.CreateAppointment(ctx, Appointment{
		PatientID: in.PatientID,
		DoctorID:  in.DoctorID,
		Date:      in.Date,
		Status:    StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	s.log.Info("appointment booked",
		zap.String("appointment_id", appt.ID),
		zap.String("patient_id", appt.PatientID),
		zap.String("doctor_id", appt.DoctorID),
	)

	return appt, nil
}

// ListAppointments returns every appointment. The result is never nil.
func (s *Service) ListAppointments(ctx context.Context) ([]Appointment, error) {
	appointments, err := s.repo.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	if appointments == nil {
		appointments = []Appointment{}
	}
	return appointments, nil
}

func (s *Service) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// Ping reports whether the backing store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
