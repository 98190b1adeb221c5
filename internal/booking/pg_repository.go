package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var id uuid.UUID
	var role string

	err := row.Scan(
		&id,
		&u.Name,
		&u.Email,
		&u.Password,
		&role,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.ID = id.String()
	if u.Role, err = ParseRole(role); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var id uuid.UUID
	var status string

	err := row.Scan(
		&id,
		&a.PatientID,
		&a.DoctorID,
		&a.Date,
		&status,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.ID = id.String()
	if a.Status, err = ParseStatus(status); err != nil {
		return nil, err
	}
	return &a, nil
}

// Interface methods

func (r *PgRepository) CreateUser(ctx context.Context, u User) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password, role, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id, name, email, password, role, created_at
	`, uuid.New(), u.Name, u.Email, u.Password, string(u.Role))

	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return created, nil
}

func (r *PgRepository) CreateAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient_id, doctor_id, date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING id, patient_id, doctor_id, date, status, created_at
	`, uuid.New(), a.PatientID, a.DoctorID, a.Date, string(a.Status))

	created, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return created, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id string) (*Appointment, error) {
	apptID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}

	row := r.pool.QueryRow(ctx, `
		SELECT id, patient_id, doctor_id, date, status, created_at
		FROM appointments
		WHERE id = $1
	`, apptID)
	return scanAppointment(row)
}

func (r *PgRepository) ListAppointments(ctx context.Context) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, doctor_id, date, status, created_at
		FROM appointments
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
