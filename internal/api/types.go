package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hackgods/appointment-booking/internal/booking"
)

type RegisterRequest struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Role     booking.Role `json:"role"`
}

type CreateAppointmentRequest struct {
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"`
}

type CreatedResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type AppointmentResponse struct {
	ID        string                    `json:"id"`
	PatientID string                    `json:"patientId"`
	DoctorID  string                    `json:"doctorId"`
	Date      time.Time                 `json:"date"`
	Status    booking.AppointmentStatus `json:"status"`
	CreatedAt time.Time                 `json:"createdAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a booking.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		PatientID: a.PatientID,
		DoctorID:  a.DoctorID,
		Date:      a.Date,
		Status:    a.Status,
		CreatedAt: a.CreatedAt,
	}
}

const maxBodyBytes = 1 << 20

var errZeroDate = errors.New("date is the zero time")

// parseDate accepts RFC 3339 timestamps and bare YYYY-MM-DD dates (UTC midnight).
// The zero time is rejected since it cannot be told apart from an absent date.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t, err = time.Parse(time.DateOnly, s)
		if err != nil {
			return time.Time{}, err
		}
	}
	if t.IsZero() {
		return time.Time{}, errZeroDate
	}
	return t, nil
}

// decodeJSON reads a capped request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// writeDecodeError maps a decodeJSON failure onto a response.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body exceeds 1 MiB")
	case errors.Is(err, booking.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "invalid_role", "role must be one of patient, doctor, admin")
	default:
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: "internal_error", Details: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
