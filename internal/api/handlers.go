package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/appointment-booking/internal/booking"
)

func registerHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeDecodeError(w, err)
			return
		}

		user, err := svc.RegisterUser(r.Context(), booking.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Role:     req.Role,
		})
		if err != nil {
			handleRegisterError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreatedResponse{Message: "user registered", ID: user.ID})
	}
}

func createAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateAppointmentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeDecodeError(w, err)
			return
		}

		var date time.Time
		if req.Date != "" {
			parsed, err := parseDate(req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", "date must be RFC 3339 or YYYY-MM-DD")
				return
			}
			date = parsed
		}

		appt, err := svc.BookAppointment(r.Context(), booking.BookInput{
			PatientID: req.PatientID,
			DoctorID:  req.DoctorID,
			Date:      date,
		})
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, CreatedResponse{Message: "appointment booked", ID: appt.ID})
	}
}

func listAppointmentsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointments, err := svc.ListAppointments(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]AppointmentResponse, 0, len(appointments))
		for _, a := range appointments {
			resp = append(resp, toAppointmentResponse(a))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func getAppointmentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appt, err := svc.GetAppointment(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			if errors.Is(err, booking.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func handleRegisterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, "invalid_role", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrMissingField):
		writeError(w, http.StatusBadRequest, "missing_field", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
