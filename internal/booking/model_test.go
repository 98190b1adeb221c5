package booking

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"patient", "doctor", "admin"} {
		r, err := ParseRole(s)
		if err != nil || string(r) != s {
			t.Errorf("ParseRole(%q) = %q, %v", s, r, err)
		}
	}
	for _, s := range []string{"", "Doctor", "nurse"} {
		if _, err := ParseRole(s); !errors.Is(err, ErrInvalidRole) {
			t.Errorf("ParseRole(%q): expected ErrInvalidRole, got %v", s, err)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "cancelled"} {
		st, err := ParseStatus(s)
		if err != nil || string(st) != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, st, err)
		}
	}
	for _, s := range []string{"", "expired", "canceled"} {
		if _, err := ParseStatus(s); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("ParseStatus(%q): expected ErrInvalidStatus, got %v", s, err)
		}
	}
}

func TestRoleJSON(t *testing.T) {
	for _, in := range []string{`"doctor"`, `""`, `null`} {
		var r Role
		if err := json.Unmarshal([]byte(in), &r); err != nil {
			t.Errorf("unmarshal %s: %v", in, err)
		}
	}

	var r Role
	for _, in := range []string{`"nurse"`, `"Doctor"`, `7`} {
		if err := json.Unmarshal([]byte(in), &r); !errors.Is(err, ErrInvalidRole) {
			t.Errorf("unmarshal %s: expected ErrInvalidRole, got %v", in, err)
		}
	}

	out, err := json.Marshal(RoleAdmin)
	if err != nil || string(out) != `"admin"` {
		t.Errorf("marshal admin = %s, %v", out, err)
	}
	if _, err := json.Marshal(Role("nurse")); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("marshal nurse: expected ErrInvalidRole, got %v", err)
	}
}

func TestStatusJSON(t *testing.T) {
	var st AppointmentStatus
	if err := json.Unmarshal([]byte(`"confirmed"`), &st); err != nil || st != StatusConfirmed {
		t.Errorf("unmarshal confirmed = %q, %v", st, err)
	}
	for _, in := range []string{`"expired"`, `""`, `1`} {
		if err := json.Unmarshal([]byte(in), &st); !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("unmarshal %s: expected ErrInvalidStatus, got %v", in, err)
		}
	}

	out, err := json.Marshal(StatusPending)
	if err != nil || string(out) != `"pending"` {
		t.Errorf("marshal pending = %s, %v", out, err)
	}
	if _, err := json.Marshal(AppointmentStatus("expired")); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("marshal expired: expected ErrInvalidStatus, got %v", err)
	}
}
