package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/api"
	"github.com/hackgods/appointment-booking/internal/booking"
	"github.com/hackgods/appointment-booking/internal/booking/bookingtest"
	"github.com/hackgods/appointment-booking/internal/config"
)

func newTestSimulator(baseURL string, doctors, patients int) *Simulator {
	return &Simulator{
		config: SimConfig{
			APIBaseURL:   baseURL,
			SeedDoctors:  doctors,
			SeedPatients: patients,
			SeedBackoff:  5 * time.Millisecond,
			SeedAttempts: 50,
		},
		pool:   &DataPool{},
		client: &http.Client{Timeout: 5 * time.Second},
		log:    zap.NewNop(),
	}
}

func TestSeedWaitsOutRateLimit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	repo := bookingtest.NewMemoryRepository()
	svc := booking.NewService(repo, &bookingtest.Dispatcher{}, config.Config{}, zap.NewNop())
	srv := httptest.NewServer(api.NewRouter(api.RouterConfig{
		Service:         svc,
		RegisterLimiter: api.NewRateLimiter(ctx, 50, 2),
		Logger:          zap.NewNop(),
	}))
	t.Cleanup(srv.Close)

	sim := newTestSimulator(srv.URL, 2, 8)
	if err := sim.Seed(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if len(sim.pool.doctors) != 2 || len(sim.pool.patients) != 8 {
		t.Errorf("pool: %d doctors, %d patients", len(sim.pool.doctors), len(sim.pool.patients))
	}
	if got := len(repo.Users()); got != 10 {
		t.Errorf("stored users: got %d want 10", got)
	}
}

func TestSeedStopsOnServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	sim := newTestSimulator(srv.URL, 1, 1)
	if err := sim.Seed(context.Background()); err == nil {
		t.Fatal("expected seed to fail")
	}
	if calls != 1 {
		t.Errorf("server errors are not retried: got %d calls", calls)
	}
}

func TestSeedGivesUpWhenAlwaysThrottled(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	sim := newTestSimulator(srv.URL, 1, 1)
	sim.config.SeedAttempts = 3
	if err := sim.Seed(context.Background()); err == nil {
		t.Fatal("expected seed to fail")
	}
	if calls != 3 {
		t.Errorf("attempts: got %d want 3", calls)
	}
}

func TestRecordByStatus(t *testing.T) {
	var om OperationMetrics
	for _, status := range []int{http.StatusCreated, http.StatusOK, http.StatusTooManyRequests, http.StatusInternalServerError, 0} {
		om.Record(time.Millisecond, status)
	}

	if om.Total != 5 || om.Success != 2 || om.Throttled != 1 || om.Error != 2 {
		t.Errorf("counts: total=%d success=%d throttled=%d error=%d", om.Total, om.Success, om.Throttled, om.Error)
	}
}
