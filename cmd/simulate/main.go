package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/logging"
)

type SimConfig struct {
	APIBaseURL    string
	Duration      time.Duration
	Workers       int
	RegisterRatio float64
	BookingRatio  float64
	ReadRatio     float64
	SeedPatients  int
	SeedDoctors   int
	SeedBackoff   time.Duration
	SeedAttempts  int
}

type DataPool struct {
	mu           sync.RWMutex
	patients     []string
	doctors      []string
	appointments []string
}

func (dp *DataPool) add(list *[]string, id string) {
	dp.mu.Lock()
	defer dp.mu.Unlock()
	*list = append(*list, id)
}

func (dp *DataPool) addUser(role, id string) {
	if role == "doctor" {
		dp.add(&dp.doctors, id)
		return
	}
	dp.add(&dp.patients, id)
}

func (dp *DataPool) pick(rng *rand.Rand, list *[]string) (string, bool) {
	dp.mu.RLock()
	defer dp.mu.RUnlock()
	if len(*list) == 0 {
		return "", false
	}
	return (*list)[rng.Intn(len(*list))], true
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Throttled int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

// Record counts one call by its HTTP status; 0 means the request never
// got a response.
func (om *OperationMetrics) Record(latency time.Duration, status int) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case status >= 200 && status < 300:
		atomic.AddInt64(&om.Success, 1)
	case status == http.StatusTooManyRequests:
		atomic.AddInt64(&om.Throttled, 1)
	default:
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, min, max, p50, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0, 0, 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)

	sort.Slice(latencies, func(i, j int) bool {
		return latencies[i] < latencies[j]
	})

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	avg = sum / time.Duration(len(latencies))
	min = latencies[0]
	max = latencies[len(latencies)-1]
	p50 = latencies[percentileIndex(len(latencies), 50)]
	p95 = latencies[percentileIndex(len(latencies), 95)]

	return avg, min, max, p50, p95
}

func percentileIndex(n, p int) int {
	idx := n * p / 100
	if idx >= n {
		idx = n - 1
	}
	return idx
}

type Metrics struct {
	Register OperationMetrics
	Booking  OperationMetrics
	List     OperationMetrics
	ReadByID OperationMetrics
}

type Simulator struct {
	config  SimConfig
	pool    *DataPool
	client  *http.Client
	metrics Metrics
	log     *zap.Logger
}

func main() {
	os.Exit(simulate())
}

func simulate() int {
	_ = godotenv.Load()

	log, err := logging.New(getEnv("APP_ENV", "dev"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	cfg := loadConfig()
	if err := validateConfig(cfg); err != nil {
		log.Error("invalid config", zap.Error(err))
		return 1
	}

	log.Info("simulator starting",
		zap.Duration("duration", cfg.Duration),
		zap.Int("workers", cfg.Workers),
		zap.Float64("register", cfg.RegisterRatio),
		zap.Float64("booking", cfg.BookingRatio),
		zap.Float64("read", cfg.ReadRatio),
	)

	sim := &Simulator{
		config: cfg,
		pool:   &DataPool{},
		client: &http.Client{Timeout: 10 * time.Second},
		log:    log,
	}

	if err := sim.Seed(context.Background()); err != nil {
		log.Error("seed users", zap.Error(err))
		return 1
	}

	sim.Run()
	sim.PrintReport()
	return 0
}

func loadConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:    getEnv("SIM_API_BASE_URL", "http://localhost:3000"),
		Duration:      getDuration("SIM_DURATION", 30*time.Second),
		Workers:       getInt("SIM_WORKERS", 10),
		RegisterRatio: getFloat("SIM_REGISTER_RATIO", 0.1),
		BookingRatio:  getFloat("SIM_BOOKING_RATIO", 0.5),
		ReadRatio:     getFloat("SIM_READ_RATIO", 0.4),
		SeedPatients:  getInt("SIM_SEED_PATIENTS", 50),
		SeedDoctors:   getInt("SIM_SEED_DOCTORS", 5),
		SeedBackoff:   getDuration("SIM_SEED_BACKOFF", 250*time.Millisecond),
		SeedAttempts:  getInt("SIM_SEED_ATTEMPTS", 20),
	}

	// Normalize ratios
	total := cfg.RegisterRatio + cfg.BookingRatio + cfg.ReadRatio
	if total > 0 {
		cfg.RegisterRatio /= total
		cfg.BookingRatio /= total
		cfg.ReadRatio /= total
	}

	return cfg
}

func validateConfig(cfg SimConfig) error {
	if cfg.Workers <= 0 {
		return fmt.Errorf("SIM_WORKERS must be > 0")
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("SIM_DURATION must be > 0")
	}
	if cfg.SeedPatients <= 0 || cfg.SeedDoctors <= 0 {
		return fmt.Errorf("SIM_SEED_PATIENTS and SIM_SEED_DOCTORS must be > 0")
	}
	if cfg.SeedAttempts <= 0 || cfg.SeedBackoff <= 0 {
		return fmt.Errorf("SIM_SEED_ATTEMPTS and SIM_SEED_BACKOFF must be > 0")
	}
	return nil
}

// Seed registers the initial patients and doctors the workers book between.
// The server rate limits registration, so a 429 is retried after a growing
// pause instead of failing the run.
func (s *Simulator) Seed(ctx context.Context) error {
	for i := 0; i < s.config.SeedDoctors; i++ {
		if err := s.seedUser(ctx, "doctor"); err != nil {
			return fmt.Errorf("register doctor %d: %w", i, err)
		}
	}
	for i := 0; i < s.config.SeedPatients; i++ {
		if err := s.seedUser(ctx, "patient"); err != nil {
			return fmt.Errorf("register patient %d: %w", i, err)
		}
	}
	s.log.Info("seeded users", zap.Int("doctors", s.config.SeedDoctors), zap.Int("patients", s.config.SeedPatients))
	return nil
}

func (s *Simulator) seedUser(ctx context.Context, role string) error {
	backoff := s.config.SeedBackoff
	for attempt := 1; ; attempt++ {
		id, status := s.post(ctx, "/register", newUserBody(role))
		switch {
		case status == http.StatusCreated:
			s.pool.addUser(role, id)
			return nil
		case status != http.StatusTooManyRequests:
			return fmt.Errorf("unexpected status %d", status)
		case attempt >= s.config.SeedAttempts:
			return fmt.Errorf("still rate limited after %d attempts", attempt)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		if backoff < 2*time.Second {
			backoff *= 2
		}
	}
}

func (s *Simulator) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Duration)
	defer cancel()

	s.log.Info("starting simulation", zap.Duration("duration", s.config.Duration), zap.Int("workers", s.config.Workers))

	var wg sync.WaitGroup
	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.worker(ctx, workerID)
		}(i)
	}

	wg.Wait()
	s.log.Info("simulation complete")
}

func (s *Simulator) worker(ctx context.Context, workerID int) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano() + int64(workerID)))

	for {
		select {
		case <-ctx.Done():
			return
		default:
			r := rng.Float64()
			switch {
			case r < s.config.RegisterRatio:
				s.register(ctx, "patient")
			case r < s.config.RegisterRatio+s.config.BookingRatio:
				s.doBooking(ctx, rng)
			case rng.Intn(2) == 0:
				s.doList(ctx)
			default:
				s.doReadByID(ctx, rng)
			}
		}
	}
}

type createdResponse struct {
	ID string `json:"id"`
}

// post returns the created id and the response status, 0 on transport errors.
func (s *Simulator) post(ctx context.Context, path string, body any) (string, int) {
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.APIBaseURL+path, bytes.NewReader(data))
	if err != nil {
		return "", 0
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", resp.StatusCode
	}

	var created createdResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", 0
	}
	return created.ID, resp.StatusCode
}

func (s *Simulator) get(ctx context.Context, path string) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIBaseURL+path, nil)
	if err != nil {
		return 0
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode
}

func newUserBody(role string) map[string]string {
	return map[string]string{
		"name":     gofakeit.Name(),
		"email":    gofakeit.Email(),
		"password": gofakeit.Password(true, true, true, false, false, 12),
		"role":     role,
	}
}

func (s *Simulator) register(ctx context.Context, role string) {
	start := time.Now()
	id, status := s.post(ctx, "/register", newUserBody(role))
	s.metrics.Register.Record(time.Since(start), status)

	if status == http.StatusCreated {
		s.pool.addUser(role, id)
	}
}

func (s *Simulator) doBooking(ctx context.Context, rng *rand.Rand) {
	patientID, ok := s.pool.pick(rng, &s.pool.patients)
	if !ok {
		return
	}
	doctorID, ok := s.pool.pick(rng, &s.pool.doctors)
	if !ok {
		return
	}

	date := time.Now().Add(time.Duration(rng.Intn(90*24)) * time.Hour).UTC()

	start := time.Now()
	id, status := s.post(ctx, "/appointments", map[string]string{
		"patientId": patientID,
		"doctorId":  doctorID,
		"date":      date.Format(time.RFC3339),
	})
	s.metrics.Booking.Record(time.Since(start), status)

	if status == http.StatusCreated {
		s.pool.add(&s.pool.appointments, id)
	}
}

func (s *Simulator) doList(ctx context.Context) {
	start := time.Now()
	status := s.get(ctx, "/appointments")
	s.metrics.List.Record(time.Since(start), status)
}

func (s *Simulator) doReadByID(ctx context.Context, rng *rand.Rand) {
	id, ok := s.pool.pick(rng, &s.pool.appointments)
	if !ok {
		return
	}

	start := time.Now()
	status := s.get(ctx, "/appointments/"+id)
	s.metrics.ReadByID.Record(time.Since(start), status)
}

func (s *Simulator) PrintReport() {
	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("SIMULATION REPORT")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Printf("Duration: %s\n", s.config.Duration)
	fmt.Printf("Workers: %d\n", s.config.Workers)
	fmt.Println()

	printOperationReport("Register", &s.metrics.Register)
	printOperationReport("Booking", &s.metrics.Booking)
	printOperationReport("List", &s.metrics.List)
	printOperationReport("Read by ID", &s.metrics.ReadByID)
}

func printOperationReport(name string, om *OperationMetrics) {
	total := atomic.LoadInt64(&om.Total)
	if total == 0 {
		return
	}

	success := atomic.LoadInt64(&om.Success)
	throttled := atomic.LoadInt64(&om.Throttled)
	failed := atomic.LoadInt64(&om.Error)

	avg, min, max, p50, p95 := om.Stats()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, float64(success)/float64(total)*100)
	if throttled > 0 {
		fmt.Printf("  Rate limited: %d (%.1f%%)\n", throttled, float64(throttled)/float64(total)*100)
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, float64(failed)/float64(total)*100)
	}
	fmt.Printf("  Latency: avg=%s min=%s max=%s p50=%s p95=%s\n",
		avg.Round(time.Millisecond), min.Round(time.Millisecond), max.Round(time.Millisecond),
		p50.Round(time.Millisecond), p95.Round(time.Millisecond))
	fmt.Println()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
