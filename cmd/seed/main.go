package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"

	"github.com/hackgods/appointment-booking/internal/booking"
	"github.com/hackgods/appointment-booking/internal/config"
	"github.com/hackgods/appointment-booking/internal/db"
	"github.com/hackgods/appointment-booking/internal/logging"
	"github.com/hackgods/appointment-booking/internal/notify"
)

func main() {
	os.Exit(seed())
}

func seed() int {
	doctors := flag.Int("doctors", 20, "number of doctors to register")
	patients := flag.Int("patients", 500, "number of patients to register")
	appointments := flag.Int("appointments", 1000, "number of appointments to book")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		return 1
	}

	log, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init error: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	log.Info("seed starting", zap.String("store", cfg.StoreDriver))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	repo, closeStore, err := db.OpenRepository(ctx, cfg)
	cancel()
	if err != nil {
		log.Error("store connection error", zap.Error(err))
		return 1
	}
	defer func() { _ = closeStore(context.Background()) }()

	// Seeded accounts are fake; activation mails only go to the log.
	dispatcher := notify.NewDispatcher(notify.NewLogNotifier(log.WithOptions(zap.IncreaseLevel(zap.WarnLevel))), time.Second, log)
	svc := booking.NewService(repo, dispatcher, cfg, log.WithOptions(zap.IncreaseLevel(zap.WarnLevel)))

	faker := gofakeit.New(uint64(time.Now().UnixNano()))

	doctorIDs, err := seedUsers(context.Background(), svc, faker, booking.RoleDoctor, *doctors)
	if err != nil {
		log.Error("seed doctors", zap.Error(err))
		return 1
	}
	log.Info("doctors seeded", zap.Int("count", len(doctorIDs)))

	patientIDs, err := seedUsers(context.Background(), svc, faker, booking.RolePatient, *patients)
	if err != nil {
		log.Error("seed patients", zap.Error(err))
		return 1
	}
	log.Info("patients seeded", zap.Int("count", len(patientIDs)))

	if err := seedAppointments(context.Background(), svc, faker, patientIDs, doctorIDs, *appointments); err != nil {
		log.Error("seed appointments", zap.Error(err))
		return 1
	}
	log.Info("appointments seeded", zap.Int("count", *appointments))

	_ = dispatcher.Wait(context.Background())
	log.Info("seed complete")
	return 0
}

func seedUsers(ctx context.Context, svc *booking.Service, faker *gofakeit.Faker, role booking.Role, count int) ([]string, error) {
	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		u, err := svc.RegisterUser(ctx, booking.RegisterInput{
			Name:     faker.Name(),
			Email:    faker.Email(),
			Password: faker.Password(true, true, true, false, false, 12),
			Role:     role,
		})
		if err != nil {
			return ids, err
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func seedAppointments(ctx context.Context, svc *booking.Service, faker *gofakeit.Faker, patientIDs, doctorIDs []string, count int) error {
	if count > 0 && (len(patientIDs) == 0 || len(doctorIDs) == 0) {
		return fmt.Errorf("need at least one patient and one doctor to book %d appointments", count)
	}

	now := time.Now()
	for i := 0; i < count; i++ {
		_, err := svc.BookAppointment(ctx, booking.BookInput{
			PatientID: patientIDs[faker.Number(0, len(patientIDs)-1)],
			DoctorID:  doctorIDs[faker.Number(0, len(doctorIDs)-1)],
			Date:      faker.DateRange(now, now.AddDate(0, 3, 0)),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
