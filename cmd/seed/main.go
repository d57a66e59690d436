package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"gatherly/internal/events"
	"gatherly/internal/shared/config"
	"gatherly/internal/shared/database"
	"gatherly/internal/users"
	"gatherly/pkg/retry"
)

type Seeder struct {
	db           *database.DB
	userService  users.Service
	eventService events.Service
}

func main() {
	fmt.Println("Starting Gatherly database seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	storeRetry := retry.Config{
		Attempts:    cfg.Engine.TransientAttempts,
		BackoffBase: cfg.Engine.BackoffBase,
		BackoffCap:  cfg.Engine.BackoffCap,
		CallTimeout: cfg.Engine.StoreCallTimeout,
	}

	seeder := &Seeder{
		db:          db,
		userService: users.NewService(users.NewRepository(db.GetPostgreSQL(), storeRetry)),
		eventService: events.NewService(
			events.NewRepository(db.GetPostgreSQL(), storeRetry),
			nil,
			cfg.Redis.EventDetailTTL,
			cfg.Redis.EventListTTL,
		),
	}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(cfg); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed. Database is ready for testing.")
}

// CleanDatabase truncates all tables, registrations first so the event rows
// they reference go last.
func (s *Seeder) CleanDatabase(cfg *config.Config) error {
	tables := []string{
		cfg.Tables.Registrations,
		cfg.Tables.Events,
		cfg.Tables.Users,
	}

	for _, table := range tables {
		if err := s.db.GetPostgreSQL().Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SeedAll inserts a handful of users and events through the services, so the
// seeded data passes the same validation as API traffic.
func (s *Seeder) SeedAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	seedUsers := []users.CreateUserRequest{
		{UserID: "alice", Name: "Alice Johnson"},
		{UserID: "bob", Name: "Bob Martinez"},
		{UserID: "carol", Name: "Carol Chen"},
		{UserID: "dave", Name: "Dave Okafor"},
		{UserID: "erin", Name: "Erin Novak"},
	}
	for _, req := range seedUsers {
		if _, err := s.userService.CreateUser(ctx, req); err != nil {
			return fmt.Errorf("failed to seed user %s: %w", req.UserID, err)
		}
		fmt.Printf("  user %s\n", req.UserID)
	}

	seedEvents := []events.CreateEventRequest{
		{
			EventID:         "go-meetup-sept",
			Title:           "Go Meetup September",
			Description:     "Monthly Go meetup with lightning talks",
			Date:            "2026-09-10T18:30:00Z",
			Location:        "Community Hall A",
			Organizer:       "gophers-club",
			Capacity:        40,
			WaitlistEnabled: true,
		},
		{
			EventID:   "db-workshop",
			Title:     "Database Internals Workshop",
			Date:      "2026-09-22T09:00:00Z",
			Location:  "Lab 3",
			Organizer: "data-guild",
			Capacity:  12,
		},
		{
			EventID:         "launch-party",
			Title:           "Product Launch Party",
			Date:            "2026-10-05T19:00:00Z",
			Location:        "Rooftop Venue",
			Organizer:       "marketing",
			Capacity:        2,
			WaitlistEnabled: true,
		},
	}
	for _, req := range seedEvents {
		if _, err := s.eventService.CreateEvent(ctx, req); err != nil {
			return fmt.Errorf("failed to seed event %s: %w", req.EventID, err)
		}
		fmt.Printf("  event %s (capacity %d)\n", req.EventID, req.Capacity)
	}

	return nil
}
