// cmd/crm/main.go
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/DevidBilalov/CRMshit/internal/controller"
	"github.com/DevidBilalov/CRMshit/internal/db"
	"github.com/DevidBilalov/CRMshit/internal/repository"
	"github.com/DevidBilalov/CRMshit/internal/scheduler"
	"github.com/DevidBilalov/CRMshit/internal/service"
)

func main() {
	initLogger()

	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("⚠️ No .env file found, relying on OS environment variables")
	}

	dbPath := envOr("CRM_DB_PATH", "customers.db")
	jobsPath := envOr("CRM_JOBS_PATH", dbPath)

	conn, err := db.Open(dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("failed to open customer store")
	}
	defer conn.Close()

	if err := db.EnsureSchema(conn); err != nil {
		log.Fatal().Err(err).Msg("failed to create customer schema")
	}
	if err := db.EnsureCreatedAtColumn(conn); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate customer schema")
	}

	// The job store defaults to the same file as the customer table but keeps
	// its own table and transactions.
	jobsConn := conn
	if jobsPath != dbPath {
		jobsConn, err = db.Open(jobsPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", jobsPath).Msg("failed to open job store")
		}
		defer jobsConn.Close()
	}

	jobStore := &scheduler.JobStore{DB: jobsConn}
	if err := jobStore.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to create job schema")
	}

	repo := &repository.CustomerRepository{DB: conn}
	svc := service.NewCustomerService(repo, nil, consoleNotifier{out: os.Stdout})

	sched := scheduler.New(jobStore, svc.HandleReminder)
	sched.Workers = envIntOr("CRM_WORKERS", scheduler.DefaultWorkers)
	sched.PollInterval = envDurationOr("CRM_POLL_INTERVAL", time.Second)
	svc.Scheduler = sched

	sched.Start()
	defer sched.Stop()

	log.Info().Msg("🚀 CRM ready")

	ctrl := controller.NewPromptController(svc, os.Stdin, os.Stdout)
	if err := ctrl.Run(); err != nil {
		log.Error().Err(err).Msg("prompt loop failed")
	}
}

func initLogger() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// consoleNotifier stands in for the desktop popup: reminders go to stdout.
type consoleNotifier struct {
	out io.Writer
}

func (n consoleNotifier) Notify(message string) error {
	_, err := fmt.Fprintln(n.out, "🔔 "+message)
	return err
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring invalid value")
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		log.Warn().Str("key", key).Str("value", v).Msg("ignoring invalid value")
	}
	return fallback
}
