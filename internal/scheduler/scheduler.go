package scheduler

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DevidBilalov/CRMshit/internal/model"
)

// DefaultWorkers bounds the pool executing reminder callbacks.
const DefaultWorkers = 10

// Callback is invoked once per fired job with the job's customer id. Errors
// are logged and the job stays terminal; it is never re-fired.
type Callback func(customerID int) error

// Scheduler fires persisted one-shot jobs at or after their run time. Pending
// jobs survive restarts: the recovery sweep in Start fires jobs missed within
// their grace period immediately and discards the rest as expired.
type Scheduler struct {
	Store        *JobStore
	Callback     Callback
	Workers      int
	PollInterval time.Duration

	now      func() time.Time
	jobs     chan model.ReminderJob
	quit     chan struct{}
	pollDone chan struct{}
	wg       sync.WaitGroup
}

func New(store *JobStore, cb Callback) *Scheduler {
	return &Scheduler{
		Store:        store,
		Callback:     cb,
		Workers:      DefaultWorkers,
		PollInterval: time.Second,
		now:          time.Now,
		quit:         make(chan struct{}),
	}
}

// Schedule registers a one-shot job. An existing job with the same id is
// replaced; only the latest registration can fire.
func (s *Scheduler) Schedule(jobID string, customerID int, runAt time.Time, grace time.Duration) error {
	if err := s.Store.Upsert(jobID, customerID, runAt, grace); err != nil {
		return err
	}
	log.Info().
		Str("job_id", jobID).
		Int("customer_id", customerID).
		Time("run_at", runAt).
		Msg("reminder scheduled")
	return nil
}

// Cancel removes a pending job. A no-op when the job is absent or already
// terminal.
func (s *Scheduler) Cancel(jobID string) error {
	return s.Store.Cancel(jobID)
}

// Start runs the recovery sweep, spins up the worker pool, and begins polling
// for due jobs.
func (s *Scheduler) Start() {
	s.jobs = make(chan model.ReminderJob, s.Workers)
	s.pollDone = make(chan struct{})

	for i := 0; i < s.Workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	if err := s.sweep(s.now()); err != nil {
		log.Warn().Err(err).Msg("⚠️ reminder recovery sweep failed")
	}
	go s.poll()

	log.Info().Int("workers", s.Workers).Msg("reminder scheduler started")
}

// Stop halts polling and waits for in-flight callbacks to finish. Only valid
// after Start.
func (s *Scheduler) Stop() {
	close(s.quit)
	<-s.pollDone
	close(s.jobs)
	s.wg.Wait()
}

func (s *Scheduler) poll() {
	defer close(s.pollDone)

	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			if err := s.sweep(s.now()); err != nil {
				log.Warn().Err(err).Msg("⚠️ reminder sweep failed")
			}
		}
	}
}

// sweep claims every due job and hands it to the pool. Jobs missed past their
// grace period are discarded without running.
func (s *Scheduler) sweep(now time.Time) error {
	due, err := s.Store.Due(now)
	if err != nil {
		return err
	}

	for _, job := range due {
		if now.After(job.RunAt.Add(job.GracePeriod)) {
			if _, err := s.Store.MarkExpired(job.JobID); err != nil {
				log.Error().Err(err).Str("job_id", job.JobID).Msg("failed to expire job")
				continue
			}
			log.Info().
				Str("job_id", job.JobID).
				Time("run_at", job.RunAt).
				Msg("discarding reminder missed past grace period")
			continue
		}

		claimed, err := s.Store.MarkFired(job.JobID, now)
		if err != nil {
			log.Error().Err(err).Str("job_id", job.JobID).Msg("failed to claim job")
			continue
		}
		if !claimed {
			continue
		}

		select {
		case s.jobs <- job:
		case <-s.quit:
			return nil
		}
	}
	return nil
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for job := range s.jobs {
		s.run(job)
	}
}

// run executes one callback. Panics and errors are contained here so a bad
// callback cannot take down the pool or resurrect the job.
func (s *Scheduler) run(job model.ReminderJob) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("job_id", job.JobID).
				Msg("reminder callback panicked")
		}
	}()

	log.Info().Str("job_id", job.JobID).Int("customer_id", job.CustomerID).Msg("📩 firing reminder")
	if err := s.Callback(job.CustomerID); err != nil {
		log.Warn().
			Err(err).
			Str("job_id", job.JobID).
			Int("customer_id", job.CustomerID).
			Msg("⚠️ reminder callback failed")
	}
}
