package scheduler

import (
	"database/sql"
	"time"

	appErrors "github.com/DevidBilalov/CRMshit/internal/errors"
	"github.com/DevidBilalov/CRMshit/internal/model"
)

const jobsSchema = `
	CREATE TABLE IF NOT EXISTS reminder_jobs (
		job_id            TEXT PRIMARY KEY,
		customer_id       INTEGER NOT NULL,
		run_at            TIMESTAMP NOT NULL,
		grace_period_secs INTEGER NOT NULL,
		status            TEXT NOT NULL DEFAULT 'scheduled',
		created_at        TIMESTAMP NOT NULL,
		fired_at          TIMESTAMP
	)
`

// JobStore persists reminder jobs in their own sqlite table, independent of
// the customers table. The two are never joined in one transaction.
type JobStore struct {
	DB *sql.DB
}

// Init creates the reminder_jobs table if it does not exist yet.
func (s *JobStore) Init() error {
	_, err := s.DB.Exec(jobsSchema)
	return err
}

// Upsert registers a one-shot job. Re-registering an existing job_id replaces
// its run time atomically and resets it to scheduled, so the old registration
// can never fire.
func (s *JobStore) Upsert(jobID string, customerID int, runAt time.Time, grace time.Duration) error {
	query := `
        INSERT INTO reminder_jobs (job_id, customer_id, run_at, grace_period_secs, status, created_at, fired_at)
        VALUES (?, ?, ?, ?, 'scheduled', ?, NULL)
        ON CONFLICT(job_id) DO UPDATE SET
            customer_id       = excluded.customer_id,
            run_at            = excluded.run_at,
            grace_period_secs = excluded.grace_period_secs,
            status            = 'scheduled',
            fired_at          = NULL
    `
	_, err := s.DB.Exec(query, jobID, customerID, runAt.UTC(), int64(grace/time.Second), time.Now().UTC())
	if err != nil {
		return appErrors.NewStore("upsert job", err)
	}
	return nil
}

// Cancel marks a still-scheduled job cancelled. Absent or terminal jobs are a
// no-op, not an error.
func (s *JobStore) Cancel(jobID string) error {
	_, err := s.DB.Exec(`UPDATE reminder_jobs SET status = 'cancelled' WHERE job_id = ? AND status = 'scheduled'`, jobID)
	if err != nil {
		return appErrors.NewStore("cancel job", err)
	}
	return nil
}

// GetByID fetches a job by id. Returns (nil, nil) when no row matches.
func (s *JobStore) GetByID(jobID string) (*model.ReminderJob, error) {
	query := `
        SELECT job_id, customer_id, run_at, grace_period_secs, status, created_at, fired_at
        FROM reminder_jobs
        WHERE job_id = ?
    `
	row := s.DB.QueryRow(query, jobID)

	job, err := scanJob(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // not found
		}
		return nil, appErrors.NewStore("get job", err)
	}
	return job, nil
}

// Due fetches all scheduled jobs whose run time has passed.
func (s *JobStore) Due(now time.Time) ([]model.ReminderJob, error) {
	query := `
        SELECT job_id, customer_id, run_at, grace_period_secs, status, created_at, fired_at
        FROM reminder_jobs
        WHERE status = 'scheduled' AND run_at <= ?
    `
	rows, err := s.DB.Query(query, now.UTC())
	if err != nil {
		return nil, appErrors.NewStore("list due jobs", err)
	}
	defer rows.Close()

	jobs := []model.ReminderJob{}
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, appErrors.NewStore("scan job", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, appErrors.NewStore("scan jobs", err)
	}
	return jobs, nil
}

// MarkFired claims a scheduled job. The status guard in the WHERE clause makes
// the claim atomic: only one caller can move a job out of scheduled, so a job
// can never fire twice.
func (s *JobStore) MarkFired(jobID string, now time.Time) (bool, error) {
	res, err := s.DB.Exec(
		`UPDATE reminder_jobs SET status = 'fired', fired_at = ? WHERE job_id = ? AND status = 'scheduled'`,
		now.UTC(), jobID,
	)
	if err != nil {
		return false, appErrors.NewStore("mark job fired", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, appErrors.NewStore("mark job fired", err)
	}
	return n > 0, nil
}

// MarkExpired discards a scheduled job that was missed past its grace period.
func (s *JobStore) MarkExpired(jobID string) (bool, error) {
	res, err := s.DB.Exec(
		`UPDATE reminder_jobs SET status = 'expired' WHERE job_id = ? AND status = 'scheduled'`,
		jobID,
	)
	if err != nil {
		return false, appErrors.NewStore("mark job expired", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, appErrors.NewStore("mark job expired", err)
	}
	return n > 0, nil
}

func scanJob(scan func(dest ...any) error) (*model.ReminderJob, error) {
	var job model.ReminderJob
	var graceSecs int64
	var firedAt sql.NullTime
	if err := scan(&job.JobID, &job.CustomerID, &job.RunAt, &graceSecs, &job.Status, &job.CreatedAt, &firedAt); err != nil {
		return nil, err
	}
	job.GracePeriod = time.Duration(graceSecs) * time.Second
	if firedAt.Valid {
		t := firedAt.Time
		job.FiredAt = &t
	}
	return &job, nil
}
