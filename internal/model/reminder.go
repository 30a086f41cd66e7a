// internal/model/reminder.go
package model

import "time"

// JobStatus tracks the lifecycle of a reminder job. Every status except
// JobScheduled is terminal.
type JobStatus string

const (
	JobScheduled JobStatus = "scheduled"
	JobFired     JobStatus = "fired"
	JobExpired   JobStatus = "expired"
	JobCancelled JobStatus = "cancelled"
)

type ReminderJob struct {
	JobID       string        `db:"job_id" json:"job_id"`
	CustomerID  int           `db:"customer_id" json:"customer_id"`
	RunAt       time.Time     `db:"run_at" json:"run_at"`
	GracePeriod time.Duration `db:"grace_period_secs" json:"grace_period_secs"`
	Status      JobStatus     `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	FiredAt     *time.Time    `db:"fired_at" json:"fired_at,omitempty"`
}
