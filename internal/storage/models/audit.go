package models

import (
	"time"
)

// AuditLog represents an audit log entry
type AuditLog struct {
	ID           int64     `json:"id" db:"id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	Caller       string    `json:"caller" db:"caller"`
	Method       string    `json:"method" db:"method"`
	Path         string    `json:"path" db:"path"`
	Status       int       `json:"status" db:"status"`
	Subscription int       `json:"subscription" db:"subscription"`
	JobName      string    `json:"job_name" db:"job_name"`
	Result       string    `json:"result" db:"result"`
	Error        string    `json:"error,omitempty" db:"error"`
}
