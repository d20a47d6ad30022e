package model

import "time"

// Code is one submission: what to run and what to feed it.
type Code struct {
	Language   string `json:"language"`
	SourceCode string `json:"code"`
	Stdin      string `json:"stdin,omitempty"`
}

// ExecutionResult is the captured outcome of one sandbox run. ExitCode is nil
// when the runtime could not report one.
type ExecutionResult struct {
	Stdout          string `json:"stdout"`
	Stderr          string `json:"stderr"`
	ExitCode        *int   `json:"exitCode"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
}

// Failed builds the result returned when the submission could not be turned
// into a container run (for example Java source without a public class).
func Failed(stderr string) *ExecutionResult {
	code := 1
	return &ExecutionResult{Stderr: stderr, ExitCode: &code}
}

// ExitCodeOr returns the exit code, or def when none was reported.
func (r ExecutionResult) ExitCodeOr(def int) int {
	if r.ExitCode == nil {
		return def
	}
	return *r.ExitCode
}

type ExecutionStatus string

const (
	StatusPending   ExecutionStatus = "pending"
	StatusStarted   ExecutionStatus = "started"
	StatusCompleted ExecutionStatus = "completed"
	StatusFailed    ExecutionStatus = "failed"
)

// ExecutionRecord is the persisted audit entry for one execution.
type ExecutionRecord struct {
	ID              int64           `json:"id"`
	UserID          *int64          `json:"userId"`
	Language        string          `json:"language"`
	Code            string          `json:"code"`
	Stdin           string          `json:"stdin"`
	Status          ExecutionStatus `json:"status"`
	Stdout          string          `json:"stdout"`
	Stderr          string          `json:"stderr"`
	ExitCode        *int            `json:"exitCode"`
	ExecutionTimeMs int64           `json:"executionTimeMs"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Apply copies a finished result onto the record.
func (r *ExecutionRecord) Apply(res ExecutionResult) {
	r.Stdout = res.Stdout
	r.Stderr = res.Stderr
	r.ExitCode = res.ExitCode
	r.ExecutionTimeMs = res.ExecutionTimeMs
	r.Status = StatusCompleted
}

// Template is stored code that can be executed by id.
type Template struct {
	ID        int64     `json:"id" yaml:"-"`
	Title     string    `json:"title" yaml:"title"`
	Language  string    `json:"language" yaml:"language"`
	Code      string    `json:"code" yaml:"code"`
	Stdin     string    `json:"stdin,omitempty" yaml:"stdin"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
}
