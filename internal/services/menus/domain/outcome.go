package domain

import (
	"time"
)

// Status is the per task result of a pipeline run
type Status string

// Task statuses
const (
	StatusChanged     Status = "changed"
	StatusUnchanged   Status = "unchanged"
	StatusUnreachable Status = "unreachable"
	StatusInvalid     Status = "invalid"
	StatusPageFormat  Status = "page_format"
	StatusCanceled    Status = "canceled"
)

// Statuses lists every status in report order
var Statuses = []Status{
	StatusChanged, StatusUnchanged, StatusUnreachable, StatusInvalid, StatusPageFormat, StatusCanceled,
}

// Outcome is what one task produced, Record is set only for StatusChanged
type Outcome struct {
	URL     string
	Status  Status
	Hash    string
	Record  *MenuRecord
	Err     error
	Elapsed time.Duration
}

// Batch is the aggregate of one RunAll call, both slices are unordered
type Batch struct {
	Records  []MenuRecord
	Outcomes []Outcome
}

// Counts tallies outcomes by status
func (b Batch) Counts() map[Status]int {
	out := make(map[Status]int, len(Statuses))
	for _, o := range b.Outcomes {
		out[o.Status]++
	}
	return out
}

// RunSummary reports one ingest run
type RunSummary struct {
	RunID        string         `json:"run_id"`
	StartedAt    time.Time      `json:"started_at"`
	Elapsed      time.Duration  `json:"elapsed_ns"`
	Tasks        int            `json:"tasks"`
	Counts       map[Status]int `json:"counts"`
	Upserted     int            `json:"upserted"`
	Inserted     int            `json:"inserted"`
	UpsertFailed int            `json:"upsert_failed"`
	Canceled     bool           `json:"canceled"`
	Failures     []TaskFailure  `json:"failures,omitempty"`
}

// TaskFailure is one task or upsert that did not succeed
type TaskFailure struct {
	URL    string `json:"url"`
	Status Status `json:"status"`
	Error  string `json:"error"`
}
