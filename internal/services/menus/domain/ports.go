package domain

import (
	"context"
	"time"
)

// Fetcher gets one page, failures carry ErrorCodeUnreachable unless ctx was canceled
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Parser turns page bytes into ordered sections, structural problems carry ErrorCodePageFormat
type Parser interface {
	Parse(raw []byte, contentType string) ([]MenuSection, error)
}

// Store persists menu records keyed by location number and menu date
type Store interface {
	// Ensure creates tables or collections and indexes
	Ensure(ctx context.Context) error

	// KnownHashes returns the stored digest of every key that exists
	KnownHashes(ctx context.Context, keys []Key) (map[Key]string, error)

	// Upsert inserts rec or replaces the stored record with the same key
	// a replacement keeps the stored id and generation time and stamps update
	// the stored version is returned with inserted reporting which path ran
	Upsert(ctx context.Context, rec MenuRecord, now time.Time) (stored MenuRecord, inserted bool, err error)

	// Get returns one record or ErrorCodeNotFound
	Get(ctx context.Context, key Key) (MenuRecord, error)

	// ListByDate returns the records of menuDate ordered by location number
	ListByDate(ctx context.Context, menuDate string) ([]MenuRecord, error)

	// HashesWithin returns url and digest of records dated from..from+days
	HashesWithin(ctx context.Context, from time.Time, days int) ([]PageInfo, error)
}

// OutcomeSink records per task outcomes for analytics
type OutcomeSink interface {
	WriteOutcomes(ctx context.Context, runID string, at time.Time, outs []Outcome) error
}

// IngestPort runs ingestion, exposed to the api and the cli
type IngestPort interface {
	Ingest(ctx context.Context, tasks []FetchTask) (RunSummary, error)
	Recheck(ctx context.Context, from time.Time, days int) (RunSummary, error)
}

// ReaderPort serves stored menus
type ReaderPort interface {
	Get(ctx context.Context, key Key) (MenuRecord, error)
	ListByDate(ctx context.Context, menuDate string) ([]MenuRecord, error)
}
