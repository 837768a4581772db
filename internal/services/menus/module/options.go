package module

import (
	"time"

	"ucrfood/internal/adapters/ingest/foodpro"
	"ucrfood/internal/platform/config"
)

// Storage backends
const (
	BackendPG    = "pg"
	BackendMongo = "mongo"
)

// Options holds the menus module settings
type Options struct {
	Backend string

	Workers      int
	FetchTimeout time.Duration
	BatchTimeout time.Duration
	DBTimeout    time.Duration
	StmtTimeout  time.Duration

	Retries   int
	RetryBase time.Duration

	UserAgent string
	MaxBytes  int64

	// Locations is the path of the locations INI file, Days the length of the url block
	Locations string
	Days      int

	// Outcomes writes task outcomes to ClickHouse when a connection exists
	Outcomes bool
}

// FromConfig reads the options under CORE_MENUS_
func FromConfig(cfg config.Conf) Options {
	m := cfg.Prefix("CORE_MENUS_")
	return Options{
		Backend:      m.MayEnum("BACKEND", BackendPG, BackendPG, BackendMongo),
		Workers:      m.MayInt("WORKERS", 8),
		FetchTimeout: m.MayDuration("FETCH_TIMEOUT", 15*time.Second),
		BatchTimeout: m.MayDuration("BATCH_TIMEOUT", 0),
		DBTimeout:    m.MayDuration("DB_TIMEOUT", 30*time.Second),
		StmtTimeout:  m.MayDuration("STATEMENT_TIMEOUT", 10*time.Second),
		Retries:      m.MayInt("RETRIES", 3),
		RetryBase:    m.MayDuration("RETRY_BASE", 200*time.Millisecond),
		UserAgent:    m.MayString("USER_AGENT", "ucrfood-ingest"),
		MaxBytes:     m.MayInt64("MAX_BYTES", 4<<20),
		Locations:    m.MayString("LOCATIONS", "locations.ini"),
		Days:         m.MayInt("DAYS", foodpro.DefaultDays),
		Outcomes:     m.MayBool("OUTCOMES", true),
	}
}

// FetcherOptions returns the http client settings of the foodpro fetcher
func (o Options) FetcherOptions() foodpro.Options {
	return foodpro.Options{Timeout: o.FetchTimeout, UserAgent: o.UserAgent, MaxBytes: o.MaxBytes}
}
