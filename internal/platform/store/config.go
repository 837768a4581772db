package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string
	Role    string

	PG    PGConfig
	CH    CHConfig
	Mongo MongoConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	// boot knobs, zero means defaults
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled bool
	URL     string
}

// MongoConfig configures mongodb connectivity
type MongoConfig struct {
	Enabled  bool
	URI      string
	Database string
	MaxPool  uint64
}
