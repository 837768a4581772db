package store

import "ucrfood/internal/platform/config"

// Need selects the backends a process wants opened
type Need struct {
	PG    bool
	CH    bool
	Mongo bool
}

// FromConfig builds a Config from the SERVICE_PGSQL_, SERVICE_CLICKHOUSE_ and SERVICE_MONGO_ scopes
// a needed backend without its url panics, ClickHouse is optional and opens only when DBURL is set
func FromConfig(root config.Conf, app, role string, need Need) Config {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	mgCfg := root.Prefix("SERVICE_MONGO_")

	c := Config{AppName: app, Role: role}
	if need.PG {
		c.PG = PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		}
	}
	if u := chCfg.MayString("DBURL", ""); need.CH && u != "" {
		c.CH = CHConfig{Enabled: true, URL: u}
	}
	if need.Mongo {
		c.Mongo = MongoConfig{
			Enabled:  true,
			URI:      mgCfg.MustString("URI"),
			Database: mgCfg.MayString("DB", app),
			MaxPool:  uint64(mgCfg.MayInt("MAX_POOL", 0)),
		}
	}
	return c
}
