package modkit

import (
	"ucrfood/internal/modkit/repokit"
	"ucrfood/internal/platform/config"
	"ucrfood/internal/platform/logger"
	"ucrfood/internal/platform/store"
)

// Deps holds the platform handles passed to modules
// any store may be nil when its backend is not configured
type Deps struct {
	Log   logger.Logger
	Cfg   config.Conf
	PG    repokit.TxRunner
	CH    store.Clickhouse
	Mongo store.Documents
}

// FromStore fills the storage handles from an opened store
func FromStore(log logger.Logger, cfg config.Conf, st *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if st != nil {
		d.PG, d.CH, d.Mongo = st.PG, st.CH, st.Mongo
	}
	return d
}
