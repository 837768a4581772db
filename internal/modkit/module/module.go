// Package module holds the module contract and port lookups used by the cmd wiring
package module

import (
	phttp "ucrfood/internal/platform/net/http"
)

// Module mirrors modkit.Module so packages exporting their own ports avoid an import cycle
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
