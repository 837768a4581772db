// Package modkit wires service modules to the shared platform deps and the router seam
package modkit

import (
	phttp "ucrfood/internal/platform/net/http"
)

// Module is the common surface for modules that mount routes and expose ports
type Module interface {
	// MountRoutes mounts HTTP routes under the provided router seam
	MountRoutes(r phttp.Router)
	// Ports returns the module's port set for cross wiring
	Ports() any
	Name() string
}

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module
