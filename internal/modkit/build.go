package modkit

import "net/http"

// Built is the resolved option set a module reads at construction
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Build applies opts and returns a copy safe to keep
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		if o != nil {
			o(&c)
		}
	}
	return Built{
		Name:   c.name,
		Prefix: c.prefix,
		Mw:     append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:  c.ports,
	}
}

// InjectedAs returns the injected ports when they are a T
func InjectedAs[T any](b Built) (T, bool) {
	v, ok := b.Ports.(T)
	return v, ok
}
