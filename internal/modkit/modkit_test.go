package modkit

import (
	"testing"

	phttp "ucrfood/internal/platform/net/http"
)

type stub struct {
	mounted bool
	ports   any
}

func (s *stub) MountRoutes(phttp.Router) { s.mounted = true }
func (s *stub) Ports() any               { return s.ports }
func (s *stub) Name() string             { return "stub" }

var _ Module = (*stub)(nil)

func TestBuilder_ReceivesDepsAndOptions(t *testing.T) {
	t.Parallel()

	var b Builder = func(_ Deps, opts ...Option) Module {
		return &stub{ports: Build(opts...).Prefix}
	}
	m := b(Deps{}, WithPrefix("/menus"))
	if p := m.Ports(); p != "/menus" {
		t.Fatalf("ports = %v", p)
	}
	m.MountRoutes(nil)
	if !m.(*stub).mounted {
		t.Fatal("MountRoutes not recorded")
	}
}
