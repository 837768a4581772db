package ch

import (
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo returns a ClientInfo describing this process and role
// role examples: "api", "ingest"
func BuildClientInfo(role, tag string) clickhouse.ClientInfo {
	host, _ := os.Hostname()
	sha := vcsShortSHA()
	gover := runtime.Version()

	return clickhouse.ClientInfo{Products: []struct{ Name, Version string }{
		{Name: "ucrfood", Version: tidy(tag)},
		{Name: "role", Version: tidy(role)},
		{Name: "go", Version: gover},
		{Name: "commit", Version: sha},
		{Name: "host", Version: tidy(host)},
	}}
}

func vcsShortSHA() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}

// tidy keeps client info tokens free of spaces, clickhouse splits products on them
func tidy(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "none"
	}
	return strings.ReplaceAll(s, " ", "_")
}
