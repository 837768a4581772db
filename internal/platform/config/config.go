// Package config reads application settings from the environment with an optional INI overlay
//
// Keys are flat upper case names such as SERVICE_PGSQL_DBURL. An INI file maps onto the same
// names by joining section and key, so [SERVICE_PGSQL] DBURL=... resolves as SERVICE_PGSQL_DBURL.
// The environment always wins over the file.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"ucrfood/internal/platform/logger"

	"gopkg.in/ini.v1"
)

// Conf is a namespaced view over settings (e.g., "CORE_MENUS_", "SERVICE_PGSQL_")
// Use New() for global access, or Prefix("CORE_MENUS_") for module scopes.
type Conf struct {
	prefix  string
	overlay map[string]string
}

// New creates a root Conf backed by the environment only
func New() Conf { return Conf{} }

// Load creates a root Conf whose fallbacks come from the INI file at path
// an empty path behaves like New
func Load(path string) (Conf, error) {
	if strings.TrimSpace(path) == "" {
		return New(), nil
	}
	f, err := ini.Load(path)
	if err != nil {
		return Conf{}, err
	}
	return fromFile(f), nil
}

// FromINI is Load for in-memory sources
func FromINI(data []byte) (Conf, error) {
	f, err := ini.Load(data)
	if err != nil {
		return Conf{}, err
	}
	return fromFile(f), nil
}

func fromFile(f *ini.File) Conf {
	m := map[string]string{}
	for _, sec := range f.Sections() {
		name := sec.Name()
		for _, k := range sec.Keys() {
			full := strings.ToUpper(k.Name())
			if name != ini.DefaultSection {
				full = strings.ToUpper(name) + "_" + full
			}
			m[full] = strings.TrimSpace(k.Value())
		}
	}
	return Conf{overlay: m}
}

// Prefix creates a child Conf with an additional prefix, e.g. cfg.Prefix("CORE_MENUS_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p, overlay: c.overlay} }

// key composes the fully-qualified setting name
func (c Conf) key(k string) string { return c.prefix + k }

// lookup returns the trimmed value of key, env first then overlay
func (c Conf) lookup(key string) string {
	k := c.key(key)
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return c.overlay[k]
}

func (c Conf) missing(key string) {
	logger.Get().Panic().Str("key", c.key(key)).Msg("missing required setting")
}

// mustParse panics when key is unset or parse rejects it; hint describes the accepted form
func mustParse[T any](c Conf, key, hint string, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		c.missing(key)
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.key(key)).Str("value", s).Msg("invalid setting, want " + hint)
	}
	return v
}

// mayParse falls back to def when key is unset, and warns before falling back when parse rejects it
func mayParse[T any](c Conf, key string, def T, parse func(string) (T, error)) T {
	s := c.lookup(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Interface("default", def).Msg("invalid setting, using default")
		return def
	}
	return v
}

func parseString(s string) (string, error) { return s, nil }

func parseInt64(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

func parseAbsURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err == nil && !u.IsAbs() {
		err = fmt.Errorf("%q is not absolute", s)
	}
	return u, err
}

func parsePort(s string) (string, error) {
	p, err := strconv.Atoi(s)
	if err == nil && (p < 1 || p > 65535) {
		err = fmt.Errorf("port %d out of range", p)
	}
	return ":" + s, err
}

func (c Conf) MustString(key string) string { return mustParse(c, key, "a value", parseString) }

func (c Conf) MustInt(key string) int { return mustParse(c, key, "an integer", strconv.Atoi) }

func (c Conf) MustBool(key string) bool { return mustParse(c, key, "a bool", strconv.ParseBool) }

// MustDuration takes Go duration syntax such as 250ms or 2s
func (c Conf) MustDuration(key string) time.Duration {
	return mustParse(c, key, "a duration (250ms, 2s, 1h)", time.ParseDuration)
}

func (c Conf) MustURL(key string) *url.URL { return mustParse(c, key, "an absolute URL", parseAbsURL) }

// MustPort returns a listen address such as ":4000"
func (c Conf) MustPort(key string) string { return mustParse(c, key, "a TCP port 1..65535", parsePort) }

// Require panics on the first of keys that is unset
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		if c.lookup(k) == "" {
			c.missing(k)
		}
	}
}

func (c Conf) MayString(key, def string) string { return mayParse(c, key, def, parseString) }

func (c Conf) MayInt(key string, def int) int { return mayParse(c, key, def, strconv.Atoi) }

// MayInt64 is MayInt for byte sizes and other wide values
func (c Conf) MayInt64(key string, def int64) int64 { return mayParse(c, key, def, parseInt64) }

func (c Conf) MayBool(key string, def bool) bool { return mayParse(c, key, def, strconv.ParseBool) }

func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return mayParse(c, key, def, time.ParseDuration)
}

// MayCSV returns the non-empty comma separated parts of key; def if none
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.lookup(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum ensures value is one of allowed (case-insensitive) and returns it lower cased
// returns def if empty; panics if invalid
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
