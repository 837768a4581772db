// Package urlfield reads named query parameters from task URLs
// upstream callers are inconsistent about casing (locationName vs locationname) so every lookup
// matches keys case-insensitively
package urlfield

import (
	"net/url"
	"strings"
)

// Get returns the first value bound to name in rawURL's query string
// ok is false when the parameter is missing or the URL does not parse
func Get(rawURL, name string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	return lookup(u.RawQuery, name)
}

// GetAll resolves several names at once and reports the ones that were missing
func GetAll(rawURL string, names ...string) (map[string]string, []string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return map[string]string{}, append([]string(nil), names...)
	}
	found := make(map[string]string, len(names))
	var missing []string
	for _, n := range names {
		if v, ok := lookup(u.RawQuery, n); ok {
			found[n] = v
			continue
		}
		missing = append(missing, n)
	}
	return found, missing
}

// lookup walks the raw query in order so the first occurrence wins regardless of key casing
func lookup(rawQuery, name string) (string, bool) {
	for rawQuery != "" {
		var pair string
		pair, rawQuery, _ = strings.Cut(rawQuery, "&")
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil || !strings.EqualFold(key, name) {
			continue
		}
		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		return val, true
	}
	return "", false
}

// Escape percent-encodes every byte outside [A-Za-z0-9_.~-], spaces become %20
func Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
