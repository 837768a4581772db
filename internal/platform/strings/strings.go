// Package strings provides small slice and path helpers shared by modules
package strings

import std "strings"

// IfEmpty returns def if in is empty, otherwise returns in
// handy for keeping nil slices out of JSON as null
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// MustPrefix normalizes a mount path like /menus or /api/v1
// one leading slash and no trailing slash, panics when nothing is left after trimming
func MustPrefix(s string) string {
	s = "/" + std.Trim(std.TrimSpace(s), " /")
	if s == "/" {
		panic("mount prefix is required")
	}
	return s
}
