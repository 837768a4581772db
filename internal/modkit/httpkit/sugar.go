package httpkit

import (
	"net/http"

	phttp "ucrfood/internal/platform/net/http"
)

// Get mounts a body-less handler under GET
func Get(r Router, path string, h func(*http.Request) (any, error)) { r.Get(path, Call(h)) }

// Post mounts a body-less handler under POST
func Post(r Router, path string, h func(*http.Request) (any, error)) { r.Post(path, Call(h)) }

// PostJSON mounts a handler whose body is decoded and validated into T
// status is the success status, 0 means 200
func PostJSON[T any](r Router, path string, status int, h func(*http.Request, T) (any, error)) {
	phttp.PostJSON(r, path, status, h)
}
