package http

import (
	"net/http"

	"ucrfood/internal/platform/net/http/bind"
)

// GetJSON mounts a handler that reads no body and answers with a 200 envelope
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, Handle(func(req *http.Request) Response {
		out, err := h(req)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	}))
}

// PostJSON mounts a handler whose body is bound and validated into T
// status is used for the success envelope, 0 means 200
func PostJSON[T any](r Router, path string, status int, h func(*http.Request, T) (any, error)) {
	r.Post(path, Handle(func(req *http.Request) Response {
		in, err := bind.ParseJSON[T](req)
		if err != nil {
			return Error(err)
		}
		out, err := h(req, in)
		if err != nil {
			return Error(err)
		}
		return Response{Status: status, Body: out}
	}))
}
