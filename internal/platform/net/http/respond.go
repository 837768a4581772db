// Package http wraps chi behind a small Router and writes every reply in one JSON envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"

	perr "ucrfood/internal/platform/errors"
	pnet "ucrfood/internal/platform/net"
)

// Envelope is the body of every JSON reply; failures fill Code, Error and Field
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Field      string         `json:"field,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
}

func envelope(r *stdhttp.Request, status int) Envelope {
	return Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  pnet.RequestID(r.Context()),
	}
}

// JSON writes v with status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError writes err with the status its ErrorCode maps to
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	status := perr.HTTPStatus(err)
	wire := perr.WireFrom(err)
	env := envelope(r, status)
	env.Code, env.Error, env.Field = wire.Code, wire.Message, wire.Field
	JSON(w, status, env)
}

// Response is what return-style handlers produce; an error Body becomes an error reply
type Response struct {
	Status int
	Body   any
	Header stdhttp.Header
}

// Handle turns a return-style handler into a HandlerFunc
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) { h(r).write(w, r) }
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	for k, vs := range resp.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	if err, ok := resp.Body.(error); ok && err != nil {
		RespondError(w, r, err)
		return
	}
	switch resp.Status {
	case 0:
		resp.Status = stdhttp.StatusOK
	case stdhttp.StatusNoContent:
		w.WriteHeader(resp.Status)
		return
	}
	env := envelope(r, resp.Status)
	env.Data = resp.Body
	JSON(w, resp.Status, env)
}

func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

func Accepted(data any) Response { return Response{Status: stdhttp.StatusAccepted, Body: data} }

func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error replies with err mapped through its ErrorCode
func Error(err error) Response { return Response{Body: err} }
