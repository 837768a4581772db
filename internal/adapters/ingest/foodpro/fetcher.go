// Package foodpro talks to the FoodPro short menu site: page fetches and the locations file
package foodpro

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	perr "ucrfood/internal/platform/errors"

	"github.com/go-resty/resty/v2"
)

const (
	defaultTimeout      = 15 * time.Second
	defaultUserAgent    = "ucrfood-ingest"
	defaultMaxBytes     = 4 << 20
	defaultMaxRedirects = 10
)

// Options configures the Fetcher, zero fields take defaults
type Options struct {
	Timeout      time.Duration
	UserAgent    string
	MaxBytes     int64
	MaxRedirects int
}

// Page is one fetched response body
type Page struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher performs unauthenticated GETs against menu pages
type Fetcher struct {
	http     *resty.Client
	maxBytes int64
}

// NewFetcher builds a Fetcher on a fresh resty client
func NewFetcher(o Options) *Fetcher {
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUserAgent
	}
	if o.MaxBytes <= 0 {
		o.MaxBytes = defaultMaxBytes
	}
	if o.MaxRedirects <= 0 {
		o.MaxRedirects = defaultMaxRedirects
	}

	client := resty.New()
	client.SetTimeout(o.Timeout)
	client.SetHeader("User-Agent", o.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(o.MaxRedirects))

	return &Fetcher{http: client, maxBytes: o.MaxBytes}
}

// Fetch GETs url and returns its body
// transport failures and statuses >= 400 are ErrorCodeUnreachable, a canceled ctx is returned as is
func (f *Fetcher) Fetch(ctx context.Context, url string) (Page, error) {
	res, err := f.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Page{}, ctxErr
		}
		return Page{}, perr.Wrap(err, perr.ErrorCodeUnreachable, "fetch menu page")
	}
	body := res.RawBody()
	defer func() { _ = body.Close() }()

	if res.StatusCode() >= http.StatusBadRequest {
		_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
		return Page{}, perr.Unreachablef("fetch menu page: status %d", res.StatusCode())
	}

	raw, err := io.ReadAll(io.LimitReader(body, f.maxBytes+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Page{}, ctxErr
		}
		return Page{}, perr.Wrap(err, perr.ErrorCodeUnreachable, "read menu page")
	}
	if int64(len(raw)) > f.maxBytes {
		return Page{}, perr.Unreachablef("menu page larger than %d bytes", f.maxBytes)
	}

	return Page{
		URL:         url,
		StatusCode:  res.StatusCode(),
		ContentType: res.Header().Get("Content-Type"),
		Body:        raw,
	}, nil
}

// IsCanceled reports whether err came from the caller's context rather than the site
// the client's own timeout also wraps DeadlineExceeded but is coded ErrorCodeUnreachable
func IsCanceled(err error) bool {
	if err == nil || perr.IsCode(err, perr.ErrorCodeUnreachable) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
