// Package domain holds the menu ingestion types and the ports the service is written against
package domain

import (
	"net/url"
	"strings"
	"time"

	"ucrfood/internal/core/menuparse"
	"ucrfood/internal/core/urlfield"
	perr "ucrfood/internal/platform/errors"

	"github.com/google/uuid"
)

// Query parameter names every task url must carry, matched case-insensitively
const (
	FieldLocationName = "locationName"
	FieldLocationNum  = "locationNum"
	FieldDate         = "dtdate"
)

// Date layouts: the site takes MM/DD/YYYY, records store MM-DD-YYYY
const (
	URLDateLayout  = "01/02/2006"
	MenuDateLayout = "01-02-2006"
)

// FetchTask is one page to check, immutable once built by NewFetchTask
type FetchTask struct {
	url       string
	knownHash string
}

// NewFetchTask validates rawURL as an absolute http(s) url
// knownHash is the digest last stored for the page, empty means never seen
func NewFetchTask(rawURL, knownHash string) (FetchTask, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return FetchTask{}, perr.WithField(perr.Validationf("task url %q is not an absolute http url", rawURL), "url")
	}
	return FetchTask{url: rawURL, knownHash: strings.TrimSpace(knownHash)}, nil
}

// URL returns the page url
func (t FetchTask) URL() string { return t.url }

// KnownHash returns the last stored digest or ""
func (t FetchTask) KnownHash() string { return t.knownHash }

// WithKnownHash returns a copy of t carrying hash
func (t FetchTask) WithKnownHash(hash string) FetchTask {
	t.knownHash = hash
	return t
}

// Page is a fetched response body
type Page struct {
	Body        []byte
	ContentType string
}

// PageSnapshot is a page plus its digest, it lives for one pipeline run
type PageSnapshot struct {
	Raw         []byte
	ContentType string
	Hash        string
}

// MenuSection is one dining period of a page
type MenuSection = menuparse.Section

// Categories is the ordered category to items mapping of a section
type Categories = menuparse.Categories

// Location names a dining location
type Location struct {
	Name string `json:"name"`
	Num  string `json:"num"`
}

// TimeInfo carries the record timestamps and the menu date
type TimeInfo struct {
	Generated time.Time  `json:"gen"`
	Updated   *time.Time `json:"update"`
	MenuDate  string     `json:"menu_date"`
}

// MenuRecord is the structured, date stamped menu of one location
type MenuRecord struct {
	ID        uuid.UUID     `json:"uuid"`
	Location  Location      `json:"location"`
	TimeInfo  TimeInfo      `json:"time_info"`
	SourceURL string        `json:"url"`
	Hash      string        `json:"sum"`
	Sections  []MenuSection `json:"menus"`
}

// Key returns the storage key of r
func (r MenuRecord) Key() Key { return Key{LocationNum: r.Location.Num, MenuDate: r.TimeInfo.MenuDate} }

// Day returns the menu date as a UTC midnight, ok is false for malformed dates
func (r MenuRecord) Day() (time.Time, bool) { return ParseMenuDate(r.TimeInfo.MenuDate) }

// Key identifies a stored record: one menu per location per day
type Key struct {
	LocationNum string
	MenuDate    string
}

// String renders the key for logs and error messages
func (k Key) String() string { return k.LocationNum + "/" + k.MenuDate }

// ParseMenuDate parses MM-DD-YYYY
func ParseMenuDate(s string) (time.Time, bool) {
	t, err := time.Parse(MenuDateLayout, s)
	return t, err == nil
}

// MenuDateFromURL converts a dtdate value (MM/DD/YYYY) to MM-DD-YYYY
func MenuDateFromURL(v string) string { return strings.ReplaceAll(strings.TrimSpace(v), "/", "-") }

// KeyFromURL derives the storage key of a task url, ok is false when a field is missing
func KeyFromURL(rawURL string) (Key, bool) {
	found, missing := urlfield.GetAll(rawURL, FieldLocationNum, FieldDate)
	if len(missing) > 0 {
		return Key{}, false
	}
	return Key{LocationNum: found[FieldLocationNum], MenuDate: MenuDateFromURL(found[FieldDate])}, true
}

// PageInfo is the url and digest of a stored record, enough to recheck it
type PageInfo struct {
	URL string `json:"url"`
	Sum string `json:"sum"`
}
