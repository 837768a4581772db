package foodpro

import (
	"net/url"
	"strings"
	"time"

	perr "ucrfood/internal/platform/errors"

	"gopkg.in/ini.v1"
)

// MainSection holds BaseURL, every other section is one dining location
const MainSection = "MAIN"

// DateLayout is the dtdate form the site expects
const DateLayout = "01/02/2006"

// DefaultDays is how far ahead a block reaches
const DefaultDays = 15

// Location is one section of the locations file, Params keep file order
type Location struct {
	Section string
	Params  []Param
}

// Param is one query argument of a location
type Param struct {
	Key   string
	Value string
}

// Locations is a parsed locations file
type Locations struct {
	BaseURL string
	Entries []Location
}

// LoadLocations reads a locations file, src is a path or raw bytes as accepted by ini.Load
//
//	[MAIN]
//	BaseURL = http://138.23.12.141/foodpro/shortmenu.asp
//	[LOTHIAN]
//	locationNum  = 02
//	locationName = Lothian Residential Restaurant
//
// every location needs locationNum and locationName, keys match case-insensitively
func LoadLocations(src any) (Locations, error) {
	f, err := ini.Load(src)
	if err != nil {
		return Locations{}, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "load locations file")
	}

	var out Locations
	for _, sec := range f.Sections() {
		name := sec.Name()
		switch {
		case name == ini.DefaultSection && len(sec.Keys()) == 0:
			continue
		case strings.EqualFold(name, MainSection):
			out.BaseURL = keyFold(sec, "BaseURL")
			continue
		}
		loc := Location{Section: name}
		for _, k := range sec.Keys() {
			loc.Params = append(loc.Params, Param{Key: k.Name(), Value: strings.TrimSpace(k.Value())})
		}
		for _, req := range []string{"locationNum", "locationName"} {
			if keyFold(sec, req) == "" {
				return Locations{}, perr.WithField(perr.InvalidArgf("location [%s] is missing %s", name, req), req)
			}
		}
		out.Entries = append(out.Entries, loc)
	}

	if out.BaseURL == "" {
		return Locations{}, perr.WithField(perr.InvalidArgf("[%s] BaseURL is required", MainSection), "BaseURL")
	}
	if u, err := url.Parse(out.BaseURL); err != nil || !u.IsAbs() {
		return Locations{}, perr.WithField(perr.InvalidArgf("BaseURL %q is not an absolute url", out.BaseURL), "BaseURL")
	}
	return out, nil
}

func keyFold(sec *ini.Section, name string) string {
	for _, k := range sec.Keys() {
		if strings.EqualFold(k.Name(), name) {
			return strings.TrimSpace(k.Value())
		}
	}
	return ""
}

// URL returns base?k=v&... for loc with keys and values query escaped
func (l Locations) URL(loc Location) string {
	var b strings.Builder
	b.WriteString(l.BaseURL)
	sep := "?"
	if strings.Contains(l.BaseURL, "?") {
		sep = "&"
	}
	for _, p := range loc.Params {
		b.WriteString(sep)
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
		sep = "&"
	}
	return b.String()
}

// URLs returns one base url per location in file order
func (l Locations) URLs() []string {
	out := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		out = append(out, l.URL(e))
	}
	return out
}

// Block expands every location url into days consecutive dates starting at start
// the url for each day carries &dtdate=MM%2FDD%2FYYYY; days <= 0 means DefaultDays
func (l Locations) Block(start time.Time, days int) []string {
	if days <= 0 {
		days = DefaultDays
	}
	base := l.URLs()
	out := make([]string, 0, len(base)*days)
	for _, u := range base {
		for d := 0; d < days; d++ {
			day := start.AddDate(0, 0, d).Format(DateLayout)
			out = append(out, u+"&dtdate="+url.QueryEscape(day))
		}
	}
	return out
}
