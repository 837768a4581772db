// Package menuparse turns a FoodPro short menu page into ordered dining period sections
//
// A page holds one zone per dining period (td width=30%). Each zone carries a heading
// (div.shortmenumeals) and a flat run of text fragments where category markers such as
// "-- Entrees --" open a new category and every other fragment is an item of the current one
package menuparse

import (
	"bytes"
	"strings"

	"ucrfood/internal/core/textclean"
	perr "ucrfood/internal/platform/errors"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

const (
	zoneSelector     = `td[width="30%"]`
	headingSelector  = `div.shortmenumeals`
	fragmentSelector = `a[name="Recipe_Desc"], div.shortmenucats span`

	markerDelim = "--"
)

// Section is one dining period block of a page
type Section struct {
	Label      string     `json:"type"`
	Categories Categories `json:"content"`
}

// Parse decodes raw using the charset implied by contentType and the page meta tags,
// then extracts one Section per menu zone in page order
func Parse(raw []byte, contentType string) ([]Section, error) {
	r, err := charset.NewReader(bytes.NewReader(raw), contentType)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodePageFormat, "decode page charset")
	}
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodePageFormat, "parse page html")
	}
	return FromDocument(doc)
}

// FromDocument extracts sections from an already parsed document
func FromDocument(doc *goquery.Document) ([]Section, error) {
	var (
		out  []Section
		fail error
	)
	doc.Find(zoneSelector).EachWithBreak(func(i int, zone *goquery.Selection) bool {
		frags := Fragments(zone)
		heading := zone.Find(headingSelector).First()
		if heading.Length() == 0 {
			if len(frags) == 0 {
				// layout cell, not a menu zone
				return true
			}
			fail = perr.WithOp(perr.Newf(perr.ErrorCodePageFormat, "menu zone %d has no dining period heading", i), "menuparse.zone")
			return false
		}
		cats, err := Group(frags)
		if err != nil {
			fail = perr.WithOp(err, "menuparse.zone")
			return false
		}
		out = append(out, Section{
			Label:      strings.ToLower(strings.TrimSpace(heading.Text())),
			Categories: cats,
		})
		return true
	})
	if fail != nil {
		return nil, fail
	}
	return out, nil
}

// Fragments returns the recipe and category texts of a zone in document order
func Fragments(zone *goquery.Selection) []string {
	nodes := zone.Find(fragmentSelector)
	out := make([]string, 0, nodes.Length())
	nodes.Each(func(_ int, s *goquery.Selection) {
		out = append(out, s.Text())
	})
	return out
}

// Group walks fragments once keeping a current category pointer
// items before the first marker are dropped, items that clean to "" are dropped
func Group(frags []string) (Categories, error) {
	var (
		cats    Categories
		current string
		open    bool
	)
	for _, f := range frags {
		if name, ok := MarkerName(f); ok {
			if name == "" {
				return Categories{}, perr.WithField(
					perr.Newf(perr.ErrorCodePageFormat, "category marker %q has no name", strings.TrimSpace(f)),
					"marker",
				)
			}
			cats.Start(name)
			current, open = name, true
			continue
		}
		if !open {
			continue
		}
		if item := textclean.Clean(f); item != "" {
			cats.Append(current, item)
		}
	}
	return cats, nil
}

// MarkerName reports whether frag is a category marker and returns its name
// the name is the text between the leading and trailing delimiters with padding removed
// whitespace before the leading delimiter is ignored, anchor text keeps the markup's indentation
func MarkerName(frag string) (string, bool) {
	t := strings.TrimSpace(frag)
	if !strings.HasPrefix(t, markerDelim) {
		return "", false
	}
	name := strings.TrimPrefix(t, markerDelim)
	name = strings.TrimSuffix(name, markerDelim)
	return strings.TrimSpace(name), true
}
