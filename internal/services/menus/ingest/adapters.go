// Package ingest adapts the foodpro client and the menu parser to the menus ports
// and turns caller supplied task lists into FetchTasks
package ingest

import (
	"context"

	"ucrfood/internal/adapters/ingest/foodpro"
	"ucrfood/internal/core/menuparse"
	"ucrfood/internal/services/menus/domain"
)

// fetcher implements domain.Fetcher on the foodpro client
type fetcher struct {
	f *foodpro.Fetcher
}

// NewFetcher builds a domain.Fetcher, zero options take the client defaults
func NewFetcher(o foodpro.Options) domain.Fetcher {
	return &fetcher{f: foodpro.NewFetcher(o)}
}

func (f *fetcher) Fetch(ctx context.Context, url string) (domain.Page, error) {
	p, err := f.f.Fetch(ctx, url)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Body: p.Body, ContentType: p.ContentType}, nil
}

type parser struct{}

// NewParser returns the short menu parser
func NewParser() domain.Parser { return parser{} }

func (parser) Parse(raw []byte, contentType string) ([]domain.MenuSection, error) {
	return menuparse.Parse(raw, contentType)
}
