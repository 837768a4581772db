package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"ucrfood/internal/core/menuparse"
	perr "ucrfood/internal/platform/errors"
	"ucrfood/internal/platform/testkit"
	"ucrfood/internal/services/menus/domain"
)

func shortMenu(t *testing.T) string {
	t.Helper()
	return string(testkit.Fixture(t, "..", "..", "..", "core", "menuparse", "testdata", "shortmenu.html"))
}

func pageURL(num string) string {
	return "http://menus.example.edu/shortmenu.aspx?locationNum=" + num + "&locationName=Lothian&dtdate=11%2f03%2f2017"
}

func mustTask(t *testing.T, u, known string) domain.FetchTask {
	t.Helper()
	tk, err := domain.NewFetchTask(u, known)
	if err != nil {
		t.Fatalf("NewFetchTask(%q): %v", u, err)
	}
	return tk
}

// fakeFetcher serves bodies from a map, unknown urls are unreachable
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func (f *fakeFetcher) set(u, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pages == nil {
		f.pages = map[string]string{}
	}
	f.pages[u] = body
}

func (f *fakeFetcher) Fetch(ctx context.Context, u string) (domain.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, u)
	if err := ctx.Err(); err != nil {
		return domain.Page{}, err
	}
	if err, ok := f.errs[u]; ok {
		return domain.Page{}, err
	}
	body, ok := f.pages[u]
	if !ok {
		return domain.Page{}, perr.Unreachablef("no page at %s", u)
	}
	return domain.Page{Body: []byte(body), ContentType: "text/html; charset=utf-8"}, nil
}

type realParser struct{}

func (realParser) Parse(raw []byte, ct string) ([]domain.MenuSection, error) {
	return menuparse.Parse(raw, ct)
}

// memStore is an in-memory domain.Store with scripted failures
type memStore struct {
	mu         sync.Mutex
	recs       map[domain.Key]domain.MenuRecord
	upsertErrs []error
	knownErr   error
	upserts    int
	lookups    [][]domain.Key
	infos      []domain.PageInfo
}

func newMemStore() *memStore { return &memStore{recs: map[domain.Key]domain.MenuRecord{}} }

func (m *memStore) Ensure(context.Context) error { return nil }

func (m *memStore) KnownHashes(_ context.Context, keys []domain.Key) (map[domain.Key]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, keys)
	if m.knownErr != nil {
		return nil, m.knownErr
	}
	out := map[domain.Key]string{}
	for _, k := range keys {
		if r, ok := m.recs[k]; ok {
			out[k] = r.Hash
		}
	}
	return out, nil
}

func (m *memStore) Upsert(ctx context.Context, rec domain.MenuRecord, now time.Time) (domain.MenuRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if err := ctx.Err(); err != nil {
		return domain.MenuRecord{}, false, err
	}
	if len(m.upsertErrs) > 0 {
		err := m.upsertErrs[0]
		m.upsertErrs = m.upsertErrs[1:]
		if err != nil {
			return domain.MenuRecord{}, false, err
		}
	}
	old, ok := m.recs[rec.Key()]
	if ok {
		rec.ID = old.ID
		rec.TimeInfo.Generated = old.TimeInfo.Generated
		n := now
		rec.TimeInfo.Updated = &n
	}
	m.recs[rec.Key()] = rec
	return rec, !ok, nil
}

func (m *memStore) Get(_ context.Context, k domain.Key) (domain.MenuRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.recs[k]
	if !ok {
		return domain.MenuRecord{}, perr.NotFoundf("menu %s not found", k)
	}
	return r, nil
}

func (m *memStore) ListByDate(_ context.Context, d string) ([]domain.MenuRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.MenuRecord
	for k, r := range m.recs {
		if k.MenuDate == d {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Location.Num < out[j].Location.Num })
	return out, nil
}

func (m *memStore) HashesWithin(context.Context, time.Time, int) ([]domain.PageInfo, error) {
	return m.infos, nil
}

type memSink struct {
	mu    sync.Mutex
	runID string
	outs  []domain.Outcome
}

func (s *memSink) WriteOutcomes(_ context.Context, runID string, _ time.Time, outs []domain.Outcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runID = runID
	s.outs = append(s.outs, outs...)
	return nil
}
