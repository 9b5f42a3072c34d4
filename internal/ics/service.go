package ics

import (
	"context"
	"time"

	appLog "sponsorcal/internal/log"
	"sponsorcal/internal/model"
)

// Service resolves the configured ICS sources into concrete events for
// a time window: fetch (with disk-backed HTTP caching), parse, expand.
// It is the upstream collaborator the layout engine assumes.
type Service struct {
	fetcher *Fetcher
	sources []Source
	loc     *time.Location
}

// NewService builds a Service caching feed bodies under cacheDir and
// normalizing occurrences into loc.
func NewService(cacheDir string, sources []Source, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		fetcher: NewFetcher(cacheDir),
		sources: sources,
		loc:     loc,
	}
}

// Events returns all occurrences within [from, to]. Individual source
// failures are logged and skipped; the healthy sources still produce a
// usable feed.
func (s *Service) Events(ctx context.Context, from, to time.Time) ([]model.Event, error) {
	results, errs := s.fetcher.FetchAll(ctx, s.sources)
	if len(errs) > 0 {
		appLog.Warn("ics: some sources failed to fetch", "failed", len(errs), "total", len(s.sources))
	}

	parsed := make([]ParsedEvent, 0)
	for _, res := range results {
		events, err := Parse(res.Source, res.Body)
		if err != nil {
			appLog.Error("ics: parse failed for source", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, events...)
	}

	return Expand(parsed, ExpandConfig{
		DisplayLocation: s.loc,
		RangeStart:      from,
		RangeEnd:        to,
	})
}
