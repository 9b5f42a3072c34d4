package web

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"sponsorcal/internal/config"
	"sponsorcal/internal/layout"
	appLog "sponsorcal/internal/log"
	"sponsorcal/internal/model"
)

// EventSource supplies the raw events for a time window. It is
// implemented by ics.Service in production and by stubs in tests.
type EventSource interface {
	Events(ctx context.Context, from, to time.Time) ([]model.Event, error)
}

// Server provides the HTTP API: /health, /api/events and /api/layout.
type Server struct {
	cfg    *config.Config
	source EventSource
	loc    *time.Location
	mux    *http.ServeMux

	// Month event feeds are cached briefly so a burst of UI requests does
	// not refetch every ICS source.
	eventsMu    sync.RWMutex
	eventsCache map[string]eventsEntry

	// Layout responses are memoized by the composite key
	// (event fingerprint, year, month, rows). The computation is cheap
	// but deterministic, so cached responses never go stale as long as
	// the fingerprint matches.
	layoutMu    sync.Mutex
	layoutCache map[string]layoutResponse
}

const eventsCacheTTL = 5 * time.Minute

// layoutCacheLimit bounds the memo map; when exceeded it is simply
// dropped and rebuilt on demand.
const layoutCacheLimit = 64

type eventsEntry struct {
	events    []model.Event
	fetchedAt time.Time
}

// NewServer constructs a Server around a config and an event source.
func NewServer(cfg *config.Config, source EventSource) *Server {
	s := &Server{
		cfg:         cfg,
		source:      source,
		loc:         resolveLocationOrLocal(cfg.Timezone),
		mux:         http.NewServeMux(),
		eventsCache: make(map[string]eventsEntry),
		layoutCache: make(map[string]layoutResponse),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server, with basic auth
// wrapped around everything except /health when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health is always reachable without credentials.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="sponsorcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/layout", s.handleLayout)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Refresh drops the event and layout caches and prewarms the current
// month's feed. The cron loop in cmd/sponsorcal calls this on schedule.
func (s *Server) Refresh(ctx context.Context) {
	s.eventsMu.Lock()
	s.eventsCache = make(map[string]eventsEntry)
	s.eventsMu.Unlock()

	s.layoutMu.Lock()
	s.layoutCache = make(map[string]layoutResponse)
	s.layoutMu.Unlock()

	now := time.Now().In(s.loc)
	if _, err := s.eventsForMonth(ctx, now.Year(), now.Month()); err != nil {
		appLog.Error("refresh: prewarm failed", err)
	}
}

// eventsForMonth returns the event feed for a month, padded a week on
// both sides so spillover events are present; the engine re-clips.
func (s *Server) eventsForMonth(ctx context.Context, year int, month time.Month) ([]model.Event, error) {
	key := fmt.Sprintf("%04d-%02d", year, month)
	now := time.Now()

	s.eventsMu.RLock()
	entry, ok := s.eventsCache[key]
	s.eventsMu.RUnlock()
	if ok && now.Sub(entry.fetchedAt) < eventsCacheTTL {
		return entry.events, nil
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	from := first.AddDate(0, 0, -7)
	to := first.AddDate(0, 1, 7)

	events, err := s.source.Events(ctx, from, to)
	if err != nil {
		return nil, err
	}

	s.eventsMu.Lock()
	s.eventsCache[key] = eventsEntry{events: events, fetchedAt: time.Now()}
	s.eventsMu.Unlock()

	return events, nil
}

// eventDTO is the JSON view of one event.
type eventDTO struct {
	ID     string    `json:"id"`
	Name   string    `json:"name"`
	AllDay bool      `json:"all_day"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// eventsResponse is the JSON response shape for /api/events.
type eventsResponse struct {
	Events   []eventDTO `json:"events"`
	Year     int        `json:"year"`
	Month    int        `json:"month"`
	Timezone string     `json:"timezone"`
}

// handleEvents returns the expanded events around one visible month.
//
// GET /api/events?year=2026&month=8
//
// Both parameters default to the current month in the display timezone;
// month is 1-based.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	year, month, ok := s.yearMonthParams(w, r)
	if !ok {
		return
	}

	events, err := s.eventsForMonth(r.Context(), year, month)
	if err != nil {
		appLog.Error("api events: source failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	dtos := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		dtos = append(dtos, eventDTO{
			ID:     ev.ID,
			Name:   ev.Name,
			AllDay: ev.AllDay,
			Start:  ev.Start,
			End:    ev.End,
		})
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Events:   dtos,
		Year:     year,
		Month:    int(month),
		Timezone: s.loc.String(),
	})
}

// runDTO decorates a layout.Run with its resolved palette color.
type runDTO struct {
	layout.Run
	Name  string `json:"name"`
	Color string `json:"color"`
}

// overflowDTO decorates an overflow group with its renderer label.
type overflowDTO struct {
	layout.OverflowGroup
	Count int    `json:"count"`
	Label string `json:"label"`
}

// layoutResponse is the JSON response shape for /api/layout.
type layoutResponse struct {
	Month    layout.MonthContext `json:"month"`
	Rows     map[string]int      `json:"rows"`
	Runs     []runDTO            `json:"runs"`
	Overflow []overflowDTO       `json:"overflow"`
	Timezone string              `json:"timezone"`
}

// handleLayout runs the layout engine for one month and returns the
// full grid description.
//
// GET /api/layout?year=2026&month=8&rows=2
//
// rows overrides the configured visible row capacity; values below 1
// push every event into the overflow indicators.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	year, month, ok := s.yearMonthParams(w, r)
	if !ok {
		return
	}
	rows := parseIntDefault(r.URL.Query().Get("rows"), s.cfg.VisibleRows)

	events, err := s.eventsForMonth(r.Context(), year, month)
	if err != nil {
		appLog.Error("api layout: source failed", err)
		writeError(w, http.StatusInternalServerError, "failed to load events")
		return
	}

	key := fmt.Sprintf("%s|%d|%d|%d", fingerprint(events), year, month, rows)

	s.layoutMu.Lock()
	cached, ok := s.layoutCache[key]
	s.layoutMu.Unlock()
	if ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	result := layout.Compute(events, year, month, layout.Options{
		VisibleRows: rows,
		PaletteSize: len(s.cfg.Palette),
		WeekStart:   s.cfg.WeekStart,
		Location:    s.loc,
	})

	resp := s.buildLayoutResponse(result, events)

	s.layoutMu.Lock()
	if len(s.layoutCache) >= layoutCacheLimit {
		s.layoutCache = make(map[string]layoutResponse)
	}
	s.layoutCache[key] = resp
	s.layoutMu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) buildLayoutResponse(result layout.Result, events []model.Event) layoutResponse {
	names := make(map[string]string, len(events))
	for _, ev := range events {
		names[ev.ID] = ev.Name
	}

	runs := make([]runDTO, 0, len(result.Runs))
	for _, run := range result.Runs {
		runs = append(runs, runDTO{
			Run:   run,
			Name:  names[run.EventID],
			Color: s.cfg.Palette[run.ColorIndex%len(s.cfg.Palette)],
		})
	}

	overflow := make([]overflowDTO, 0, len(result.Overflow))
	for _, g := range result.Overflow {
		overflow = append(overflow, overflowDTO{
			OverflowGroup: g,
			Count:         len(g.Members),
			Label:         fmt.Sprintf("+%d", len(g.Members)),
		})
	}

	return layoutResponse{
		Month:    result.Month,
		Rows:     result.Rows,
		Runs:     runs,
		Overflow: overflow,
		Timezone: s.loc.String(),
	}
}

// fingerprint hashes event identities and instants so layout responses
// can be memoized and invalidated the moment the feed changes. The feed
// arrives sorted, so the hash is stable.
func fingerprint(events []model.Event) string {
	h := sha256.New()
	for _, ev := range events {
		fmt.Fprintf(h, "%s|%d|%d\n", ev.ID, ev.Start.UnixNano(), ev.End.UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func (s *Server) yearMonthParams(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	now := time.Now().In(s.loc)
	q := r.URL.Query()

	year := parseIntDefault(q.Get("year"), now.Year())
	month := parseIntDefault(q.Get("month"), int(now.Month()))
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be 1..12")
		return 0, 0, false
	}
	if year < 1 {
		writeError(w, http.StatusBadRequest, "year must be positive")
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone; falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
