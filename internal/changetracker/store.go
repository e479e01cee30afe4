package changetracker

import (
	"sort"
	"sync"

	"github.com/ogoldberg/browsecore/internal/config"
	"github.com/ogoldberg/browsecore/internal/logging"
)

// Store is the Change Tracker Store (spec.md §3.2): sole owner of
// per-URL FieldChangeRecord history, guarded by a single mutex for the
// same serial-mailbox ordering the Memory Store uses.
type Store struct {
	mu      sync.Mutex
	cfg     config.ChangeTrackerConfig
	history map[string][]ChangeReport
}

// New creates an empty Change Tracker Store.
func New(cfg config.ChangeTrackerConfig) *Store {
	return &Store{cfg: cfg, history: make(map[string][]ChangeReport)}
}

// Track runs TrackChanges and, if opts.URL is set and the report found
// changes, appends it to that URL's history (spec.md §4.4 "Persistence &
// history": no-change reports are not stored).
func (s *Store) Track(oldObj, newObj map[string]interface{}, opts Options) ChangeReport {
	if opts.Language == "" {
		opts.Language = s.cfg.Language
		if opts.Language == "" {
			opts.Language = "en"
		}
	}

	report := TrackChanges(oldObj, newObj, opts)

	if opts.URL != "" && report.HasChanges() {
		s.appendHistory(opts.URL, report)
	}
	return report
}

func (s *Store) appendHistory(url string, report ChangeReport) {
	timer := logging.StartTimer(logging.CategoryChangeTrack, "appendHistory")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	maxHistory := s.cfg.MaxHistoryPerURL
	if maxHistory <= 0 {
		maxHistory = 50
	}

	hist := append(s.history[url], report)
	if len(hist) > maxHistory {
		hist = hist[len(hist)-maxHistory:]
	}
	s.history[url] = hist
}

// GetHistory returns a defensive copy of the change history for url,
// oldest first.
func (s *Store) GetHistory(url string) []ChangeReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	hist := s.history[url]
	out := make([]ChangeReport, len(hist))
	copy(out, hist)
	return out
}

// GetTrackedUrls returns every URL with at least one stored report,
// sorted for stable output.
func (s *Store) GetTrackedUrls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.history))
	for url := range s.history {
		out = append(out, url)
	}
	sort.Strings(out)
	return out
}

// ClearHistory drops all stored reports for url.
func (s *Store) ClearHistory(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.history, url)
}

// ClearAllHistory drops every stored report for every URL.
func (s *Store) ClearAllHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = make(map[string][]ChangeReport)
}

// Statistics summarizes the store's tracked history.
type Statistics struct {
	TrackedURLs  int            `json:"tracked_urls"`
	TotalReports int            `json:"total_reports"`
	TotalChanges int            `json:"total_changes"`
	BySeverity   map[Severity]int `json:"by_severity"`
}

// GetStatistics aggregates counts across every tracked URL's history.
func (s *Store) GetStatistics() Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Statistics{BySeverity: make(map[Severity]int)}
	stats.TrackedURLs = len(s.history)
	for _, reports := range s.history {
		stats.TotalReports += len(reports)
		for _, r := range reports {
			stats.TotalChanges += r.TotalChanges
			for sev, count := range r.ChangesBySeverity {
				stats.BySeverity[sev] += count
			}
		}
	}
	return stats
}
