package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ogoldberg/browsecore/internal/config"
	"github.com/ogoldberg/browsecore/internal/logging"
)

// Store is the sole owner of all Skills, Versions, AntiPatterns, Workflows,
// the Trajectory buffer, and Feedback (spec.md §3.2). All mutating methods
// take the single mutex, giving the serial-mailbox ordering guarantee of
// spec.md §5: within the store, mutations are observed in program order,
// and a read issued after a mutation returns observes that mutation.
type Store struct {
	mu sync.Mutex

	cfg config.MemoryConfig

	skills       map[string]*Skill
	versions     map[string][]SkillVersion // skillID -> versions, oldest first
	antiPatterns map[string]*AntiPattern   // keyed by dedup key, see antipatterns.go
	workflows    map[string]*Workflow
	feedbackLog  []Feedback

	trajectoryBuffer []Trajectory

	visitedDomains    map[string]bool
	visitedPageTypes  map[string]int
	failedExtractions map[string]int

	lastSaved time.Time
}

// New creates an empty Store configured by cfg. Call Initialize to populate it
// from a persisted document.
func New(cfg config.MemoryConfig) *Store {
	return &Store{
		cfg:               cfg,
		skills:            make(map[string]*Skill),
		versions:          make(map[string][]SkillVersion),
		antiPatterns:      make(map[string]*AntiPattern),
		workflows:         make(map[string]*Workflow),
		visitedDomains:    make(map[string]bool),
		visitedPageTypes:  make(map[string]int),
		failedExtractions: make(map[string]int),
	}
}

// newID mints a spec.md-shaped opaque 16-hex-character id.
func newID() string {
	u := uuid.New()
	return fmt.Sprintf("%x", u[:8])
}

// GetSkill returns a defensive copy of the skill, or false if it doesn't exist.
func (s *Store) GetSkill(id string) (Skill, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk, ok := s.skills[id]
	if !ok {
		return Skill{}, false
	}
	return cloneSkill(*sk), true
}

// GetAllSkills returns defensive copies of every stored skill, sorted by id
// for stable output ordering (spec.md Design Notes: "skills retrieval
// returns a sequence sorted by score"; outside of a ranked retrieval call,
// ordering is by id).
func (s *Store) GetAllSkills() []Skill {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Skill, 0, len(s.skills))
	for _, sk := range s.skills {
		out = append(out, cloneSkill(*sk))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetSkillsByDomain returns skills whose domain patterns match domain.
func (s *Store) GetSkillsByDomain(domain string) []Skill {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Skill
	for _, sk := range s.skills {
		if domainPatternsMatch(sk.Preconditions.DomainPatterns, domain) {
			out = append(out, cloneSkill(*sk))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func domainPatternsMatch(patterns []string, domain string) bool {
	for _, p := range patterns {
		if p == domain || globMatch(p, domain) {
			return true
		}
	}
	return false
}

// globMatch supports a single '*' wildcard glob, matching spec.md's
// "domainPatterns (glob-capable)".
func globMatch(pattern, s string) bool {
	if pattern == s {
		return true
	}
	star := -1
	for i, c := range pattern {
		if c == '*' {
			star = i
			break
		}
	}
	if star < 0 {
		return false
	}
	prefix := pattern[:star]
	suffix := pattern[star+1:]
	return len(s) >= len(prefix)+len(suffix) &&
		hasPrefix(s, prefix) && hasSuffix(s, suffix)
}

func hasPrefix(s, p string) bool { return len(s) >= len(p) && s[:len(p)] == p }
func hasSuffix(s, p string) bool { return len(s) >= len(p) && s[len(s)-len(p):] == p }

// AddSkill inserts a fully-formed skill, evicting the lowest-score skill
// first if at capacity (spec.md §4.2 "Add policy").
func (s *Store) AddSkill(sk Skill) error {
	timer := logging.StartTimer(logging.CategoryMemory, "AddSkill")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	if sk.ID == "" {
		sk.ID = newID()
	}
	now := time.Now()
	if sk.CreatedAt.IsZero() {
		sk.CreatedAt = now
	}
	sk.UpdatedAt = now

	s.evictIfAtCapacityLocked()

	cp := cloneSkill(sk)
	s.skills[cp.ID] = &cp
	s.appendVersionLocked(cp.ID, cp, ChangeReasonInitial, "skill created")
	return nil
}

// evictIfAtCapacityLocked removes the skill with the lowest
// timesUsed / (1 + daysSinceUsed*0.1) score when at cfg.MaxSkills capacity.
// Caller must hold s.mu.
func (s *Store) evictIfAtCapacityLocked() {
	maxSkills := s.cfg.MaxSkills
	if maxSkills <= 0 {
		maxSkills = 1000
	}
	if len(s.skills) < maxSkills {
		return
	}

	var worstID string
	var worstScore float64
	first := true
	now := time.Now()
	for id, sk := range s.skills {
		score := lruScore(*sk, now)
		if first || score < worstScore {
			worstScore = score
			worstID = id
			first = false
		}
	}
	if worstID != "" {
		delete(s.skills, worstID)
		delete(s.versions, worstID)
	}
}

func lruScore(sk Skill, now time.Time) float64 {
	daysSinceUsed := 0.0
	if !sk.Metrics.LastUsed.IsZero() {
		daysSinceUsed = now.Sub(sk.Metrics.LastUsed).Hours() / 24.0
	}
	return float64(sk.Metrics.TimesUsed) / (1 + daysSinceUsed*0.1)
}

// DeleteSkill removes a skill explicitly (terminal, spec.md §4.2 state
// machine: Evicted).
func (s *Store) DeleteSkill(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.skills, id)
	delete(s.versions, id)
}

// State returns the lifecycle state of a skill per spec.md §4.2.
func (s *Store) State(sk Skill) State {
	if sk.Metrics.TimesUsed == 0 {
		return StateFresh
	}
	minUses := s.cfg.MinUsesForPrune
	minRate := s.cfg.MinSuccessRateForUse
	if sk.Metrics.TimesUsed >= int64(minUses) && sk.Metrics.SuccessRate() < minRate {
		return StateDegraded
	}
	if sk.Metrics.SuccessRate() >= minRate {
		return StateActive
	}
	return StateActive
}

// cloneSkill returns a defensive deep copy, per spec.md §5 "external
// callers obtain immutable snapshots (defensive copies for vectors and
// action arrays)".
func cloneSkill(sk Skill) Skill {
	cp := sk
	cp.Embedding = append([]float32(nil), sk.Embedding...)
	cp.ActionSequence = cloneActions(sk.ActionSequence)
	cp.Preconditions.DomainPatterns = append([]string(nil), sk.Preconditions.DomainPatterns...)
	cp.Preconditions.URLPatterns = append([]string(nil), sk.Preconditions.URLPatterns...)
	cp.Preconditions.RequiredSelectors = append([]string(nil), sk.Preconditions.RequiredSelectors...)
	cp.Preconditions.ContentTypeHints = append([]string(nil), sk.Preconditions.ContentTypeHints...)
	cp.Preconditions.Prerequisites = append([]string(nil), sk.Preconditions.Prerequisites...)
	cp.Preconditions.FallbackSkillIDs = append([]string(nil), sk.Preconditions.FallbackSkillIDs...)
	return cp
}

func cloneActions(actions []Action) []Action {
	return append([]Action(nil), actions...)
}

// TrackVisit records a visit outcome for coverage statistics (spec.md §6.3
// trackVisit). Derived aggregates are never persisted verbatim — they are
// pure projections recomputed from this evidence (Design Notes §9).
func (s *Store) TrackVisit(domain string, pageType PageType, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visitedDomains[domain] = true
	s.visitedPageTypes[string(pageType)]++
	if !success {
		s.failedExtractions[domain]++
	}
}

// CoverageStats is a pure projection over visited/failed evidence.
type CoverageStats struct {
	VisitedDomains    int            `json:"visited_domains"`
	VisitedPageTypes  map[string]int `json:"visited_page_types"`
	FailedExtractions map[string]int `json:"failed_extractions"`
	SkillCount        int            `json:"skill_count"`
}

// GetCoverageStats returns the current coverage projection.
func (s *Store) GetCoverageStats() CoverageStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	pageTypes := make(map[string]int, len(s.visitedPageTypes))
	for k, v := range s.visitedPageTypes {
		pageTypes[k] = v
	}
	failed := make(map[string]int, len(s.failedExtractions))
	for k, v := range s.failedExtractions {
		failed[k] = v
	}
	return CoverageStats{
		VisitedDomains:    len(s.visitedDomains),
		VisitedPageTypes:  pageTypes,
		FailedExtractions: failed,
		SkillCount:        len(s.skills),
	}
}

// Reset clears all in-memory state. Does not touch any persisted file.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skills = make(map[string]*Skill)
	s.versions = make(map[string][]SkillVersion)
	s.antiPatterns = make(map[string]*AntiPattern)
	s.workflows = make(map[string]*Workflow)
	s.feedbackLog = nil
	s.trajectoryBuffer = nil
	s.visitedDomains = make(map[string]bool)
	s.visitedPageTypes = make(map[string]int)
	s.failedExtractions = make(map[string]int)
}
