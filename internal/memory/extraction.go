package memory

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ogoldberg/browsecore/internal/kernel"
	"github.com/ogoldberg/browsecore/internal/logging"
)

const trajectoryBufferCap = 100

// RecordTrajectory appends t to the bounded trajectory buffer and, if it
// succeeded and has at least cfg.MinTrajectoryLength actions, attempts to
// extract or merge a skill from it (spec.md §4.2).
func (s *Store) RecordTrajectory(t Trajectory) {
	timer := logging.StartTimer(logging.CategoryMemory, "RecordTrajectory")
	defer timer.Stop()

	if t.ID == "" {
		t.ID = newID()
	}
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	s.mu.Lock()
	s.trajectoryBuffer = append(s.trajectoryBuffer, t)
	if len(s.trajectoryBuffer) > trajectoryBufferCap {
		s.trajectoryBuffer = s.trajectoryBuffer[len(s.trajectoryBuffer)-trajectoryBufferCap:]
	}
	minLen := s.cfg.MinTrajectoryLength
	s.mu.Unlock()

	if t.Success && len(t.Actions) >= minLen {
		s.extractOrMergeSkill(t)
	}
}

// filterActionsForExtraction drops failed actions and a wait immediately
// following another wait, retaining at most the last 10 (spec.md §4.2
// extraction policy step 1).
func filterActionsForExtraction(actions []Action) []Action {
	var filtered []Action
	for _, a := range actions {
		if !a.Success {
			continue
		}
		if a.Type == ActionWait && len(filtered) > 0 && filtered[len(filtered)-1].Type == ActionWait {
			continue
		}
		filtered = append(filtered, a)
	}
	if len(filtered) > 10 {
		filtered = filtered[len(filtered)-10:]
	}
	return filtered
}

var (
	numericPathSegment = regexp.MustCompile(`/\d+`)
	uuidSegment        = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
)

// generalizeURLPattern converts a concrete URL into a reusable pattern:
// numeric path segments become /[0-9]+ and 36-char UUID segments become
// [a-f0-9-]+ (spec.md §4.2 extraction policy step 2).
func generalizeURLPattern(url string) string {
	pattern := uuidSegment.ReplaceAllString(url, "[a-f0-9-]+")
	pattern = numericPathSegment.ReplaceAllStringFunc(pattern, func(m string) string {
		return "/[0-9]+"
	})
	return pattern
}

// inferPageType heuristically determines a page type from the action
// types and extracted content of a trajectory (spec.md §4.2 step 2).
func inferPageType(t Trajectory) PageType {
	lowerURL := strings.ToLower(t.StartURL + " " + t.EndURL)
	hasExtract := false
	hasFill := false
	for _, a := range t.Actions {
		switch a.Type {
		case ActionExtract:
			hasExtract = true
		case ActionFill:
			hasFill = true
		}
	}
	switch {
	case strings.Contains(lowerURL, "login") || strings.Contains(lowerURL, "signin"):
		return PageTypeLogin
	case strings.Contains(lowerURL, "search"):
		return PageTypeSearch
	case hasFill:
		return PageTypeForm
	case hasExtract && numericPathSegment.MatchString(t.EndURL):
		return PageTypeDetail
	case hasExtract:
		return PageTypeList
	default:
		return PageTypeUnknown
	}
}

// requiredSelectorsFrom returns the first five unique successful selectors
// (spec.md §4.2 step 2).
func requiredSelectorsFrom(actions []Action) []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range actions {
		if a.Selector == "" || seen[a.Selector] {
			continue
		}
		seen[a.Selector] = true
		out = append(out, a.Selector)
		if len(out) == 5 {
			break
		}
	}
	return out
}

func toActionFeatures(actions []Action) []kernel.ActionFeature {
	out := make([]kernel.ActionFeature, len(actions))
	for i, a := range actions {
		out[i] = kernel.ActionFeature{Type: a.Type, Success: a.Success}
	}
	return out
}

// extractOrMergeSkill runs spec.md §4.2's extraction policy: filter
// actions, infer preconditions, embed, and either merge into the nearest
// existing skill (if cosine > mergeThreshold) or create a new one.
func (s *Store) extractOrMergeSkill(t Trajectory) {
	filtered := filterActionsForExtraction(t.Actions)
	if len(filtered) == 0 {
		return
	}

	preconditions := Preconditions{
		DomainPatterns:    []string{t.Domain},
		URLPatterns:       []string{generalizeURLPattern(t.StartURL)},
		PageType:          inferPageType(t),
		RequiredSelectors: requiredSelectorsFrom(filtered),
	}

	shape := kernel.SkillShape{
		DomainPatterns:    preconditions.DomainPatterns,
		URLPatterns:       preconditions.URLPatterns,
		PageType:          preconditions.PageType,
		RequiredSelectors: preconditions.RequiredSelectors,
		Actions:           toActionFeatures(filtered),
	}
	embedding := kernel.EmbedSkill(shape)

	s.mu.Lock()
	defer s.mu.Unlock()

	mergeThreshold := s.cfg.MergeThreshold
	var bestID string
	var bestSim float64
	first := true
	for id, sk := range s.skills {
		sim := kernel.CosineSimilarity(sk.Embedding, embedding)
		if first || sim > bestSim {
			bestSim = sim
			bestID = id
			first = false
		}
	}

	if !first && bestSim > mergeThreshold {
		s.mergeIntoSkillLocked(bestID, filtered, embedding, t.TotalDuration, t.Domain)
		return
	}

	now := time.Now()
	sk := Skill{
		ID:             newID(),
		Name:           "extracted:" + t.Domain,
		Description:    "Auto-extracted from a successful trajectory on " + t.Domain,
		Preconditions:  preconditions,
		ActionSequence: filtered,
		Embedding:      embedding,
		Metrics: Metrics{
			SuccessCount: 1,
			TimesUsed:    1,
			AvgDuration:  t.TotalDuration,
			LastUsed:     now,
		},
		CreatedAt:    now,
		UpdatedAt:    now,
		SourceDomain: t.Domain,
	}

	s.evictIfAtCapacityLocked()
	cp := cloneSkill(sk)
	s.skills[cp.ID] = &cp
	s.appendVersionLocked(cp.ID, cp, ChangeReasonInitial, "extracted from trajectory")
}

// mergeIntoSkillLocked applies spec.md §4.2's merge policy: increments
// successCount and timesUsed, updates the running-average duration,
// replaces the action sequence only if strictly shorter, unions domain
// patterns, and re-embeds if the action sequence changed. Caller must hold
// s.mu. spec.md P4: after merge, timesUsed >= successCount, embedding
// stays unit/zero, and action sequence length never grows.
func (s *Store) mergeIntoSkillLocked(id string, newActions []Action, newEmbedding []float32, duration time.Duration, domain string) {
	sk := s.skills[id]

	sk.Metrics.SuccessCount++
	sk.Metrics.TimesUsed++
	sk.Metrics.AvgDuration = runningAverage(sk.Metrics.AvgDuration, sk.Metrics.TimesUsed, duration)
	sk.Metrics.LastUsed = time.Now()

	sequenceChanged := false
	if len(newActions) < len(sk.ActionSequence) {
		sk.ActionSequence = newActions
		sequenceChanged = true
	}

	sk.Preconditions.DomainPatterns = unionStrings(sk.Preconditions.DomainPatterns, []string{domain})

	if sequenceChanged {
		sk.Embedding = newEmbedding
	}
	sk.UpdatedAt = time.Now()

	s.appendVersionLocked(id, *sk, ChangeReasonMerge, "merged trajectory into existing skill")
}

func runningAverage(current time.Duration, count int64, next time.Duration) time.Duration {
	if count <= 1 {
		return next
	}
	total := current*time.Duration(count-1) + next
	return total / time.Duration(count)
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	out := append([]string(nil), a...)
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// RecordSkillExecution updates a skill's metrics identically to the merge
// policy's metric path (spec.md §4.2, §6.3).
func (s *Store) RecordSkillExecution(id string, success bool, duration time.Duration) error {
	timer := logging.StartTimer(logging.CategoryMemory, "RecordSkillExecution")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	sk, ok := s.skills[id]
	if !ok {
		return fmt.Errorf("skill not found: %s", id)
	}

	sk.Metrics.TimesUsed++
	if success {
		sk.Metrics.SuccessCount++
	} else {
		sk.Metrics.FailureCount++
	}
	sk.Metrics.AvgDuration = runningAverage(sk.Metrics.AvgDuration, sk.Metrics.TimesUsed, duration)
	sk.Metrics.LastUsed = time.Now()
	sk.UpdatedAt = time.Now()

	return nil
}
