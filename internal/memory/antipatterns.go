package memory

import (
	"strings"
	"time"

	"github.com/ogoldberg/browsecore/internal/logging"
)

// antiPatternKey deduplicates anti-patterns by (domain, action.type,
// action.selector) per spec.md §3.1.
func antiPatternKey(domain string, a Action) string {
	return domain + "|" + string(a.Type) + "|" + a.Selector
}

// RecordAntiPattern records that action under ctx led to consequences. A
// duplicate key increments occurrenceCount, unions consequences, and keeps
// the first alternatives and name (spec.md §4.2 "Duplicates").
func (s *Store) RecordAntiPattern(action Action, ctx Context, consequences []string, alternatives []string) AntiPattern {
	timer := logging.StartTimer(logging.CategoryMemory, "RecordAntiPattern")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	key := antiPatternKey(ctx.Domain, action)
	now := time.Now()

	if existing, ok := s.antiPatterns[key]; ok {
		existing.OccurrenceCount++
		existing.Consequences = unionStrings(existing.Consequences, consequences)
		existing.UpdatedAt = now
		return *existing
	}

	ap := &AntiPattern{
		ID:              newID(),
		Name:            "avoid " + string(action.Type) + " on " + ctx.Domain,
		Description:     "Action " + string(action.Type) + " at " + action.Selector + " on " + ctx.Domain + " has failed before",
		Preconditions: Preconditions{
			DomainPatterns: []string{ctx.Domain},
			PageType:       ctx.PageType,
		},
		AvoidActions:    []Action{action},
		OccurrenceCount: 1,
		Consequences:    append([]string(nil), consequences...),
		Alternatives:    append([]string(nil), alternatives...),
		SourceDomain:    ctx.Domain,
		SourceURL:       ctx.URL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	s.antiPatterns[key] = ap
	return *ap
}

// CheckAntiPatterns reports the anti-patterns that forbid action under ctx:
// the domain contains the pattern or the pattern contains the domain, and
// the action type matches; the selector is compared only if the
// anti-pattern specified one (spec.md §4.2 matching rule).
func (s *Store) CheckAntiPatterns(action Action, ctx Context) []AntiPattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []AntiPattern
	for _, ap := range s.antiPatterns {
		if !domainsOverlap(ap.SourceDomain, ctx.Domain) {
			continue
		}
		matched := false
		for _, avoid := range ap.AvoidActions {
			if avoid.Type != action.Type {
				continue
			}
			if avoid.Selector != "" && avoid.Selector != action.Selector {
				continue
			}
			matched = true
			break
		}
		if matched {
			out = append(out, *ap)
		}
	}
	return out
}

func domainsOverlap(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// GetAntiPatternsForDomain returns every stored anti-pattern sourced from a
// domain overlapping domain.
func (s *Store) GetAntiPatternsForDomain(domain string) []AntiPattern {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []AntiPattern
	for _, ap := range s.antiPatterns {
		if domainsOverlap(ap.SourceDomain, domain) {
			out = append(out, *ap)
		}
	}
	return out
}
