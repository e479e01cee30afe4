package memory

import (
	"time"

	"github.com/ogoldberg/browsecore/internal/logging"
)

// ApplySkillDecay scales down the success rate contribution of skills that
// haven't been used in longer than cfg.DecayAfterDays. The decay factor is
// max(0.1, 1 - weeksOverdue*decayRate), applied only to successCount:
// failureCount and timesUsed are left untouched so SuccessRate() genuinely
// degrades toward MinSuccessRateForUse and timesUsed keeps accumulating
// toward MinUsesForPrune instead of shrinking back below it (spec.md §4.2
// decay policy).
func (s *Store) ApplySkillDecay() int {
	timer := logging.StartTimer(logging.CategoryMemory, "ApplySkillDecay")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	decayAfter := s.cfg.DecayAfterDays
	rate := s.cfg.DecayRate
	now := time.Now()
	decayed := 0

	for _, sk := range s.skills {
		if sk.Metrics.LastUsed.IsZero() {
			continue
		}
		daysSince := now.Sub(sk.Metrics.LastUsed).Hours() / 24.0
		if daysSince <= decayAfter {
			continue
		}
		weeksOverdue := (daysSince - decayAfter) / 7.0
		factor := 1.0 - weeksOverdue*rate
		if factor < 0.1 {
			factor = 0.1
		}

		sk.Metrics.SuccessCount = scaleCount(sk.Metrics.SuccessCount, factor)
		sk.UpdatedAt = now
		decayed++
	}
	return decayed
}

func scaleCount(count int64, factor float64) int64 {
	scaled := int64(float64(count) * factor)
	if count > 0 && scaled == 0 {
		return 1
	}
	return scaled
}

// PruneFailedSkills removes every skill in the Degraded state (timesUsed >=
// cfg.MinUsesForPrune and successRate < cfg.MinSuccessRateForUse), per
// spec.md §4.2's state machine terminal transition to Evicted.
func (s *Store) PruneFailedSkills() []string {
	timer := logging.StartTimer(logging.CategoryMemory, "PruneFailedSkills")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	minUses := s.cfg.MinUsesForPrune
	minRate := s.cfg.MinSuccessRateForUse

	var pruned []string
	for id, sk := range s.skills {
		if sk.Metrics.TimesUsed >= int64(minUses) && sk.Metrics.SuccessRate() < minRate {
			pruned = append(pruned, id)
		}
	}
	for _, id := range pruned {
		delete(s.skills, id)
		delete(s.versions, id)
	}
	return pruned
}
