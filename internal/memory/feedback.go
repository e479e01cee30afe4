package memory

import (
	"github.com/ogoldberg/browsecore/internal/logging"
)

// RecordFeedback appends user feedback for a skill (spec.md §4.2, §6.3
// recordFeedback). The log is capped at 2x cfg.MaxFeedbackLogSize before
// being trimmed back down to the max, keeping the most recent entries.
func (s *Store) RecordFeedback(fb Feedback) {
	timer := logging.StartTimer(logging.CategoryMemory, "RecordFeedback")
	defer timer.Stop()

	fb.Processed = true

	s.mu.Lock()

	s.feedbackLog = append(s.feedbackLog, fb)

	maxSize := s.cfg.MaxFeedbackLogSize
	if maxSize <= 0 {
		maxSize = 500
	}
	if len(s.feedbackLog) > maxSize*2 {
		s.feedbackLog = append([]Feedback(nil), s.feedbackLog[len(s.feedbackLog)-maxSize:]...)
	}

	if fb.Rating == RatingNegative {
		if sk, ok := s.skills[fb.SkillID]; ok {
			sk.Metrics.FailureCount++
			sk.Metrics.TimesUsed++
		}
	} else if fb.Rating == RatingPositive {
		if sk, ok := s.skills[fb.SkillID]; ok {
			sk.Metrics.SuccessCount++
			sk.Metrics.TimesUsed++
		}
	}

	s.mu.Unlock()

	if fb.Rating == RatingNegative && s.CheckForAutoRollback(fb.SkillID, 0) {
		s.RollbackSkill(fb.SkillID, nil)
	}
}

// FeedbackSummary aggregates feedback counts for a skill.
type FeedbackSummary struct {
	SkillID  string `json:"skill_id"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Total    int    `json:"total"`
}

// GetFeedbackSummary aggregates all recorded feedback for skillID.
func (s *Store) GetFeedbackSummary(skillID string) FeedbackSummary {
	s.mu.Lock()
	defer s.mu.Unlock()

	summary := FeedbackSummary{SkillID: skillID}
	for _, fb := range s.feedbackLog {
		if fb.SkillID != skillID {
			continue
		}
		summary.Total++
		switch fb.Rating {
		case RatingPositive:
			summary.Positive++
		case RatingNegative:
			summary.Negative++
		}
	}
	return summary
}
