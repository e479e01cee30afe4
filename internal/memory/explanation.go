package memory

import (
	"fmt"
	"strings"
)

// GenerateSkillExplanation renders a human-readable account of why a skill
// matched and how it has performed, for surfacing to an operator deciding
// whether to trust an automated action (spec.md §4.2, §6.3).
func (s *Store) GenerateSkillExplanation(id string) (string, error) {
	sk, ok := s.GetSkill(id)
	if !ok {
		return "", fmt.Errorf("skill not found: %s", id)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", sk.Name, sk.Description)
	fmt.Fprintf(&b, "Applies when domain matches %v", sk.Preconditions.DomainPatterns)
	if sk.Preconditions.PageType != "" && sk.Preconditions.PageType != PageTypeUnknown {
		fmt.Fprintf(&b, " and page type is %q", sk.Preconditions.PageType)
	}
	if len(sk.Preconditions.RequiredSelectors) > 0 {
		fmt.Fprintf(&b, " with selectors %v present", sk.Preconditions.RequiredSelectors)
	}
	b.WriteString(".\n")

	fmt.Fprintf(&b, "Used %d times, succeeded %d, failed %d (%.0f%% success rate).\n",
		sk.Metrics.TimesUsed, sk.Metrics.SuccessCount, sk.Metrics.FailureCount, sk.Metrics.SuccessRate()*100)

	if auto := s.CheckForAutoRollback(id, 0); auto {
		b.WriteString("Success rate has dropped significantly from its best historical version; consider rolling back.\n")
	}

	if antis := s.GetAntiPatternsForDomain(sk.SourceDomain); len(antis) > 0 {
		fmt.Fprintf(&b, "%d known anti-pattern(s) recorded for %s.\n", len(antis), sk.SourceDomain)
	}

	return b.String(), nil
}
