package memory

import (
	"sort"

	"github.com/ogoldberg/browsecore/internal/kernel"
	"github.com/ogoldberg/browsecore/internal/logging"
)

// Context is the Page Context a caller retrieves skills against. It embeds
// kernel.PageContext (for the similarity vector) and carries the raw
// fields needed to evaluate a skill's Preconditions directly.
type Context struct {
	kernel.PageContext
}

// PreconditionsMet reports whether ctx satisfies p: domain patterns match
// (or none specified), page type matches (or unknown/unset), and every
// required selector is present in the context's available selectors.
func PreconditionsMet(p Preconditions, ctx Context) bool {
	if len(p.DomainPatterns) > 0 && !domainPatternsMatch(p.DomainPatterns, ctx.Domain) {
		return false
	}
	if p.PageType != "" && p.PageType != PageTypeUnknown && p.PageType != ctx.PageType {
		return false
	}
	if len(p.RequiredSelectors) > 0 {
		available := make(map[string]bool, len(ctx.AvailableSelectors))
		for _, sel := range ctx.AvailableSelectors {
			available[sel] = true
		}
		for _, req := range p.RequiredSelectors {
			if !available[req] {
				return false
			}
		}
	}
	return true
}

// RetrieveSkills ranks skills by cosine(embedding, contextEmbedding) +
// 0.2*preconditionsMet, tie-broken by higher similarity, and returns at
// most topK matches whose cosine >= similarityThreshold or whose
// preconditions are fully met (spec.md §4.2).
func (s *Store) RetrieveSkills(ctx Context, topK int) []Match {
	timer := logging.StartTimer(logging.CategoryMemory, "RetrieveSkills")
	defer timer.Stop()

	if topK <= 0 {
		topK = 10
	}

	contextEmbedding := kernel.EmbedPageContext(ctx.PageContext)

	s.mu.Lock()
	threshold := s.cfg.SimilarityThreshold
	candidates := make([]Skill, 0, len(s.skills))
	for _, sk := range s.skills {
		candidates = append(candidates, cloneSkill(*sk))
	}
	s.mu.Unlock()

	matches := make([]Match, 0, len(candidates))
	for _, sk := range candidates {
		sim := kernel.CosineSimilarity(sk.Embedding, contextEmbedding)
		met := PreconditionsMet(sk.Preconditions, ctx)

		if sim < threshold && !met {
			continue
		}

		score := sim
		if met {
			score += 0.2
		}
		matches = append(matches, Match{
			Skill:            sk,
			Similarity:       sim,
			PreconditionsMet: met,
			Score:            score,
		})
	}

	// spec.md P3: retrieval monotonicity — when preconditionsMet is equal,
	// higher cosine similarity sorts first. Score already folds in the
	// 0.2 preconditions bonus, so sorting by score (tie-break similarity)
	// satisfies both the ranking rule and the monotonicity property.
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Skill.ID < matches[j].Skill.ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}
