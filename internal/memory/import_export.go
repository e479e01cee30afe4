package memory

import (
	"encoding/json"
	"time"
)

// ExportMemory serializes the full store to the same JSON document shape
// used for persistence (spec.md §6.3 exportMemory).
func (s *Store) ExportMemory() ([]byte, error) {
	s.mu.Lock()
	doc := s.toDocumentLocked()
	s.mu.Unlock()
	return json.MarshalIndent(doc, "", "  ")
}

// ImportSkills loads skills from a previously exported document. In
// "replace" mode (merge=false) the imported skills overwrite the store's
// skills outright. In "merge" mode (merge=true), a skill with a matching
// ID has its successCount and timesUsed summed with the existing one and
// no other field changes; a skill with a new ID is inserted as-is.
// maxSkills capping, when the import pushes the store over capacity, is
// applied after the full import completes rather than mid-loop — this
// matches spec.md §9's documented choice for the "cap before or after
// import" Open Question, since capping mid-import would make eviction
// order depend on import-list ordering rather than final LRU scores.
func (s *Store) ImportSkills(data []byte, merge bool) (int, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	imported := 0
	for _, sk := range doc.Skills {
		if existing, ok := s.skills[sk.ID]; ok && merge {
			existing.Metrics.SuccessCount += sk.Metrics.SuccessCount
			existing.Metrics.TimesUsed += sk.Metrics.TimesUsed
			imported++
			continue
		}
		cp := cloneSkill(sk)
		s.skills[cp.ID] = &cp
		imported++
	}

	for id, vs := range doc.SkillVersions {
		if merge {
			s.versions[id] = append(s.versions[id], vs...)
		} else {
			s.versions[id] = vs
		}
	}

	s.enforceCapacityLocked()
	return imported, nil
}

// enforceCapacityLocked evicts the lowest-scoring skill repeatedly until
// the store is at or under cfg.MaxSkills. Caller must hold s.mu.
func (s *Store) enforceCapacityLocked() {
	maxSkills := s.cfg.MaxSkills
	if maxSkills <= 0 {
		maxSkills = 1000
	}
	now := time.Now()
	for len(s.skills) > maxSkills {
		var worstID string
		first := true
		var worstScore float64
		for id, sk := range s.skills {
			score := lruScore(*sk, now)
			if first || score < worstScore {
				worstScore = score
				worstID = id
				first = false
			}
		}
		if worstID == "" {
			break
		}
		delete(s.skills, worstID)
		delete(s.versions, worstID)
	}
}
