package memory

import (
	"fmt"
	"time"

	"github.com/ogoldberg/browsecore/internal/logging"
)

// appendVersionLocked snapshots sk as the next version for its id, dropping
// the oldest version (FIFO) once at cfg.MaxVersionsPerSkill capacity
// (spec.md §4.2 versioning, P5). Caller must hold s.mu.
func (s *Store) appendVersionLocked(id string, sk Skill, reason ChangeReason, description string) {
	max := s.cfg.MaxVersionsPerSkill
	if max <= 0 {
		max = 10
	}

	existing := s.versions[id]
	nextVersion := 1
	if len(existing) > 0 {
		nextVersion = existing[len(existing)-1].Version + 1
	}

	v := SkillVersion{
		Version:           nextVersion,
		CreatedAt:         time.Now(),
		ActionSequence:    cloneActions(sk.ActionSequence),
		Embedding:         append([]float32(nil), sk.Embedding...),
		Metrics:           sk.Metrics,
		SuccessRate:       sk.Metrics.SuccessRate(),
		ChangeReason:      reason,
		ChangeDescription: description,
	}

	existing = append(existing, v)
	if len(existing) > max {
		existing = existing[len(existing)-max:]
	}
	s.versions[id] = existing
}

// CreateVersion snapshots a skill's current state as a new version.
func (s *Store) CreateVersion(id string, reason ChangeReason, description string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sk, ok := s.skills[id]
	if !ok {
		return fmt.Errorf("skill not found: %s", id)
	}
	s.appendVersionLocked(id, *sk, reason, description)
	return nil
}

// GetVersionHistory returns a defensive copy of a skill's version history,
// oldest first.
func (s *Store) GetVersionHistory(id string) []SkillVersion {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.versions[id]
	out := make([]SkillVersion, len(existing))
	copy(out, existing)
	return out
}

// GetBestVersion returns the version with the highest success rate.
func (s *Store) GetBestVersion(id string) (SkillVersion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	versions := s.versions[id]
	if len(versions) == 0 {
		return SkillVersion{}, false
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if v.SuccessRate > best.SuccessRate {
			best = v
		}
	}
	return best, true
}

// RollbackResult reports what RollbackSkill did.
type RollbackResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Version int    `json:"version,omitempty"`
}

// RollbackSkill reverts a skill to targetVersion (spec.md §4.2): with no
// target, rolls back to the second-to-last version if at least two exist,
// otherwise the only one. Before applying the target snapshot, the current
// state is itself snapshotted with reason "rollback". Both the action
// sequence and metrics revert — this is a deliberate, spec-mandated
// behavior, not an oversight (spec.md §9 Open Questions).
func (s *Store) RollbackSkill(id string, targetVersion *int) RollbackResult {
	timer := logging.StartTimer(logging.CategoryMemory, "RollbackSkill")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	sk, ok := s.skills[id]
	if !ok {
		return RollbackResult{Success: false, Reason: "skill not found"}
	}

	versions := s.versions[id]
	if len(versions) == 0 {
		return RollbackResult{Success: false, Reason: "no version history"}
	}

	var target SkillVersion
	if targetVersion != nil {
		found := false
		for _, v := range versions {
			if v.Version == *targetVersion {
				target = v
				found = true
				break
			}
		}
		if !found {
			return RollbackResult{Success: false, Reason: "target version not found"}
		}
	} else if len(versions) >= 2 {
		target = versions[len(versions)-2]
	} else {
		target = versions[0]
	}

	// Snapshot current state before applying the rollback.
	s.appendVersionLocked(id, *sk, ChangeReasonRollback, fmt.Sprintf("pre-rollback snapshot (rolling back to v%d)", target.Version))

	sk.ActionSequence = cloneActions(target.ActionSequence)
	sk.Embedding = append([]float32(nil), target.Embedding...)
	sk.Metrics = target.Metrics
	sk.UpdatedAt = time.Now()

	return RollbackResult{Success: true, Version: target.Version}
}

// CheckForAutoRollback reports whether a skill's current success rate has
// dropped enough from its best historical version to warrant an automatic
// rollback (spec.md §4.2): bestHistoricalSuccessRate - currentSuccessRate >
// threshold, and timesUsed >= 5.
func (s *Store) CheckForAutoRollback(id string, threshold float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sk, ok := s.skills[id]
	if !ok {
		return false
	}
	if sk.Metrics.TimesUsed < 5 {
		return false
	}

	versions := s.versions[id]
	if len(versions) == 0 {
		return false
	}
	best := versions[0].SuccessRate
	for _, v := range versions[1:] {
		if v.SuccessRate > best {
			best = v.SuccessRate
		}
	}

	current := sk.Metrics.SuccessRate()
	if threshold <= 0 {
		threshold = s.cfg.AutoRollbackThresh
	}
	return best-current > threshold
}
