package memory

import (
	"fmt"
	"sort"
	"time"

	"github.com/ogoldberg/browsecore/internal/logging"
)

// CreateWorkflow registers a named composition of skills with transitions
// between them (spec.md §3.1 Workflow).
func (s *Store) CreateWorkflow(name, description string, skillIDs []string, transitions []Transition, preconditions Preconditions) (Workflow, error) {
	timer := logging.StartTimer(logging.CategoryMemory, "CreateWorkflow")
	defer timer.Stop()

	if len(skillIDs) < 2 {
		return Workflow{}, fmt.Errorf("workflow requires at least 2 skill ids, got %d", len(skillIDs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range skillIDs {
		if _, ok := s.skills[id]; !ok {
			return Workflow{}, fmt.Errorf("skill not found: %s", id)
		}
	}
	inWorkflow := make(map[string]bool, len(skillIDs))
	for _, id := range skillIDs {
		inWorkflow[id] = true
	}
	for _, tr := range transitions {
		if !inWorkflow[tr.From] || !inWorkflow[tr.To] {
			return Workflow{}, fmt.Errorf("transition %s -> %s references a skill outside the workflow", tr.From, tr.To)
		}
	}

	wf := Workflow{
		ID:            newID(),
		Name:          name,
		Description:   description,
		SkillIDs:      append([]string(nil), skillIDs...),
		Transitions:   append([]Transition(nil), transitions...),
		Preconditions: preconditions,
		CreatedAt:     time.Now(),
	}
	s.workflows[wf.ID] = &wf
	return wf, nil
}

// GetWorkflow returns a defensive copy of a stored workflow.
func (s *Store) GetWorkflow(id string) (Workflow, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, ok := s.workflows[id]
	if !ok {
		return Workflow{}, false
	}
	return *wf, true
}

// GetAllWorkflows returns every stored workflow, sorted by id.
func (s *Store) GetAllWorkflows() []Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		out = append(out, *wf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// DetectPotentialWorkflows scans the recorded trajectory buffer for
// repeated domain-to-domain transitions: every pair of consecutive
// successful trajectories is counted by its (from-domain, to-domain) pair,
// and each pair seen at least twice becomes a workflow candidate. The
// candidates carry a name and description only; no skill ids or
// transitions are filled in (spec.md §4.2 workflow detection).
func (s *Store) DetectPotentialWorkflows() []Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()

	seqCounts := make(map[string]int)
	seqDomains := make(map[string][]string)

	for i := 0; i+1 < len(s.trajectoryBuffer); i++ {
		a, b := s.trajectoryBuffer[i], s.trajectoryBuffer[i+1]
		if !a.Success || !b.Success {
			continue
		}
		key := a.Domain + ">" + b.Domain
		seqCounts[key]++
		seqDomains[key] = []string{a.Domain, b.Domain}
	}

	var candidates []Workflow
	for key, count := range seqCounts {
		if count < 2 {
			continue
		}
		domains := seqDomains[key]
		candidates = append(candidates, Workflow{
			ID:          newID(),
			Name:        "candidate:" + key,
			Description: fmt.Sprintf("Recurring sequence across %v, seen %d times", domains, count),
			CreatedAt:   time.Now(),
		})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Name < candidates[j].Name })
	return candidates
}
