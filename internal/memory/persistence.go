package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/ogoldberg/browsecore/internal/config"
	"github.com/ogoldberg/browsecore/internal/logging"
)

// document is the single JSON document a Store serializes to, matching
// spec.md §6.1's Memory Store document shape exactly.
type document struct {
	Skills            []Skill                 `json:"skills"`
	Workflows         []Workflow              `json:"workflows"`
	TrajectoryBuffer  []Trajectory            `json:"trajectoryBuffer"`
	VisitedDomains    []string                `json:"visitedDomains"`
	VisitedPageTypes  map[string]int          `json:"visitedPageTypes"`
	FailedExtractions map[string]int          `json:"failedExtractions"`
	SkillVersions     map[string][]SkillVersion `json:"skillVersions"`
	AntiPatterns      []AntiPattern           `json:"antiPatterns"`
	FeedbackLog       []Feedback              `json:"feedbackLog"`
	LastSaved         int64                   `json:"lastSaved"`
	Config            config.MemoryConfig     `json:"config"`
}

// Initialize loads the persisted document at cfg.FilePath into the store.
// A missing file is not an error: the store starts empty (spec.md §3.2,
// §7 "Read failures start empty").
func (s *Store) Initialize() error {
	log := logging.Get(logging.CategoryMemory)

	data, err := os.ReadFile(s.cfg.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		log.Warn("failed to read memory store, starting empty", zap.String("path", s.cfg.FilePath), zap.Error(err))
		return nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn("failed to parse memory store, starting empty", zap.String("path", s.cfg.FilePath), zap.Error(err))
		return nil
	}

	s.mu.Lock()
	s.loadDocumentLocked(doc)
	s.mu.Unlock()

	// Skills idle past the decay window decay on startup as well as on demand.
	s.ApplySkillDecay()
	return nil
}

func (s *Store) loadDocumentLocked(doc document) {
	s.skills = make(map[string]*Skill, len(doc.Skills))
	for _, sk := range doc.Skills {
		cp := cloneSkill(sk)
		s.skills[cp.ID] = &cp
	}

	s.versions = make(map[string][]SkillVersion, len(doc.SkillVersions))
	for id, vs := range doc.SkillVersions {
		s.versions[id] = vs
	}

	s.workflows = make(map[string]*Workflow, len(doc.Workflows))
	for _, wf := range doc.Workflows {
		w := wf
		s.workflows[w.ID] = &w
	}

	s.antiPatterns = make(map[string]*AntiPattern, len(doc.AntiPatterns))
	for _, ap := range doc.AntiPatterns {
		a := ap
		key := ""
		if len(a.AvoidActions) > 0 {
			key = antiPatternKey(a.SourceDomain, a.AvoidActions[0])
		} else {
			key = antiPatternKey(a.SourceDomain, Action{})
		}
		s.antiPatterns[key] = &a
	}

	s.feedbackLog = doc.FeedbackLog
	s.trajectoryBuffer = doc.TrajectoryBuffer

	s.visitedDomains = make(map[string]bool, len(doc.VisitedDomains))
	for _, d := range doc.VisitedDomains {
		s.visitedDomains[d] = true
	}
	s.visitedPageTypes = doc.VisitedPageTypes
	if s.visitedPageTypes == nil {
		s.visitedPageTypes = make(map[string]int)
	}
	s.failedExtractions = doc.FailedExtractions
	if s.failedExtractions == nil {
		s.failedExtractions = make(map[string]int)
	}
}

func (s *Store) toDocumentLocked() document {
	skills := make([]Skill, 0, len(s.skills))
	for _, sk := range s.skills {
		skills = append(skills, cloneSkill(*sk))
	}

	versions := make(map[string][]SkillVersion, len(s.versions))
	for id, vs := range s.versions {
		versions[id] = append([]SkillVersion(nil), vs...)
	}

	workflows := make([]Workflow, 0, len(s.workflows))
	for _, wf := range s.workflows {
		workflows = append(workflows, *wf)
	}

	antiPatterns := make([]AntiPattern, 0, len(s.antiPatterns))
	for _, ap := range s.antiPatterns {
		antiPatterns = append(antiPatterns, *ap)
	}

	domains := make([]string, 0, len(s.visitedDomains))
	for d := range s.visitedDomains {
		domains = append(domains, d)
	}

	trajectoryBuffer := s.trajectoryBuffer
	if len(trajectoryBuffer) > 50 {
		trajectoryBuffer = trajectoryBuffer[len(trajectoryBuffer)-50:]
	}

	return document{
		Skills:            skills,
		Workflows:         workflows,
		TrajectoryBuffer:  append([]Trajectory(nil), trajectoryBuffer...),
		VisitedDomains:    domains,
		VisitedPageTypes:  s.visitedPageTypes,
		FailedExtractions: s.failedExtractions,
		SkillVersions:     versions,
		AntiPatterns:      antiPatterns,
		FeedbackLog:       s.feedbackLog,
		LastSaved:         time.Now().UnixMilli(),
		Config:            s.cfg,
	}
}

// Save serializes the whole store as a single JSON document, written
// atomically via a temp-file-then-rename so readers never observe a
// partial write (spec.md §5 "whole-document rewrite — no partial writes
// are observable"). Write failures are logged, not returned to the
// caller (spec.md §7).
func (s *Store) Save() error {
	timer := logging.StartTimer(logging.CategoryMemory, "Save")
	defer timer.Stop()

	s.mu.Lock()
	doc := s.toDocumentLocked()
	s.lastSaved = time.Now()
	s.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		logging.Get(logging.CategoryMemory).Warn("failed to marshal memory store", zap.Error(err))
		return nil
	}

	if err := atomicWriteFile(s.cfg.FilePath, data); err != nil {
		logging.Get(logging.CategoryMemory).Warn("failed to persist memory store", zap.String("path", s.cfg.FilePath), zap.Error(err))
		return nil
	}
	return nil
}

func atomicWriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".memory-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
