package changetracker

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ogoldberg/browsecore/internal/logging"
)

type document struct {
	History map[string][]ChangeReport `json:"history"`
}

// Initialize loads the Change Tracker Store document from cfg.FilePath,
// starting empty on a missing or corrupt file (spec.md §3.2, §7).
func (s *Store) Initialize() error {
	data, err := os.ReadFile(s.cfg.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		logging.Get(logging.CategoryChangeTrack).Warn("failed to read change history, starting empty",
			zap.String("path", s.cfg.FilePath), zap.Error(err))
		return nil
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.Get(logging.CategoryChangeTrack).Warn("failed to parse change history, starting empty",
			zap.String("path", s.cfg.FilePath), zap.Error(err))
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = doc.History
	if s.history == nil {
		s.history = make(map[string][]ChangeReport)
	}
	return nil
}

// Save atomically writes the whole history document (spec.md §5
// "whole-document rewrite").
func (s *Store) Save() error {
	timer := logging.StartTimer(logging.CategoryChangeTrack, "Save")
	defer timer.Stop()

	s.mu.Lock()
	doc := document{History: s.history}
	data, err := json.MarshalIndent(doc, "", "  ")
	s.mu.Unlock()
	if err != nil {
		logging.Get(logging.CategoryChangeTrack).Warn("failed to marshal change history", zap.Error(err))
		return nil
	}

	dir := filepath.Dir(s.cfg.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logging.Get(logging.CategoryChangeTrack).Warn("failed to create change history dir", zap.Error(err))
		return nil
	}
	tmp, err := os.CreateTemp(dir, ".changehistory-*.tmp")
	if err != nil {
		logging.Get(logging.CategoryChangeTrack).Warn("failed to persist change history", zap.Error(err))
		return nil
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		logging.Get(logging.CategoryChangeTrack).Warn("failed to persist change history", zap.Error(err))
		return nil
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil
	}
	if err := os.Rename(tmpPath, s.cfg.FilePath); err != nil {
		logging.Get(logging.CategoryChangeTrack).Warn("failed to persist change history", zap.Error(err))
	}
	return nil
}
