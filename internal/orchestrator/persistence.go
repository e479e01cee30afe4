package orchestrator

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ogoldberg/browsecore/internal/logging"
)

type preferenceDocument struct {
	Preferences []DomainPreference `json:"preferences"`
}

// LoadPreferences reads the Tier Preference Store document from
// cfg.FilePath, tolerating a missing or corrupt file by starting empty
// (spec.md §3.2, §7).
func (o *Orchestrator) LoadPreferences() error {
	data, err := os.ReadFile(o.cfg.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		logging.Get(logging.CategoryOrchestrator).Warn("failed to read tier preferences, starting empty",
			zap.String("path", o.cfg.FilePath), zap.Error(err))
		return nil
	}
	var doc preferenceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.Get(logging.CategoryOrchestrator).Warn("failed to parse tier preferences, starting empty",
			zap.String("path", o.cfg.FilePath), zap.Error(err))
		return nil
	}
	o.prefs.load(doc.Preferences)
	return nil
}

// SavePreferences atomically writes the Tier Preference Store document.
func (o *Orchestrator) SavePreferences() error {
	timer := logging.StartTimer(logging.CategoryOrchestrator, "SavePreferences")
	defer timer.Stop()

	doc := preferenceDocument{Preferences: o.prefs.export()}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		logging.Get(logging.CategoryOrchestrator).Warn("failed to marshal tier preferences", zap.Error(err))
		return nil
	}

	dir := filepath.Dir(o.cfg.FilePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logging.Get(logging.CategoryOrchestrator).Warn("failed to create tier preference dir", zap.Error(err))
		return nil
	}
	tmp, err := os.CreateTemp(dir, ".tierprefs-*.tmp")
	if err != nil {
		logging.Get(logging.CategoryOrchestrator).Warn("failed to persist tier preferences", zap.Error(err))
		return nil
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		logging.Get(logging.CategoryOrchestrator).Warn("failed to persist tier preferences", zap.Error(err))
		return nil
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return nil
	}
	if err := os.Rename(tmpPath, o.cfg.FilePath); err != nil {
		logging.Get(logging.CategoryOrchestrator).Warn("failed to persist tier preferences", zap.Error(err))
	}
	return nil
}
