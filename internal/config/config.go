// Package config loads and hot-reloads browsecore configuration.
// Structured the way the teacher's internal/config/config.go lays out a
// single top-level Config with one sub-struct per subsystem, but backed
// by strict YAML decoding: unknown keys are rejected at load time rather
// than silently ignored (Design Notes §9, "arbitrary-shape options
// objects").
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MemoryConfig mirrors spec.md §6.2's Procedural Memory configuration table.
type MemoryConfig struct {
	EmbeddingDim         int     `yaml:"embedding_dim"`
	SimilarityThreshold  float64 `yaml:"similarity_threshold"`
	MaxSkills            int     `yaml:"max_skills"`
	MinTrajectoryLength  int     `yaml:"min_trajectory_length"`
	MergeThreshold       float64 `yaml:"merge_threshold"`
	FilePath             string  `yaml:"file_path"`
	MaxVersionsPerSkill  int     `yaml:"max_versions_per_skill"`
	MaxFeedbackLogSize   int     `yaml:"max_feedback_log_size"`
	AutoRollbackThresh   float64 `yaml:"auto_rollback_threshold"`
	DecayAfterDays       float64 `yaml:"decay_after_days"`
	DecayRate            float64 `yaml:"decay_rate"`
	MinUsesForPrune      int     `yaml:"min_uses_for_prune"`
	MinSuccessRateForUse float64 `yaml:"min_success_rate"`
}

// DefaultMemoryConfig returns spec.md §6.2 defaults.
func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		EmbeddingDim:         64,
		SimilarityThreshold:  0.70,
		MaxSkills:            1000,
		MinTrajectoryLength:  2,
		MergeThreshold:       0.90,
		FilePath:             ".browsecore/memory.json",
		MaxVersionsPerSkill:  10,
		MaxFeedbackLogSize:   500,
		AutoRollbackThresh:   0.30,
		DecayAfterDays:       30,
		DecayRate:            0.1,
		MinUsesForPrune:      3,
		MinSuccessRateForUse: 0.3,
	}
}

// OrchestratorConfig mirrors spec.md §6.2's orchestrator defaults plus the
// configurable failure-promotion threshold called out in Open Questions.
type OrchestratorConfig struct {
	MinContentLength          int           `yaml:"min_content_length"`
	TierTimeout               time.Duration `yaml:"tier_timeout"`
	MaxLatencyMs              int64         `yaml:"max_latency_ms"` // 0 = unset
	MaxCostTier               string        `yaml:"max_cost_tier"`  // "" = unset
	FreshnessRequirement      string        `yaml:"freshness_requirement"`
	FailurePromotionThreshold int           `yaml:"failure_promotion_threshold"`
	FilePath                  string        `yaml:"file_path"`
}

// DefaultOrchestratorConfig returns spec.md §6.2 defaults.
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		MinContentLength:          500,
		TierTimeout:               30 * time.Second,
		FreshnessRequirement:      "any",
		FailurePromotionThreshold: 3,
		FilePath:                  ".browsecore/tier_preferences.json",
	}
}

// ChangeTrackerConfig controls the Field-Level Change Tracker store.
type ChangeTrackerConfig struct {
	Language        string `yaml:"language"`
	MaxHistoryPerURL int   `yaml:"max_history_per_url"`
	FilePath        string `yaml:"file_path"`
}

// DefaultChangeTrackerConfig returns sane defaults.
func DefaultChangeTrackerConfig() ChangeTrackerConfig {
	return ChangeTrackerConfig{
		Language:         "en",
		MaxHistoryPerURL: 50,
		FilePath:         ".browsecore/change_history.json",
	}
}

// LoggingConfig controls the zap-backed logging sink.
type LoggingConfig struct {
	DebugMode bool `yaml:"debug_mode"`
}

// Config is the top-level browsecore configuration document.
type Config struct {
	Memory        MemoryConfig        `yaml:"memory"`
	Orchestrator  OrchestratorConfig  `yaml:"orchestrator"`
	ChangeTracker ChangeTrackerConfig `yaml:"change_tracker"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// DefaultConfig returns the fully-defaulted configuration document.
func DefaultConfig() *Config {
	return &Config{
		Memory:        DefaultMemoryConfig(),
		Orchestrator:  DefaultOrchestratorConfig(),
		ChangeTracker: DefaultChangeTrackerConfig(),
		Logging:       LoggingConfig{DebugMode: false},
	}
}

// Load reads a YAML config file, strictly rejecting unrecognized fields,
// and fills in any zero-valued fields from DefaultConfig. A missing file
// is not an error: callers get defaults (mirrors the teacher's tolerant
// config bootstrap in internal/config/config.go).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var loaded Config
	if err := dec.Decode(&loaded); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}

	mergeDefaults(&loaded, cfg)
	return &loaded, nil
}

// mergeDefaults fills zero-valued scalar fields in loaded from defaults.
// This lets a user's config.yaml specify only the fields they care about.
func mergeDefaults(loaded *Config, defaults *Config) {
	if loaded.Memory.EmbeddingDim == 0 {
		loaded.Memory.EmbeddingDim = defaults.Memory.EmbeddingDim
	}
	if loaded.Memory.SimilarityThreshold == 0 {
		loaded.Memory.SimilarityThreshold = defaults.Memory.SimilarityThreshold
	}
	if loaded.Memory.MaxSkills == 0 {
		loaded.Memory.MaxSkills = defaults.Memory.MaxSkills
	}
	if loaded.Memory.MinTrajectoryLength == 0 {
		loaded.Memory.MinTrajectoryLength = defaults.Memory.MinTrajectoryLength
	}
	if loaded.Memory.MergeThreshold == 0 {
		loaded.Memory.MergeThreshold = defaults.Memory.MergeThreshold
	}
	if loaded.Memory.FilePath == "" {
		loaded.Memory.FilePath = defaults.Memory.FilePath
	}
	if loaded.Memory.MaxVersionsPerSkill == 0 {
		loaded.Memory.MaxVersionsPerSkill = defaults.Memory.MaxVersionsPerSkill
	}
	if loaded.Memory.MaxFeedbackLogSize == 0 {
		loaded.Memory.MaxFeedbackLogSize = defaults.Memory.MaxFeedbackLogSize
	}
	if loaded.Memory.AutoRollbackThresh == 0 {
		loaded.Memory.AutoRollbackThresh = defaults.Memory.AutoRollbackThresh
	}
	if loaded.Memory.DecayAfterDays == 0 {
		loaded.Memory.DecayAfterDays = defaults.Memory.DecayAfterDays
	}
	if loaded.Memory.DecayRate == 0 {
		loaded.Memory.DecayRate = defaults.Memory.DecayRate
	}
	if loaded.Memory.MinUsesForPrune == 0 {
		loaded.Memory.MinUsesForPrune = defaults.Memory.MinUsesForPrune
	}
	if loaded.Memory.MinSuccessRateForUse == 0 {
		loaded.Memory.MinSuccessRateForUse = defaults.Memory.MinSuccessRateForUse
	}

	if loaded.Orchestrator.MinContentLength == 0 {
		loaded.Orchestrator.MinContentLength = defaults.Orchestrator.MinContentLength
	}
	if loaded.Orchestrator.TierTimeout == 0 {
		loaded.Orchestrator.TierTimeout = defaults.Orchestrator.TierTimeout
	}
	if loaded.Orchestrator.FreshnessRequirement == "" {
		loaded.Orchestrator.FreshnessRequirement = defaults.Orchestrator.FreshnessRequirement
	}
	if loaded.Orchestrator.FailurePromotionThreshold == 0 {
		loaded.Orchestrator.FailurePromotionThreshold = defaults.Orchestrator.FailurePromotionThreshold
	}
	if loaded.Orchestrator.FilePath == "" {
		loaded.Orchestrator.FilePath = defaults.Orchestrator.FilePath
	}

	if loaded.ChangeTracker.Language == "" {
		loaded.ChangeTracker.Language = defaults.ChangeTracker.Language
	}
	if loaded.ChangeTracker.MaxHistoryPerURL == 0 {
		loaded.ChangeTracker.MaxHistoryPerURL = defaults.ChangeTracker.MaxHistoryPerURL
	}
	if loaded.ChangeTracker.FilePath == "" {
		loaded.ChangeTracker.FilePath = defaults.ChangeTracker.FilePath
	}
}
