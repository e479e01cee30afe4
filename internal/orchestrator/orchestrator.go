package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ogoldberg/browsecore/internal/config"
	"github.com/ogoldberg/browsecore/internal/logging"
)

// Orchestrator runs the tiered fetch selection algorithm (spec.md §4.3).
type Orchestrator struct {
	cfg       config.OrchestratorConfig
	executors map[Tier]TierExecutor
	prefs     *preferenceStore
	cache     *resultCache
	inflight  singleflight.Group
}

// New builds an Orchestrator. executors supplies the TierExecutor for
// each tier the caller has wired up; a tier with no executor is always
// skipped with reason "not_configured".
func New(cfg config.OrchestratorConfig, executors map[Tier]TierExecutor) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		executors: executors,
		prefs:     newPreferenceStore(cfg.FailurePromotionThreshold),
		cache:     newResultCache(10 * time.Minute),
	}
}

func domainOf(url string) string {
	rest := url
	for _, prefix := range []string{"https://", "http://"} {
		if len(rest) > len(prefix) && rest[:len(prefix)] == prefix {
			rest = rest[len(prefix):]
			break
		}
	}
	for i, c := range rest {
		if c == '/' || c == '?' || c == '#' {
			return rest[:i]
		}
	}
	return rest
}

// Fetch runs the selection & fallback algorithm of spec.md §4.3.
func (o *Orchestrator) Fetch(ctx context.Context, url string, opts Options) TieredFetchResult {
	timer := logging.StartTimer(logging.CategoryOrchestrator, "Fetch")
	defer timer.Stop()

	domain := domainOf(url)
	if opts.MaxLatencyMs <= 0 {
		opts.MaxLatencyMs = o.cfg.MaxLatencyMs
	}
	if opts.MaxCostTier == "" {
		opts.MaxCostTier = Tier(o.cfg.MaxCostTier)
	}
	freshness := opts.FreshnessReq
	if freshness == "" {
		freshness = Freshness(o.cfg.FreshnessRequirement)
	}
	if freshness == "" {
		freshness = FreshnessAny
	}

	budget := BudgetInfo{
		TiersSkipped:     make(map[Tier]string),
		FreshnessApplied: freshness,
	}

	if freshness != FreshnessRealtime {
		if cached, ok := o.cache.get(url); ok {
			budget.CacheHit = true
			return TieredFetchResult{Success: true, Result: cached, Budget: budget}
		}
	}

	// Concurrent callers fetching the same URL under the same budget
	// collapse onto a single tier-escalation run (spec.md §5: duplicate
	// work during a suspension point must not race the serial mailbox).
	key := fmt.Sprintf("%s|%s|%s|%s|%d", url, opts.ForceTier, opts.MaxCostTier, freshness, opts.MaxLatencyMs)
	v, _, _ := o.inflight.Do(key, func() (interface{}, error) {
		return o.fetchTiers(ctx, url, opts, domain, freshness, budget)
	})
	return v.(TieredFetchResult)
}

func (o *Orchestrator) fetchTiers(ctx context.Context, url string, opts Options, domain string, freshness Freshness, budget BudgetInfo) (TieredFetchResult, error) {
	minContentLength := opts.MinContentLength
	if minContentLength <= 0 {
		minContentLength = o.cfg.MinContentLength
	}
	tierTimeout := opts.TierTimeout
	if tierTimeout <= 0 {
		tierTimeout = o.cfg.TierTimeout
	}

	var candidates []Tier
	if opts.ForceTier != "" {
		candidates = []Tier{opts.ForceTier}
	} else {
		start := o.prefs.get(domain).PreferredTier
		if start == "" {
			start = TierIntelligence
		}
		candidates = tiersFrom(start)
	}

	start := time.Now()
	var best *Result
	var lastErr *FetchError

	for i, tier := range candidates {
		if opts.MaxCostTier != "" && tierCost(tier) > tierCost(opts.MaxCostTier) {
			budget.TiersSkipped[tier] = "max_cost_tier"
			continue
		}
		if opts.MaxLatencyMs > 0 && time.Since(start).Milliseconds() >= opts.MaxLatencyMs {
			budget.LatencyExceeded = true
			break
		}
		executor, ok := o.executors[tier]
		if !ok {
			budget.TiersSkipped[tier] = "not_configured"
			continue
		}
		if tier == TierPlaywright && !executor.Available() {
			budget.TiersSkipped[tier] = "no_playwright"
			continue
		}

		budget.TiersAttempted = append(budget.TiersAttempted, tier)
		tierCtx, cancel := context.WithTimeout(ctx, tierTimeout)
		result, err := executor.Fetch(tierCtx, url, opts)
		cancel()
		result.Tier = tier

		elapsed := time.Since(start)
		tierOK := err == nil && result.valid(minContentLength)
		o.prefs.recordOutcome(domain, tier, tierOK, elapsed)

		if err != nil {
			lastErr = classifyError(tier, err)
			continue
		}
		if !result.valid(minContentLength) {
			lastErr = &FetchError{Class: ErrValidation, Tier: tier, Message: "content failed validation"}
			best = keepBetter(best, result)
			continue
		}

		budget.TotalLatency = time.Since(start)
		budget.FallbackOccurred = len(budget.TiersAttempted) > 1
		if opts.MaxCostTier != "" {
			for _, later := range candidates[i+1:] {
				if tierCost(later) > tierCost(opts.MaxCostTier) {
					budget.TiersSkipped[later] = "max_cost_tier"
				}
			}
		}
		if freshness != FreshnessRealtime {
			o.cache.put(url, result)
		}
		return TieredFetchResult{Success: true, Result: result, Budget: budget}, nil
	}

	budget.TotalLatency = time.Since(start)
	budget.FallbackOccurred = len(budget.TiersAttempted) > 1
	if budget.LatencyExceeded {
		if best != nil {
			return TieredFetchResult{Success: false, Result: *best, Budget: budget, Err: lastErr}, nil
		}
		return TieredFetchResult{Success: false, Budget: budget, Err: &FetchError{Class: ErrTimeout, Message: "budget exceeded before a valid result"}}, nil
	}

	if lastErr == nil {
		lastErr = &FetchError{Class: ErrUnknown, Message: "no tiers attempted"}
	}
	return TieredFetchResult{Success: false, Budget: budget, Err: lastErr}, nil
}

func keepBetter(best *Result, candidate Result) *Result {
	if best == nil || len(candidate.Content) > len(best.Content) {
		c := candidate
		return &c
	}
	return best
}

// classifyError maps an executor error to spec.md §4.3's error taxonomy.
// Executors are expected to return a *FetchError directly when they can
// identify the cause; anything else falls back to ErrUnknown.
func classifyError(tier Tier, err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Class: ErrTimeout, Tier: tier, Message: err.Error(), Underlying: err}
	}
	return &FetchError{Class: ErrUnknown, Tier: tier, Message: err.Error(), Underlying: err}
}

// GetDomainPreference returns the currently learned preference for domain.
func (o *Orchestrator) GetDomainPreference(domain string) DomainPreference {
	return o.prefs.get(domain)
}

// SetDomainPreference manually overrides a domain's preferred tier.
func (o *Orchestrator) SetDomainPreference(domain string, tier Tier) {
	o.prefs.set(domain, tier)
}

// ExportPreferences returns every learned domain preference.
func (o *Orchestrator) ExportPreferences() []DomainPreference {
	return o.prefs.export()
}

// Stats summarizes the orchestrator's learned state.
type Stats struct {
	Domains int `json:"domains"`
}

// GetStats returns a summary of learned preferences.
func (o *Orchestrator) GetStats() Stats {
	return Stats{Domains: len(o.prefs.export())}
}

// PerformanceTracker exposes the per-domain EMA response times the
// preference store has accumulated, for callers wanting raw telemetry
// rather than just the derived preferred tier.
type PerformanceTracker struct {
	Domain          string        `json:"domain"`
	AvgResponseTime time.Duration `json:"avg_response_time"`
	TotalFetches    int64         `json:"total_fetches"`
}

// GetPerformanceTracker returns per-domain response-time telemetry.
func (o *Orchestrator) GetPerformanceTracker() []PerformanceTracker {
	prefs := o.prefs.export()
	out := make([]PerformanceTracker, 0, len(prefs))
	for _, p := range prefs {
		out = append(out, PerformanceTracker{
			Domain:          p.Domain,
			AvgResponseTime: p.AvgResponseTime,
			TotalFetches:    p.TotalFetches,
		})
	}
	return out
}
