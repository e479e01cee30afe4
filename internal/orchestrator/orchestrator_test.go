package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ogoldberg/browsecore/internal/config"
)

type fakeExecutor struct {
	content   string
	err       error
	delay     time.Duration
	available bool
}

func (f *fakeExecutor) Fetch(ctx context.Context, url string, opts Options) (Result, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	if f.err != nil {
		return Result{}, f.err
	}
	return Result{URL: url, Content: f.content, FetchedAt: time.Now()}, nil
}

func (f *fakeExecutor) Available() bool { return f.available }

func testConfig() config.OrchestratorConfig {
	cfg := config.DefaultOrchestratorConfig()
	cfg.MinContentLength = 10
	cfg.TierTimeout = time.Second
	return cfg
}

func TestFetchSucceedsAtIntelligenceTierWhenValid(t *testing.T) {
	o := New(testConfig(), map[Tier]TierExecutor{
		TierIntelligence: &fakeExecutor{content: "0123456789 enough content here"},
	})
	res := o.Fetch(context.Background(), "https://example.com/a", Options{})
	require.True(t, res.Success)
	require.Equal(t, TierIntelligence, res.Result.Tier)
}

func TestFetchEscalatesOnInvalidContent(t *testing.T) {
	o := New(testConfig(), map[Tier]TierExecutor{
		TierIntelligence: &fakeExecutor{content: "short"},
		TierLightweight:  &fakeExecutor{content: "0123456789 enough content here"},
	})
	res := o.Fetch(context.Background(), "https://example.com/a", Options{})
	require.True(t, res.Success)
	require.Equal(t, []Tier{TierIntelligence, TierLightweight}, res.Budget.TiersAttempted)
	require.True(t, res.Budget.FallbackOccurred)
}

// Scenario 4: a successful fetch that only reached its result after falling
// through a cheaper tier must report FallbackOccurred, even though the
// fallback happened on the eventually-successful path rather than a
// terminal failure.
func TestFetchReportsFallbackOccurredOnEventualSuccess(t *testing.T) {
	o := New(testConfig(), map[Tier]TierExecutor{
		TierIntelligence: &fakeExecutor{content: "short"},
		TierLightweight:  &fakeExecutor{content: "0123456789 enough content here"},
		TierPlaywright:   &fakeExecutor{available: false},
	})
	res := o.Fetch(context.Background(), "https://example.gov/list", Options{MaxCostTier: TierLightweight})
	require.True(t, res.Success)
	require.Equal(t, TierLightweight, res.Result.Tier)
	require.True(t, res.Budget.FallbackOccurred)
	require.NotContains(t, res.Budget.TiersAttempted, TierPlaywright)
}

func TestFetchSingleTierSuccessHasNoFallback(t *testing.T) {
	o := New(testConfig(), map[Tier]TierExecutor{
		TierIntelligence: &fakeExecutor{content: "0123456789 enough content here"},
	})
	res := o.Fetch(context.Background(), "https://example.com/a", Options{})
	require.True(t, res.Success)
	require.False(t, res.Budget.FallbackOccurred)
}

// P7: tiers attempted within a single fetch are non-decreasing in cost order.
func TestFetchTierCostMonotonicity(t *testing.T) {
	o := New(testConfig(), map[Tier]TierExecutor{
		TierIntelligence: &fakeExecutor{content: "short"},
		TierLightweight:  &fakeExecutor{content: "short"},
		TierPlaywright:   &fakeExecutor{content: "0123456789 enough content here", available: true},
	})
	res := o.Fetch(context.Background(), "https://example.com/a", Options{})
	require.True(t, res.Success)
	last := -1
	for _, tier := range res.Budget.TiersAttempted {
		cost := tierCost(tier)
		require.GreaterOrEqual(t, cost, last)
		last = cost
	}
}

func TestFetchSkipsPlaywrightWhenUnavailable(t *testing.T) {
	o := New(testConfig(), map[Tier]TierExecutor{
		TierIntelligence: &fakeExecutor{content: "short"},
		TierLightweight:  &fakeExecutor{content: "short"},
		TierPlaywright:   &fakeExecutor{content: "irrelevant", available: false},
	})
	res := o.Fetch(context.Background(), "https://example.com/a", Options{})
	require.False(t, res.Success)
	require.Equal(t, "no_playwright", res.Budget.TiersSkipped[TierPlaywright])
}

func TestFetchRespectsMaxCostTier(t *testing.T) {
	o := New(testConfig(), map[Tier]TierExecutor{
		TierIntelligence: &fakeExecutor{content: "short"},
		TierLightweight:  &fakeExecutor{content: "0123456789 enough content here"},
	})
	res := o.Fetch(context.Background(), "https://example.com/a", Options{MaxCostTier: TierIntelligence})
	require.False(t, res.Success)
	require.Equal(t, "max_cost_tier", res.Budget.TiersSkipped[TierLightweight])
}

// P8: budget honored — latencyExceeded set once the accumulated latency
// has crossed maxLatencyMs, and no further tiers run after that point.
func TestFetchBudgetExceeded(t *testing.T) {
	o := New(testConfig(), map[Tier]TierExecutor{
		TierIntelligence: &fakeExecutor{content: "short", delay: 50 * time.Millisecond},
		TierLightweight:  &fakeExecutor{content: "0123456789 enough content here"},
	})
	res := o.Fetch(context.Background(), "https://example.com/a", Options{MaxLatencyMs: 10})
	require.False(t, res.Success)
	require.True(t, res.Budget.LatencyExceeded)
	require.NotContains(t, res.Budget.TiersAttempted, TierLightweight)
}

func TestFetchForceTierRunsOnlyThatTier(t *testing.T) {
	o := New(testConfig(), map[Tier]TierExecutor{
		TierIntelligence: &fakeExecutor{content: "short"},
		TierLightweight:  &fakeExecutor{content: "0123456789 enough content here"},
	})
	res := o.Fetch(context.Background(), "https://example.com/a", Options{ForceTier: TierLightweight})
	require.True(t, res.Success)
	require.Equal(t, []Tier{TierLightweight}, res.Budget.TiersAttempted)
}

func TestFetchCachesAndServesOnSecondCall(t *testing.T) {
	exec := &fakeExecutor{content: "0123456789 enough content here"}
	o := New(testConfig(), map[Tier]TierExecutor{TierIntelligence: exec})

	first := o.Fetch(context.Background(), "https://example.com/a", Options{})
	require.True(t, first.Success)
	require.False(t, first.Budget.CacheHit)

	second := o.Fetch(context.Background(), "https://example.com/a", Options{})
	require.True(t, second.Success)
	require.True(t, second.Budget.CacheHit)
}

func TestFetchRealtimeFreshnessBypassesCache(t *testing.T) {
	exec := &fakeExecutor{content: "0123456789 enough content here"}
	o := New(testConfig(), map[Tier]TierExecutor{TierIntelligence: exec})

	_ = o.Fetch(context.Background(), "https://example.com/a", Options{})
	second := o.Fetch(context.Background(), "https://example.com/a", Options{FreshnessReq: FreshnessRealtime})
	require.True(t, second.Success)
	require.False(t, second.Budget.CacheHit)
}

func TestPreferenceLearningPromotesOnRepeatedFailure(t *testing.T) {
	ps := newPreferenceStore(3)
	for i := 0; i < 3; i++ {
		ps.recordOutcome("example.com", TierIntelligence, false, time.Millisecond)
	}
	pref := ps.get("example.com")
	require.Equal(t, TierLightweight, pref.PreferredTier)
}

func TestPreferenceLearningAdoptsCheaperTierOnSuccess(t *testing.T) {
	ps := newPreferenceStore(3)
	ps.set("example.com", TierPlaywright)
	ps.recordOutcome("example.com", TierIntelligence, true, time.Millisecond)
	pref := ps.get("example.com")
	require.Equal(t, TierIntelligence, pref.PreferredTier)
}

func TestBotChallengeContentFailsValidation(t *testing.T) {
	r := Result{Content: "Please complete the CAPTCHA to continue, checking your browser before access."}
	require.False(t, r.valid(10))
}
