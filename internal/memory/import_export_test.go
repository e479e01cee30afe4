package memory

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTripPreservesSkill(t *testing.T) {
	src := testStore()
	sk := Skill{
		ID:          "roundtrip",
		Name:        "roundtrip skill",
		Description: "exercises export/import",
		Preconditions: Preconditions{
			DomainPatterns: []string{"example.com"},
			URLPatterns:    []string{"https://example.com/items/[0-9]+"},
			PageType:       PageTypeList,
		},
		ActionSequence: []Action{
			{Type: ActionNavigate, Success: true},
			{Type: ActionExtract, Selector: "table", Success: true},
		},
		Metrics: Metrics{SuccessCount: 4, TimesUsed: 5, AvgDuration: 900 * time.Millisecond},
	}
	require.NoError(t, src.AddSkill(sk))

	data, err := src.ExportMemory()
	require.NoError(t, err)

	dst := testStore()
	count, err := dst.ImportSkills(data, false)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	got, ok := dst.GetSkill("roundtrip")
	require.True(t, ok)
	want, _ := src.GetSkill("roundtrip")

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("round-tripped skill mismatch (-want +got):\n%s", diff)
	}
}

func TestImportSkillsMergeModeSumsMetrics(t *testing.T) {
	src := testStore()
	require.NoError(t, src.AddSkill(Skill{
		ID:      "merge-me",
		Name:    "merge-me",
		Metrics: Metrics{SuccessCount: 2, TimesUsed: 3},
	}))
	data, err := src.ExportMemory()
	require.NoError(t, err)

	dst := testStore()
	require.NoError(t, dst.AddSkill(Skill{
		ID:      "merge-me",
		Name:    "merge-me",
		Metrics: Metrics{SuccessCount: 5, TimesUsed: 9},
	}))

	count, err := dst.ImportSkills(data, true)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	got, ok := dst.GetSkill("merge-me")
	require.True(t, ok)
	require.EqualValues(t, 7, got.Metrics.SuccessCount)
	require.EqualValues(t, 12, got.Metrics.TimesUsed)
}
