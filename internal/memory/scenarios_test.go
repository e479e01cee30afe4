package memory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ogoldberg/browsecore/internal/config"
)

func testStore() *Store {
	return New(config.DefaultMemoryConfig())
}

// Scenario 1: skill extraction (spec.md §8).
func TestSkillExtractionFromTrajectory(t *testing.T) {
	st := testStore()
	st.RecordTrajectory(Trajectory{
		Domain:        "example.com",
		StartURL:      "https://example.com/items/42",
		EndURL:        "https://example.com/items/42",
		Success:       true,
		TotalDuration: 1200 * time.Millisecond,
		Actions: []Action{
			{Type: ActionNavigate, Success: true},
			{Type: ActionClick, Selector: "#next", Success: true},
			{Type: ActionExtract, Selector: "table", Success: true},
		},
	})

	skills := st.GetAllSkills()
	require.Len(t, skills, 1)
	sk := skills[0]
	require.Equal(t, []string{"example.com"}, sk.Preconditions.DomainPatterns)
	require.Equal(t, []string{"https://example.com/items/[0-9]+"}, sk.Preconditions.URLPatterns)
	require.GreaterOrEqual(t, len(sk.ActionSequence), 2)
	require.LessOrEqual(t, len(sk.ActionSequence), 3)
}

// Scenario 2: merge into existing (spec.md §8).
func TestSecondTrajectoryMergesIntoExistingSkill(t *testing.T) {
	st := testStore()
	traj := Trajectory{
		Domain:        "example.com",
		StartURL:      "https://example.com/items/42",
		EndURL:        "https://example.com/items/42",
		Success:       true,
		TotalDuration: 1200 * time.Millisecond,
		Actions: []Action{
			{Type: ActionNavigate, Success: true},
			{Type: ActionClick, Selector: "#next", Success: true},
			{Type: ActionExtract, Selector: "table", Success: true},
		},
	}
	st.RecordTrajectory(traj)

	traj2 := traj
	traj2.TotalDuration = 800 * time.Millisecond
	st.RecordTrajectory(traj2)

	skills := st.GetAllSkills()
	require.Len(t, skills, 1)
	sk := skills[0]
	require.EqualValues(t, 2, sk.Metrics.SuccessCount)
	require.EqualValues(t, 2, sk.Metrics.TimesUsed)
	require.Equal(t, 1000*time.Millisecond, sk.Metrics.AvgDuration)
}

// Scenario 3: auto-rollback (spec.md §8).
func TestAutoRollbackRevertsToBestVersion(t *testing.T) {
	st := testStore()
	sk := Skill{
		ID:             "s1",
		Name:           "best-version",
		ActionSequence: []Action{{Type: ActionNavigate, Success: true}, {Type: ActionClick, Success: true}},
		Metrics:        Metrics{SuccessCount: 9, TimesUsed: 10},
	}
	require.NoError(t, st.AddSkill(sk))

	// Degrade the live skill's metrics and action sequence, then snapshot
	// that degraded state as version 2.
	degraded := st.skills["s1"]
	degraded.Metrics = Metrics{SuccessCount: 3, TimesUsed: 6}
	degraded.ActionSequence = []Action{{Type: ActionNavigate, Success: true}}
	require.NoError(t, st.CreateVersion("s1", ChangeReasonUpdate, "regressed"))

	require.True(t, st.CheckForAutoRollback("s1", 0))

	result := st.RollbackSkill("s1", nil)
	require.True(t, result.Success)
	require.Equal(t, 1, result.Version)

	rolledBack, ok := st.GetSkill("s1")
	require.True(t, ok)
	require.EqualValues(t, 9, rolledBack.Metrics.SuccessCount)
	require.EqualValues(t, 10, rolledBack.Metrics.TimesUsed)
	require.Len(t, rolledBack.ActionSequence, 2)
}

// Scenario 7: cycle rejection (spec.md §8).
func TestAddPrerequisiteRejectsCycle(t *testing.T) {
	st := testStore()
	require.NoError(t, st.AddSkill(Skill{ID: "a", Name: "a"}))
	require.NoError(t, st.AddSkill(Skill{ID: "b", Name: "b"}))

	require.NoError(t, st.AddPrerequisite("a", "b"))

	err := st.AddPrerequisite("b", "a")
	require.Error(t, err)

	b, ok := st.GetSkill("b")
	require.True(t, ok)
	require.Empty(t, b.Preconditions.Prerequisites)
}

// Negative feedback past the auto-rollback threshold actually rolls the
// skill back, not just reports that it should.
func TestRecordFeedbackTriggersAutoRollback(t *testing.T) {
	st := testStore()
	sk := Skill{
		ID:             "s1",
		Name:           "feedback-rollback",
		ActionSequence: []Action{{Type: ActionNavigate, Success: true}, {Type: ActionClick, Success: true}},
		Metrics:        Metrics{SuccessCount: 9, TimesUsed: 10},
	}
	require.NoError(t, st.AddSkill(sk))

	degraded := st.skills["s1"]
	degraded.Metrics = Metrics{SuccessCount: 3, TimesUsed: 6}
	degraded.ActionSequence = []Action{{Type: ActionNavigate, Success: true}}
	require.NoError(t, st.CreateVersion("s1", ChangeReasonUpdate, "regressed"))

	fb := Feedback{SkillID: "s1", Rating: RatingNegative}
	st.RecordFeedback(fb)

	rolledBack, ok := st.GetSkill("s1")
	require.True(t, ok)
	require.EqualValues(t, 9, rolledBack.Metrics.SuccessCount)
	require.Len(t, rolledBack.ActionSequence, 2)

	summary := st.GetFeedbackSummary("s1")
	require.Equal(t, 1, summary.Negative)
	require.Len(t, st.feedbackLog, 1)
	require.True(t, st.feedbackLog[0].Processed)
}

// CreateWorkflow rejects fewer than two skill ids.
func TestCreateWorkflowRejectsFewerThanTwoSkills(t *testing.T) {
	st := testStore()
	require.NoError(t, st.AddSkill(Skill{ID: "a", Name: "a"}))

	_, err := st.CreateWorkflow("solo", "desc", []string{"a"}, nil, Preconditions{})
	require.Error(t, err)

	require.NoError(t, st.AddSkill(Skill{ID: "b", Name: "b"}))
	wf, err := st.CreateWorkflow("pair", "desc", []string{"a", "b"}, nil, Preconditions{})
	require.NoError(t, err)
	require.Len(t, wf.SkillIDs, 2)
}

// P6: a rejected cycle leaves existing prerequisites unchanged.
func TestAddPrerequisiteLeavesStateUnchangedOnCycle(t *testing.T) {
	st := testStore()
	require.NoError(t, st.AddSkill(Skill{ID: "a", Name: "a"}))
	require.NoError(t, st.AddSkill(Skill{ID: "b", Name: "b"}))
	require.NoError(t, st.AddSkill(Skill{ID: "c", Name: "c"}))

	require.NoError(t, st.AddPrerequisite("a", "b"))
	require.NoError(t, st.AddPrerequisite("b", "c"))

	err := st.AddPrerequisite("c", "a")
	require.Error(t, err)

	c, ok := st.GetSkill("c")
	require.True(t, ok)
	require.Empty(t, c.Preconditions.Prerequisites)
}
