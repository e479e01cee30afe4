package changetracker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Scenario 5: fee increase is breaking (spec.md §8).
func TestFeeIncreaseIsBreaking(t *testing.T) {
	oldObj := map[string]interface{}{
		"visaFee": map[string]interface{}{"amount": 80.0, "currency": "EUR"},
	}
	newObj := map[string]interface{}{
		"visaFee": map[string]interface{}{"amount": 100.0, "currency": "EUR"},
	}
	report := TrackChanges(oldObj, newObj, Options{})
	require.Len(t, report.Changes, 1)
	c := report.Changes[0]
	require.Equal(t, CategoryFee, c.Category)
	require.Equal(t, ChangeIncreased, c.ChangeType)
	require.NotNil(t, c.PercentageChange)
	require.InDelta(t, 25.0, *c.PercentageChange, 0.001)
	require.Equal(t, SeverityBreaking, c.Severity)
}

// Scenario 6: duration decrease is breaking (spec.md §8).
func TestDurationDecreaseIsBreaking(t *testing.T) {
	oldObj := map[string]interface{}{"deadline": "30 days"}
	newObj := map[string]interface{}{"deadline": "10 days"}
	report := TrackChanges(oldObj, newObj, Options{})
	require.Len(t, report.Changes, 1)
	c := report.Changes[0]
	require.Equal(t, CategoryDeadline, c.Category)
	require.Equal(t, ChangeDecreased, c.ChangeType)
	require.Equal(t, SeverityBreaking, c.Severity)
}

// P9: trackChanges(x, x) yields hasChanges=false for any JSON value.
func TestIdempotenceOnIdenticalInput(t *testing.T) {
	x := map[string]interface{}{
		"a": 1.0,
		"b": "hello",
		"c": []interface{}{1.0, 2.0, map[string]interface{}{"d": true}},
		"e": nil,
	}
	report := TrackChanges(x, x, Options{})
	require.False(t, report.HasChanges())
	require.Empty(t, report.Changes)
}

// P10: categorization determinism across repeated runs.
func TestCategorizationDeterminism(t *testing.T) {
	oldObj := map[string]interface{}{"applicationFee": 50.0}
	newObj := map[string]interface{}{"applicationFee": 60.0}
	opts := Options{CustomFieldMappings: map[string]Category{"applicationFee": CategoryFee}}

	first := TrackChanges(oldObj, newObj, opts)
	second := TrackChanges(oldObj, newObj, opts)
	require.Equal(t, first.Changes[0].Category, second.Changes[0].Category)
	require.Equal(t, first.Changes[0].Severity, second.Changes[0].Severity)
}

func TestAddedAndRemovedFields(t *testing.T) {
	oldObj := map[string]interface{}{"a": 1.0}
	newObj := map[string]interface{}{"b": 2.0}
	report := TrackChanges(oldObj, newObj, Options{})
	require.Len(t, report.Changes, 2)

	byType := map[ChangeType]int{}
	for _, c := range report.Changes {
		byType[c.ChangeType]++
	}
	require.Equal(t, 1, byType[ChangeAdded])
	require.Equal(t, 1, byType[ChangeRemoved])
}

func TestArrayElementwiseComparison(t *testing.T) {
	oldObj := map[string]interface{}{"items": []interface{}{1.0, 2.0, 3.0}}
	newObj := map[string]interface{}{"items": []interface{}{1.0, 5.0, 3.0}}
	report := TrackChanges(oldObj, newObj, Options{})
	require.Len(t, report.Changes, 1)
	require.Equal(t, "items[1]", report.Changes[0].FieldPath)
}

func TestIgnoreFieldsFiltersEntries(t *testing.T) {
	oldObj := map[string]interface{}{"a": 1.0, "b": 2.0}
	newObj := map[string]interface{}{"a": 10.0, "b": 20.0}
	report := TrackChanges(oldObj, newObj, Options{IgnoreFields: []string{"a"}})
	require.Len(t, report.Changes, 1)
	require.Equal(t, "b", report.Changes[0].FieldPath)
}

func TestOnlyFieldsKeepsJustMatching(t *testing.T) {
	oldObj := map[string]interface{}{"a": 1.0, "b": 2.0}
	newObj := map[string]interface{}{"a": 10.0, "b": 20.0}
	report := TrackChanges(oldObj, newObj, Options{OnlyFields: []string{"a"}})
	require.Len(t, report.Changes, 1)
	require.Equal(t, "a", report.Changes[0].FieldPath)
}

func TestUnparseableDurationFallsBackToModified(t *testing.T) {
	oldObj := map[string]interface{}{"note": "see office"}
	newObj := map[string]interface{}{"note": "see office hours page"}
	report := TrackChanges(oldObj, newObj, Options{})
	require.Len(t, report.Changes, 1)
	require.Equal(t, ChangeModified, report.Changes[0].ChangeType)
	require.Nil(t, report.Changes[0].PercentageChange)
}

func TestSpanishDurationParsing(t *testing.T) {
	oldObj := map[string]interface{}{"plazo": "4 semanas"}
	newObj := map[string]interface{}{"plazo": "2 semanas"}
	report := TrackChanges(oldObj, newObj, Options{Language: "es"})
	require.Len(t, report.Changes, 1)
	require.Equal(t, ChangeDecreased, report.Changes[0].ChangeType)
}

func TestHumanizeFieldName(t *testing.T) {
	require.Equal(t, "Visa Fee", humanizeFieldName("visaFee"))
	require.Equal(t, "Office Hours", humanizeFieldName("office_hours"))
}
