package changetracker

import (
	"fmt"
	"strings"
	"time"

	"github.com/ogoldberg/browsecore/internal/logging"
)

// TrackChanges walks oldObj and newObj in lockstep and produces a
// ChangeReport (spec.md §4.4 contract and algorithm).
func TrackChanges(oldObj, newObj map[string]interface{}, opts Options) ChangeReport {
	timer := logging.StartTimer(logging.CategoryChangeTrack, "TrackChanges")
	defer timer.Stop()

	oldValue := Value{Kind: KindObject, Obj: fromAnyMap(oldObj)}
	newValue := Value{Kind: KindObject, Obj: fromAnyMap(newObj)}

	var changes []FieldChange
	walk("", oldValue, newValue, opts, &changes)

	changes = applyFieldFilters(changes, opts)

	bySeverity := make(map[Severity]int)
	for _, c := range changes {
		bySeverity[c.Severity]++
	}

	return ChangeReport{
		URL:               opts.URL,
		Timestamp:         time.Now(),
		Changes:           changes,
		TotalChanges:      len(changes),
		ChangesBySeverity: bySeverity,
	}
}

func fromAnyMap(m map[string]interface{}) map[string]Value {
	out := make(map[string]Value, len(m))
	for k, v := range m {
		out[k] = FromAny(v)
	}
	return out
}

// walk recurses over old/new at path, appending any detected changes
// (spec.md §4.4 algorithm steps 1-2).
func walk(path string, oldV, newV Value, opts Options, out *[]FieldChange) {
	if oldV.Kind == KindObject && newV.Kind == KindObject {
		walkObject(path, oldV.Obj, newV.Obj, opts, out)
		return
	}
	if oldV.Kind == KindArray && newV.Kind == KindArray {
		walkArray(path, oldV.Arr, newV.Arr, opts, out)
		return
	}
	if oldV.Equal(newV) {
		return
	}
	emitLeafChange(path, oldV, newV, opts, out)
}

func walkObject(path string, oldObj, newObj map[string]Value, opts Options, out *[]FieldChange) {
	seen := make(map[string]bool, len(oldObj)+len(newObj))
	for k := range oldObj {
		seen[k] = true
	}
	for k := range newObj {
		seen[k] = true
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sortStrings(keys)

	for _, k := range keys {
		childPath := k
		if path != "" {
			childPath = path + "." + k
		}
		oldChild, hasOld := oldObj[k]
		newChild, hasNew := newObj[k]
		switch {
		case hasOld && hasNew:
			walk(childPath, oldChild, newChild, opts, out)
		case hasNew:
			emitLeafChange(childPath, Value{Kind: KindNull}, newChild, opts, out)
		case hasOld:
			emitLeafChange(childPath, oldChild, Value{Kind: KindNull}, opts, out)
		}
	}
}

func walkArray(path string, oldArr, newArr []Value, opts Options, out *[]FieldChange) {
	maxLen := len(oldArr)
	if len(newArr) > maxLen {
		maxLen = len(newArr)
	}
	for i := 0; i < maxLen; i++ {
		childPath := fmt.Sprintf("%s[%d]", path, i)
		var oldChild, newChild Value
		hasOld := i < len(oldArr)
		hasNew := i < len(newArr)
		if hasOld {
			oldChild = oldArr[i]
		}
		if hasNew {
			newChild = newArr[i]
		}
		switch {
		case hasOld && hasNew:
			if (oldChild.Kind == KindObject && newChild.Kind == KindObject) ||
				(oldChild.Kind == KindArray && newChild.Kind == KindArray) {
				walk(childPath, oldChild, newChild, opts, out)
				continue
			}
			if oldChild.Equal(newChild) {
				continue
			}
			emitLeafChange(childPath, oldChild, newChild, opts, out)
		case hasNew:
			emitLeafChange(childPath, Value{Kind: KindNull}, newChild, opts, out)
		case hasOld:
			emitLeafChange(childPath, oldChild, Value{Kind: KindNull}, opts, out)
		}
	}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// emitLeafChange classifies and formats a single detected difference
// (spec.md §4.4 steps 3-8).
func emitLeafChange(path string, oldV, newV Value, opts Options, out *[]FieldChange) {
	leafName := leafOf(path)

	var changeType ChangeType
	var percentageChange *float64

	switch {
	case oldV.Kind == KindNull && newV.Kind != KindNull:
		changeType = ChangeAdded
	case newV.Kind == KindNull && oldV.Kind != KindNull:
		changeType = ChangeRemoved
	case oldV.Kind == KindNumber && newV.Kind == KindNumber:
		changeType, percentageChange = classifyNumeric(oldV.Number, newV.Number)
	case oldV.Kind == KindString && newV.Kind == KindString:
		if oldDays, ok1 := parseDurationDays(oldV.Str, opts.Language); ok1 {
			if newDays, ok2 := parseDurationDays(newV.Str, opts.Language); ok2 {
				changeType, percentageChange = classifyNumeric(oldDays, newDays)
				break
			}
		}
		changeType = ChangeModified
	default:
		changeType = ChangeModified
	}

	category := detectCategory(leafName, oldV, newV, opts)
	severity := classifySeverity(category, changeType)
	oldFormatted := formatValue(oldV)
	newFormatted := formatValue(newV)
	description := describe(leafName, category, changeType, oldFormatted, newFormatted)

	if changeType == ChangeModified && oldV.Kind == KindString && newV.Kind == KindString {
		if wd := wordDiffSummary(oldV.Str, newV.Str); wd != "" {
			description = description + " (" + wd + ")"
		}
	}

	*out = append(*out, FieldChange{
		FieldPath:         path,
		FieldName:         humanizeFieldName(leafName),
		Category:          category,
		Severity:          severity,
		ChangeType:        changeType,
		OldValue:          toAny(oldV),
		NewValue:          toAny(newV),
		OldValueFormatted: oldFormatted,
		NewValueFormatted: newFormatted,
		PercentageChange:  percentageChange,
		Description:       description,
		Impact:            impactFor(category, changeType),
	})
}

// classifyNumeric computes the changeType and percentageChange for two
// numeric (or duration-normalized) values (spec.md §4.4 steps 3-4).
func classifyNumeric(oldN, newN float64) (ChangeType, *float64) {
	if oldN == newN {
		return ChangeModified, nil
	}
	changeType := ChangeIncreased
	if newN < oldN {
		changeType = ChangeDecreased
	}
	if oldN != 0 {
		pct := ((newN - oldN) / absFloat(oldN)) * 100
		return changeType, &pct
	}
	return changeType, nil
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func leafOf(path string) string {
	idx := strings.LastIndexAny(path, ".")
	name := path
	if idx >= 0 {
		name = path[idx+1:]
	}
	if b := strings.IndexByte(name, '['); b >= 0 {
		name = name[:b]
	}
	return name
}

func toAny(v Value) interface{} {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool
	case KindNumber:
		return v.Number
	case KindString:
		return v.Str
	case KindArray:
		out := make([]interface{}, len(v.Arr))
		for i, e := range v.Arr {
			out[i] = toAny(e)
		}
		return out
	case KindObject:
		out := make(map[string]interface{}, len(v.Obj))
		for k, e := range v.Obj {
			out[k] = toAny(e)
		}
		return out
	default:
		return nil
	}
}

// applyFieldFilters drops entries matching opts.IgnoreFields (exact or
// prefix) and, if opts.OnlyFields is set, keeps only matching entries
// (spec.md §4.4 "Filtering").
func applyFieldFilters(changes []FieldChange, opts Options) []FieldChange {
	if len(opts.IgnoreFields) == 0 && len(opts.OnlyFields) == 0 {
		return changes
	}
	var out []FieldChange
	for _, c := range changes {
		if matchesAny(c.FieldPath, opts.IgnoreFields) {
			continue
		}
		if len(opts.OnlyFields) > 0 && !matchesAny(c.FieldPath, opts.OnlyFields) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchesAny(path string, patterns []string) bool {
	for _, p := range patterns {
		if path == p || strings.HasPrefix(path, p+".") || strings.HasPrefix(path, p+"[") {
			return true
		}
	}
	return false
}
