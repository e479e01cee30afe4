package changetracker

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// formatValue renders a Value as a human-readable string (spec.md §4.4
// step 7): monetary objects render just the amount, null renders as
// "null", and everything else uses a reasonable default rendering.
func formatValue(v Value) string {
	switch v.Kind {
	case KindNull:
		return "null"
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case KindString:
		return v.Str
	case KindArray:
		parts := make([]string, len(v.Arr))
		for i, e := range v.Arr {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindObject:
		if v.IsMonetary() {
			return formatValue(v.Obj["amount"])
		}
		parts := make([]string, 0, len(v.Obj))
		for k, e := range v.Obj {
			parts = append(parts, k+": "+formatValue(e))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}

// humanizeFieldName splits a camelCase or snake_case leaf name into
// capitalized words (spec.md §4.4 step 7 "fieldName humanizes by
// splitting camelCase and capitalizing").
func humanizeFieldName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && !unicode.IsUpper(runes[i-1]) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	words := strings.Fields(b.String())
	for i, w := range words {
		words[i] = titleCaser.String(strings.ToLower(w))
	}
	return strings.Join(words, " ")
}

// impactTemplates maps (category, changeType) to a human-facing impact
// statement (spec.md §4.4 step 8).
var impactTemplates = map[Category]map[ChangeType]string{
	CategoryFee: {
		ChangeIncreased: "may invalidate prior Budget estimates",
		ChangeDecreased: "may reduce prior Budget estimates",
	},
	CategoryDeadline: {
		ChangeDecreased: "may require immediate action to avoid missing the deadline",
		ChangeIncreased:  "provides additional time to act",
	},
	CategoryRequirement: {
		ChangeAdded: "may block previously eligible applicants until satisfied",
	},
	CategoryDocument: {
		ChangeAdded: "may require gathering an additional document before proceeding",
	},
	CategoryEligibility: {
		ChangeModified: "may change who qualifies",
	},
}

func impactFor(cat Category, changeType ChangeType) string {
	if byType, ok := impactTemplates[cat]; ok {
		if impact, ok := byType[changeType]; ok {
			return impact
		}
	}
	return ""
}

func describe(fieldName string, cat Category, changeType ChangeType, oldFormatted, newFormatted string) string {
	human := humanizeFieldName(fieldName)
	switch changeType {
	case ChangeAdded:
		return fmt.Sprintf("%s was added: %s", human, newFormatted)
	case ChangeRemoved:
		return fmt.Sprintf("%s was removed (was: %s)", human, oldFormatted)
	case ChangeIncreased:
		return fmt.Sprintf("%s increased from %s to %s", human, oldFormatted, newFormatted)
	case ChangeDecreased:
		return fmt.Sprintf("%s decreased from %s to %s", human, oldFormatted, newFormatted)
	default:
		return fmt.Sprintf("%s changed from %s to %s", human, oldFormatted, newFormatted)
	}
}
