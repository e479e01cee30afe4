package changetracker

import (
	"regexp"
	"strconv"
	"strings"
)

// durationUnit maps a language's unit words to a day multiplier (spec.md
// §4.4.1: week=7, month=30, year=365).
type durationUnit struct {
	words      []string
	daysPerUnit float64
}

// durationUnitsByLanguage enumerates the day/week/month/year equivalents
// for each supported language (spec.md §4.4.1 "en/es/pt/fr/it/de").
var durationUnitsByLanguage = map[string][]durationUnit{
	"en": {
		{[]string{"day", "days"}, 1},
		{[]string{"week", "weeks"}, 7},
		{[]string{"month", "months"}, 30},
		{[]string{"year", "years"}, 365},
	},
	"es": {
		{[]string{"dia", "dias", "día", "días"}, 1},
		{[]string{"semana", "semanas"}, 7},
		{[]string{"mes", "meses"}, 30},
		{[]string{"año", "años", "ano", "anos"}, 365},
	},
	"pt": {
		{[]string{"dia", "dias"}, 1},
		{[]string{"semana", "semanas"}, 7},
		{[]string{"mes", "meses"}, 30},
		{[]string{"ano", "anos"}, 365},
	},
	"fr": {
		{[]string{"jour", "jours"}, 1},
		{[]string{"semaine", "semaines"}, 7},
		{[]string{"mois"}, 30},
		{[]string{"an", "ans", "année", "années"}, 365},
	},
	"it": {
		{[]string{"giorno", "giorni"}, 1},
		{[]string{"settimana", "settimane"}, 7},
		{[]string{"mese", "mesi"}, 30},
		{[]string{"anno", "anni"}, 365},
	},
	"de": {
		{[]string{"tag", "tage"}, 1},
		{[]string{"woche", "wochen"}, 7},
		{[]string{"monat", "monate"}, 30},
		{[]string{"jahr", "jahre"}, 365},
	},
}

var numberPattern = regexp.MustCompile(`^\s*(\d+(?:[.,]\d+)?)\s*(.+?)\s*$`)

// parseDurationDays parses a duration string like "30 days" or
// "4 semanas" into a day count, using language's unit table (falling back
// to all languages if language is unrecognized). Returns ok=false when no
// unit matches (spec.md §4.4.1: "if either side cannot be parsed, treat as
// modified with no direction").
func parseDurationDays(s, language string) (float64, bool) {
	m := numberPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	numStr := strings.ReplaceAll(m[1], ",", ".")
	n, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, false
	}
	unitWord := strings.ToLower(strings.TrimSpace(m[2]))

	units, ok := durationUnitsByLanguage[language]
	if !ok {
		units = allDurationUnits()
	}
	for _, u := range units {
		for _, w := range u.words {
			if unitWord == w {
				return n * u.daysPerUnit, true
			}
		}
	}
	return 0, false
}

func allDurationUnits() []durationUnit {
	var out []durationUnit
	for _, units := range durationUnitsByLanguage {
		out = append(out, units...)
	}
	return out
}
