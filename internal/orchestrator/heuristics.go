package orchestrator

import "strings"

// botChallengeMarkers are substrings commonly present on anti-bot
// challenge/interstitial pages (spec.md §4.3 step 3e "anti-bot challenge
// page detected by anomaly heuristics"). Plain substring matching on
// lowercased content is deliberately conservative, preferring false
// negatives over rejecting legitimate pages.
var botChallengeMarkers = []string{
	"checking your browser",
	"cf-challenge",
	"cloudflare ray id",
	"verify you are human",
	"enable javascript and cookies",
	"captcha",
	"access denied",
	"unusual traffic",
}

func looksLikeBotChallenge(content string) bool {
	lower := strings.ToLower(content)
	for _, marker := range botChallengeMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

var errorPageMarkers = []string{
	"404 not found",
	"500 internal server error",
	"502 bad gateway",
	"503 service unavailable",
	"this page isn't working",
	"an error occurred",
}

func looksLikeErrorPage(content string) bool {
	lower := strings.ToLower(content)
	for _, marker := range errorPageMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
