package service

import (
	"strings"

	"legalintake_backend/internal/calllogs/repository"
)

// Thresholds below which a call's content is considered too thin to triage.
const (
	minSummaryLength    = 10
	minTranscriptLength = 20
)

// Keywords in the disconnect reason or summary that mark a call nobody
// actually completed. Spanish variants appear for bilingual agent tenants.
var inactivityKeywords = []string{
	"inactivity",
	"no answer",
	"no-answer",
	"unanswered",
	"hung up",
	"hangup",
	"sin respuesta",
}

// IsComplete classifies a call log as complete for UI triage. Pure function,
// evaluated at read time and never stored.
//
// Rule order matters: keyword detection runs before the length thresholds so
// an explicitly failed call with a long transcript is still flagged, and a
// successful call with no transcript yet still falls through to rule 4.
func IsComplete(log repository.CallLog) bool {
	haystack := strings.ToLower(deref(log.DisconnectReason) + " " + deref(log.Summary))
	for _, keyword := range inactivityKeywords {
		if strings.Contains(haystack, keyword) {
			return false
		}
	}

	status := strings.ToLower(deref(log.Status))
	if status == "failed" || status == "error" {
		return false
	}

	if successful, ok := callSuccessfulFlag(log.Analysis); ok && !successful {
		return false
	}

	if len(deref(log.Summary)) < minSummaryLength || len(deref(log.Transcript)) < minTranscriptLength {
		return false
	}

	return true
}

func callSuccessfulFlag(analysis map[string]any) (bool, bool) {
	if analysis == nil {
		return false, false
	}
	for _, key := range []string{"call_successful", "callSuccessful"} {
		if flag, ok := analysis[key].(bool); ok {
			return flag, true
		}
	}
	return false, false
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
