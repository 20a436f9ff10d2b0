package webhook

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Defaults applied when the provider's custom analysis data omits a field.
const (
	DefaultLeadName = "AI Lead"
	DefaultCaseType = "General"
	DefaultUrgency  = "Medium"

	// Synthesized when a transcript arrived without any summary, so the
	// completion heuristics downstream have some signal to work with.
	summaryPlaceholder = "call received"
)

// Fields is the canonical patch extracted from one webhook delivery.
// A nil pointer means the payload did not carry that field; the key is then
// left untouched by the reconcilers.
type Fields struct {
	Transcript       *string
	Summary          *string
	RecordingURL     *string
	DurationSeconds  *int
	CallStatus       *string
	Direction        *string
	Sentiment        *string
	DisconnectReason *string
	CallSuccessful   *bool
	Analysis         map[string]any

	// Case metadata from the custom analysis data object. Only populated
	// when that object is present, so a later analysis-free delivery never
	// resets a previously captured name back to its default.
	LeadName *string
	CaseType *string
	Urgency  *string

	// Raw qualification value from the custom analysis data, mapped to a
	// canonical lead status by the pipeline on analyzed events only.
	LeadStatus *string
}

var (
	transcriptStringAliases = []string{
		"transcript", "transcript_text", "transcriptText",
		"full_transcript", "fullTranscript", "transcription",
	}
	transcriptTurnAliases = []string{
		"transcript", "transcript_object", "transcriptObject",
		"transcript_with_tool_calls", "messages", "turns", "conversation",
	}
	turnRoleAliases = []string{"role", "speaker"}
	turnTextAliases = []string{"text", "content", "message"}

	durationAliases = []string{
		"duration_ms", "durationMs", "duration_seconds", "durationSeconds",
		"duration", "call_duration", "callDuration", "call_length",
		"callLength", "duration_in_seconds",
	}

	recordingURLAliases = []string{
		"recording_url", "recordingUrl", "recording", "audio_url",
		"audioUrl", "recording_link", "recordingLink", "call_recording",
		"callRecording", "stereo_recording_url",
	}
	recordingObjectAliases = []string{"url", "link", "mp3", "wav"}

	summaryAliases = []string{"summary", "call_summary", "callSummary"}

	statusAliases     = []string{"call_status", "callStatus", "status"}
	directionAliases  = []string{"direction", "call_direction", "callDirection"}
	sentimentAliases  = []string{"user_sentiment", "userSentiment", "sentiment"}
	disconnectAliases = []string{
		"disconnection_reason", "disconnectionReason", "disconnect_reason",
		"ended_reason", "endedReason", "end_reason",
	}

	customDataKeys = []string{"custom_analysis_data", "customAnalysisData"}
	customNameKeys = []string{"name", "lead_name", "leadName", "caller_name", "callerName", "full_name"}
	customCaseKeys = []string{"case_type", "caseType", "legal_case_type", "case_category"}
	customUrgeKeys = []string{"urgency", "urgency_level", "urgencyLevel", "priority"}
	customStatKeys = []string{"lead_status", "leadStatus", "qualification", "lead_qualification"}
	successfulKeys = []string{"call_successful", "callSuccessful"}
)

// ExtractFields normalizes one payload into the canonical patch shape.
func ExtractFields(payload Payload) Fields {
	call := callObject(payload)
	analysis := analysisObject(payload)

	fields := Fields{Analysis: analysis}

	if transcript, ok := extractTranscript(payload, call); ok {
		fields.Transcript = &transcript
	}

	summary := extractSummary(payload, call, analysis)
	if summary == "" && fields.Transcript != nil && *fields.Transcript != "" {
		summary = summaryPlaceholder
	}
	if summary != "" {
		fields.Summary = &summary
	}

	if url := extractRecordingURL(payload, call); url != "" {
		fields.RecordingURL = &url
	}

	if seconds, ok := extractDuration(payload, call); ok {
		fields.DurationSeconds = &seconds
	}

	if status := scopedString(call, payload, statusAliases); status != "" {
		fields.CallStatus = &status
	}
	if direction := scopedString(call, payload, directionAliases); direction != "" {
		fields.Direction = &direction
	}
	if sentiment := firstString(analysis, sentimentAliases...); sentiment != "" {
		fields.Sentiment = &sentiment
	} else if sentiment := scopedString(call, payload, sentimentAliases); sentiment != "" {
		fields.Sentiment = &sentiment
	}
	if reason := scopedString(call, payload, disconnectAliases); reason != "" {
		fields.DisconnectReason = &reason
	} else if reason := firstString(analysis, disconnectAliases...); reason != "" {
		fields.DisconnectReason = &reason
	}

	if analysis != nil {
		for _, key := range successfulKeys {
			if flag, ok := analysis[key].(bool); ok {
				fields.CallSuccessful = &flag
				break
			}
		}
	}

	extractCustomData(analysis, call, &fields)

	return fields
}

// extractTranscript resolves a transcript from either a single string field
// or a turn list joined as "role: text" lines.
func extractTranscript(payload Payload, call map[string]any) (string, bool) {
	if text := scopedString(call, payload, transcriptStringAliases); text != "" {
		return text, true
	}

	for _, scope := range []map[string]any{call, payload} {
		if scope == nil {
			continue
		}
		for _, key := range transcriptTurnAliases {
			turns, ok := scope[key].([]any)
			if !ok || len(turns) == 0 {
				continue
			}
			if joined := joinTurns(turns); joined != "" {
				return joined, true
			}
		}
	}

	return "", false
}

func joinTurns(turns []any) string {
	lines := make([]string, 0, len(turns))
	for _, item := range turns {
		turn, ok := item.(map[string]any)
		if !ok {
			continue
		}
		text := firstString(turn, turnTextAliases...)
		if text == "" {
			continue
		}
		role := firstString(turn, turnRoleAliases...)
		if role == "" {
			role = "speaker"
		}
		lines = append(lines, fmt.Sprintf("%s: %s", role, text))
	}
	return strings.Join(lines, "\n")
}

// extractDuration returns the call duration in seconds. Values above 1000 are
// taken to be milliseconds regardless of the field name, since providers have
// shipped ms values under second-named keys.
func extractDuration(payload Payload, call map[string]any) (int, bool) {
	for _, scope := range []map[string]any{call, payload} {
		if scope == nil {
			continue
		}
		for _, key := range durationAliases {
			value, ok := numberValue(scope[key])
			if !ok || value <= 0 || math.IsNaN(value) {
				continue
			}
			if value > 1000 {
				return int(math.Round(value / 1000)), true
			}
			return int(math.Round(value)), true
		}
	}
	return 0, false
}

// extractRecordingURL searches the known recording locations: flat aliases on
// the call object and envelope, a nested recording object, the analysis
// block, and the analysis' post-call sub-object.
func extractRecordingURL(payload Payload, call map[string]any) string {
	if url := scopedString(call, payload, recordingURLAliases); url != "" {
		return url
	}

	for _, scope := range []map[string]any{call, payload} {
		if recording := childMap(scope, "recording"); recording != nil {
			if url := firstString(recording, recordingObjectAliases...); url != "" {
				return url
			}
		}
	}

	analysis := analysisObject(payload)
	if url := firstString(analysis, recordingURLAliases...); url != "" {
		return url
	}
	for _, key := range []string{"post_call_analysis", "postCallAnalysis"} {
		if nested := childMap(analysis, key); nested != nil {
			if url := firstString(nested, recordingURLAliases...); url != "" {
				return url
			}
		}
	}

	return ""
}

func extractSummary(payload Payload, call, analysis map[string]any) string {
	if summary := scopedString(call, payload, summaryAliases); summary != "" {
		return summary
	}
	if summary := firstString(analysis, summaryAliases...); summary != "" {
		return summary
	}
	if nested := childMap(analysis, "post_call_analysis"); nested != nil {
		return firstString(nested, summaryAliases...)
	}
	return ""
}

func extractCustomData(analysis, call map[string]any, fields *Fields) {
	var custom map[string]any
	for _, scope := range []map[string]any{analysis, call} {
		for _, key := range customDataKeys {
			if nested := childMap(scope, key); nested != nil {
				custom = nested
				break
			}
		}
		if custom != nil {
			break
		}
	}
	if custom == nil {
		return
	}

	name := firstString(custom, customNameKeys...)
	if name == "" {
		name = DefaultLeadName
	}
	caseType := firstString(custom, customCaseKeys...)
	if caseType == "" {
		caseType = DefaultCaseType
	}
	urgency := firstString(custom, customUrgeKeys...)
	if urgency == "" {
		urgency = DefaultUrgency
	}

	fields.LeadName = &name
	fields.CaseType = &caseType
	fields.Urgency = &urgency

	if status := firstString(custom, customStatKeys...); status != "" {
		fields.LeadStatus = &status
	}
}

// scopedString searches the call object first, then the envelope.
func scopedString(call map[string]any, payload Payload, aliases []string) string {
	if text := firstString(call, aliases...); text != "" {
		return text
	}
	return firstString(payload, aliases...)
}

// numberValue coerces JSON numbers and numeric strings to float64.
func numberValue(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
