package webhook

import "testing"

func TestExtractTranscriptString(t *testing.T) {
	payload := Payload{"transcript": "agent: hello\ncaller: hi"}

	fields := ExtractFields(payload)
	if fields.Transcript == nil || *fields.Transcript != "agent: hello\ncaller: hi" {
		t.Fatalf("unexpected transcript: %v", fields.Transcript)
	}
}

func TestExtractTranscriptFromTurns(t *testing.T) {
	payload := Payload{
		"data": map[string]any{
			"call_id": "c1",
			"transcript_object": []any{
				map[string]any{"role": "agent", "content": "hello, how can I help"},
				map[string]any{"speaker": "caller", "text": "I was in an accident"},
				map[string]any{"role": "agent"}, // no text, skipped
			},
		},
	}

	fields := ExtractFields(payload)
	want := "agent: hello, how can I help\ncaller: I was in an accident"
	if fields.Transcript == nil || *fields.Transcript != want {
		t.Fatalf("unexpected transcript: %v", fields.Transcript)
	}
}

func TestExtractDurationNormalization(t *testing.T) {
	ms := ExtractFields(Payload{"duration_ms": float64(125000), "call_id": "c"})
	if ms.DurationSeconds == nil || *ms.DurationSeconds != 125 {
		t.Fatalf("expected 125s from 125000ms, got %v", ms.DurationSeconds)
	}

	seconds := ExtractFields(Payload{"duration": float64(45)})
	if seconds.DurationSeconds == nil || *seconds.DurationSeconds != 45 {
		t.Fatalf("expected 45s, got %v", seconds.DurationSeconds)
	}

	text := ExtractFields(Payload{"call_duration": "90"})
	if text.DurationSeconds == nil || *text.DurationSeconds != 90 {
		t.Fatalf("expected 90s from string, got %v", text.DurationSeconds)
	}

	invalid := ExtractFields(Payload{"duration": float64(-3)})
	if invalid.DurationSeconds != nil {
		t.Fatalf("expected no duration for negative value, got %v", invalid.DurationSeconds)
	}
}

func TestExtractRecordingURLLocations(t *testing.T) {
	cases := []struct {
		name    string
		payload Payload
	}{
		{"top level", Payload{"recording_url": "https://cdn.example/a.mp3"}},
		{"call object", Payload{"call": map[string]any{"recordingUrl": "https://cdn.example/a.mp3"}}},
		{"recording object", Payload{"recording": map[string]any{"url": "https://cdn.example/a.mp3"}}},
		{"analysis", Payload{"analysis": map[string]any{"recording_url": "https://cdn.example/a.mp3"}}},
		{"post call analysis", Payload{"analysis": map[string]any{
			"post_call_analysis": map[string]any{"recording_url": "https://cdn.example/a.mp3"},
		}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := ExtractFields(tc.payload)
			if fields.RecordingURL == nil || *fields.RecordingURL != "https://cdn.example/a.mp3" {
				t.Fatalf("recording url not found: %v", fields.RecordingURL)
			}
		})
	}
}

func TestExtractSummaryPlaceholder(t *testing.T) {
	payload := Payload{"transcript": "agent: hello there caller"}

	fields := ExtractFields(payload)
	if fields.Summary == nil || *fields.Summary != "call received" {
		t.Fatalf("expected placeholder summary, got %v", fields.Summary)
	}

	empty := ExtractFields(Payload{"event": "ping"})
	if empty.Summary != nil {
		t.Fatalf("expected no summary without transcript, got %v", empty.Summary)
	}
}

func TestExtractCustomAnalysisData(t *testing.T) {
	payload := Payload{
		"analysis": map[string]any{
			"custom_analysis_data": map[string]any{
				"name":      "Maria Gonzalez",
				"case_type": "Personal Injury",
			},
		},
	}

	fields := ExtractFields(payload)
	if fields.LeadName == nil || *fields.LeadName != "Maria Gonzalez" {
		t.Fatalf("unexpected lead name: %v", fields.LeadName)
	}
	if fields.CaseType == nil || *fields.CaseType != "Personal Injury" {
		t.Fatalf("unexpected case type: %v", fields.CaseType)
	}
	if fields.Urgency == nil || *fields.Urgency != DefaultUrgency {
		t.Fatalf("expected default urgency, got %v", fields.Urgency)
	}
}

func TestExtractCustomDataAbsentLeavesNil(t *testing.T) {
	fields := ExtractFields(Payload{"transcript": "agent: hi"})
	if fields.LeadName != nil || fields.CaseType != nil || fields.Urgency != nil {
		t.Fatalf("expected nil case metadata without custom data: %+v", fields)
	}
}

func TestExtractCallSuccessful(t *testing.T) {
	payload := Payload{
		"analysis": map[string]any{"call_successful": false},
	}

	fields := ExtractFields(payload)
	if fields.CallSuccessful == nil || *fields.CallSuccessful {
		t.Fatalf("expected call_successful false, got %v", fields.CallSuccessful)
	}
}
