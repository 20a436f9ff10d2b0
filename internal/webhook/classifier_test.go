package webhook

import (
	"os"
	"path/filepath"
	"testing"
)

func TestClassify(t *testing.T) {
	c := NewClassifier()

	cases := []struct {
		eventType string
		want      EventClass
	}{
		{"call_analyzed", ClassAnalyzed},
		{"call.analyzed", ClassAnalyzed},
		{"CALL_ANALYZED", ClassAnalyzed},
		{"call_ended", ClassFinal},
		{"call.completed", ClassFinal},
		{"end-of-call-report", ClassFinal},
		{"call_started", ClassIntermediate},
		{"transcript_updated", ClassIntermediate},
		{"heartbeat", ClassUnknown},
		{"", ClassUnknown},
	}

	for _, tc := range cases {
		if got := c.Classify(tc.eventType); got != tc.want {
			t.Errorf("Classify(%q) = %v, want %v", tc.eventType, got, tc.want)
		}
	}
}

func TestHasCallData(t *testing.T) {
	c := NewClassifier()

	withTranscript := Payload{"transcript": "agent: hello"}
	if !c.HasCallData(withTranscript) {
		t.Error("transcript should count as call data")
	}

	withRecording := Payload{"recording_url": "https://cdn.example/r.mp3"}
	if !c.HasCallData(withRecording) {
		t.Error("recording url should count as call data")
	}

	withAnalysis := Payload{"analysis": map[string]any{"call_successful": true}}
	if !c.HasCallData(withAnalysis) {
		t.Error("analysis block should count as call data")
	}

	withCallObject := Payload{"call": map[string]any{"call_id": "c1"}}
	if !c.HasCallData(withCallObject) {
		t.Error("nested call object should count as call data")
	}

	ping := Payload{"event": "heartbeat", "timestamp": "2026-09-01T10:00:00Z"}
	if c.HasCallData(ping) {
		t.Error("heartbeat ping should not count as call data")
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classifier.yaml")
	contents := "analyzed:\n  - tenant.analysis.done\nfinal:\n  - tenant.call.finished\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write override file: %v", err)
	}

	c := NewClassifier()
	if err := c.LoadOverrides(path); err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}

	if got := c.Classify("tenant.analysis.done"); got != ClassAnalyzed {
		t.Fatalf("override analyzed list not applied, got %v", got)
	}
	if got := c.Classify("tenant.call.finished"); got != ClassFinal {
		t.Fatalf("override final list not applied, got %v", got)
	}
	// Overridden class lists fully replace the built-ins.
	if got := c.Classify("call_analyzed"); got != ClassUnknown {
		t.Fatalf("built-in analyzed list should be replaced, got %v", got)
	}
	// Untouched classes keep their built-in list.
	if got := c.Classify("call_started"); got != ClassIntermediate {
		t.Fatalf("intermediate list should be unchanged, got %v", got)
	}
}

func TestLoadOverridesMarkers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "classifier.yaml")
	contents := "markers:\n  - payload\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write override file: %v", err)
	}

	c := NewClassifier()
	if err := c.LoadOverrides(path); err != nil {
		t.Fatalf("LoadOverrides failed: %v", err)
	}

	tenantEnvelope := Payload{"payload": map[string]any{"call_id": "c1"}}
	if !c.HasCallData(tenantEnvelope) {
		t.Fatal("overridden marker key should count as call data")
	}
	// Overridden markers fully replace the built-in keys.
	builtinEnvelope := Payload{"call": map[string]any{"call_id": "c1"}}
	if c.HasCallData(builtinEnvelope) {
		t.Fatal("built-in marker keys should be replaced")
	}
	// Content markers are structural and unaffected by the key override.
	withTranscript := Payload{"transcript": "agent: hello"}
	if !c.HasCallData(withTranscript) {
		t.Fatal("transcript should still count as call data")
	}
}
