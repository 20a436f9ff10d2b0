package webhook

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// EventClass is the outcome of classifying a webhook's event type.
type EventClass int

const (
	ClassUnknown EventClass = iota
	ClassIntermediate
	ClassAnalyzed
	ClassFinal
)

// String returns the class name for logging.
func (c EventClass) String() string {
	switch c {
	case ClassIntermediate:
		return "intermediate"
	case ClassAnalyzed:
		return "analyzed"
	case ClassFinal:
		return "final"
	default:
		return "unknown"
	}
}

var eventTypeAliases = []string{"event", "event_type", "eventType", "type", "name"}

// EventType returns the payload's raw event-type string, or "" when absent.
func EventType(payload Payload) string {
	return firstString(payload, eventTypeAliases...)
}

// Built-in membership lists. Providers use both snake_case and dotted forms.
var (
	defaultIntermediate = []string{
		"call_started", "call.started", "call_ringing", "call.ringing",
		"call_ongoing", "call.in_progress", "transcript_updated",
		"transcript.partial", "speech_update",
	}
	defaultAnalyzed = []string{
		"call_analyzed", "call.analyzed", "post_call_analysis",
		"analysis_ready", "call.analysis_complete",
	}
	defaultFinal = []string{
		"call_ended", "call.ended", "call_completed", "call.completed",
		"call_finished", "call.hangup", "end-of-call-report",
	}
)

// defaultCallDataMarkers are the envelope keys whose presence as a nested
// object marks a payload as carrying call data. Kept in sync with the
// built-in call object keys the identity resolver searches.
var defaultCallDataMarkers = []string{"data", "body", "call"}

// Classifier maps event-type strings to classes and decides whether a payload
// with an unrecognized type still carries enough call data to persist.
type Classifier struct {
	intermediate map[string]struct{}
	analyzed     map[string]struct{}
	final        map[string]struct{}
	markers      []string
}

// NewClassifier creates a classifier with the built-in membership lists and
// call-data marker keys.
func NewClassifier() *Classifier {
	return &Classifier{
		intermediate: toSet(defaultIntermediate),
		analyzed:     toSet(defaultAnalyzed),
		final:        toSet(defaultFinal),
		markers:      defaultCallDataMarkers,
	}
}

// classifierOverrides is the optional YAML override file shape. A non-empty
// list fully replaces the built-in list for that class or for the call-data
// marker keys.
type classifierOverrides struct {
	Intermediate []string `yaml:"intermediate"`
	Analyzed     []string `yaml:"analyzed"`
	Final        []string `yaml:"final"`
	Markers      []string `yaml:"markers"`
}

// LoadOverrides replaces membership lists and marker keys from a YAML file.
// Used for provider tenants with nonstandard event names or envelopes.
func (c *Classifier) LoadOverrides(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read classifier config: %w", err)
	}

	var overrides classifierOverrides
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("parse classifier config: %w", err)
	}

	if len(overrides.Intermediate) > 0 {
		c.intermediate = toSet(overrides.Intermediate)
	}
	if len(overrides.Analyzed) > 0 {
		c.analyzed = toSet(overrides.Analyzed)
	}
	if len(overrides.Final) > 0 {
		c.final = toSet(overrides.Final)
	}
	if len(overrides.Markers) > 0 {
		c.markers = overrides.Markers
	}

	return nil
}

// Classify maps a raw event-type string to its class.
func (c *Classifier) Classify(eventType string) EventClass {
	normalized := strings.ToLower(strings.TrimSpace(eventType))
	if normalized == "" {
		return ClassUnknown
	}
	if _, ok := c.analyzed[normalized]; ok {
		return ClassAnalyzed
	}
	if _, ok := c.final[normalized]; ok {
		return ClassFinal
	}
	if _, ok := c.intermediate[normalized]; ok {
		return ClassIntermediate
	}
	return ClassUnknown
}

// HasCallData reports whether an unrecognized payload still carries
// substantive call data: a transcript, a recording url, an analysis block, or
// a nested object under one of the marker keys. Payloads with none of these
// are heartbeat-style pings and are dropped rather than persisted.
func (c *Classifier) HasCallData(payload Payload) bool {
	call := callObject(payload)

	if transcript, _ := extractTranscript(payload, call); transcript != "" {
		return true
	}
	if extractRecordingURL(payload, call) != "" {
		return true
	}
	if analysisObject(payload) != nil {
		return true
	}

	// A real nested object under a marker key counts; the root fallback
	// does not.
	for _, key := range c.markers {
		if childMap(payload, key) != nil {
			return true
		}
	}

	return false
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[strings.ToLower(strings.TrimSpace(value))] = struct{}{}
	}
	return set
}
