// Package webhook implements the voice-call webhook reconciliation pipeline:
// identity resolution, event classification, field extraction, and the
// always-acknowledge HTTP handler.
//
// Provider payloads are not contractual. The same logical field shows up
// under different names, at different nesting depths, across deliveries and
// tenants, so every lookup here is an ordered alias search evaluated until
// the first non-empty hit.
package webhook

import "strings"

// Payload is a decoded webhook body. Shape is provider-controlled and
// deliberately left untyped.
type Payload map[string]any

// Identity carries the correlation keys resolved from a payload.
type Identity struct {
	CallID  string
	AgentID string
	Phone   string
}

// Phone sentinels used when the payload carries no telephony number.
const (
	PhoneWebCall = "Web Call"
	PhoneUnknown = "Unknown"
)

// Keys under which the provider nests the call object.
var callObjectKeys = []string{"data", "body", "call"}

var callIDAliases = []string{
	"call_id", "callId", "call_sid", "callSid",
	"conversation_id", "conversationId", "session_id", "sessionId",
}

// The bare "id" key is only trusted inside the nested call object; at the
// envelope level it usually names the delivery, not the call.
var callObjectIDAliases = append(callIDAliases, "id")

var agentIDAliases = []string{
	"agent_id", "agentId", "assistant_id", "assistantId", "bot_id", "botId",
}

var phoneAliases = []string{
	"from_number", "fromNumber", "caller_number", "callerNumber",
	"customer_number", "customerNumber", "phone_number", "phoneNumber",
	"phone", "from", "caller",
}

var callTypeAliases = []string{"call_type", "callType", "channel"}

// ResolveIdentity extracts the call id, agent id, and caller phone from a raw
// payload. The second return value is false when no call id could be found,
// in which case the event cannot be correlated and must be dropped.
func ResolveIdentity(payload Payload) (Identity, bool) {
	call := callObject(payload)
	analysis := analysisObject(payload)

	id := Identity{}

	id.CallID = firstString(call, callObjectIDAliases...)
	if id.CallID == "" {
		id.CallID = firstString(payload, callIDAliases...)
	}
	if id.CallID == "" {
		id.CallID = firstString(analysis, callIDAliases...)
	}
	if id.CallID == "" {
		return Identity{}, false
	}

	id.AgentID = firstString(call, agentIDAliases...)
	if id.AgentID == "" {
		id.AgentID = firstString(payload, agentIDAliases...)
	}

	id.Phone = firstString(call, phoneAliases...)
	if id.Phone == "" {
		id.Phone = firstString(payload, phoneAliases...)
	}
	if id.Phone == "" {
		id.Phone = phoneSentinel(payload, call)
	}

	return id, true
}

// callObject returns the nested call object, or the payload root when the
// provider delivers call fields unnested.
func callObject(payload Payload) map[string]any {
	for _, key := range callObjectKeys {
		if nested := childMap(payload, key); nested != nil {
			return nested
		}
	}
	return payload
}

// analysisObject finds the analysis block wherever it lives: inside the call
// object or at the envelope level.
func analysisObject(payload Payload) map[string]any {
	if nested := childMap(callObject(payload), "analysis"); nested != nil {
		return nested
	}
	return childMap(payload, "analysis")
}

func phoneSentinel(payload Payload, call map[string]any) string {
	callType := firstString(call, callTypeAliases...)
	if callType == "" {
		callType = firstString(payload, callTypeAliases...)
	}
	if strings.Contains(strings.ToLower(callType), "web") {
		return PhoneWebCall
	}
	return PhoneUnknown
}

// firstString returns the first non-empty string value among the given keys.
func firstString(m map[string]any, keys ...string) string {
	if m == nil {
		return ""
	}
	for _, key := range keys {
		if text := stringValue(m[key]); text != "" {
			return text
		}
	}
	return ""
}

func stringValue(value any) string {
	text, _ := value.(string)
	return strings.TrimSpace(text)
}

// childMap returns m[key] when it is an object, else nil.
func childMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	nested, _ := m[key].(map[string]any)
	return nested
}
