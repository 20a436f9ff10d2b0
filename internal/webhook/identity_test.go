package webhook

import "testing"

func TestResolveIdentityNestedUnderData(t *testing.T) {
	payload := Payload{
		"event": "call_ended",
		"data": map[string]any{
			"call_id":     "abc-123",
			"agent_id":    "agent-7",
			"from_number": "+15551234567",
		},
	}

	id, ok := ResolveIdentity(payload)
	if !ok {
		t.Fatal("expected identity to resolve")
	}
	if id.CallID != "abc-123" || id.AgentID != "agent-7" || id.Phone != "+15551234567" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestResolveIdentityCamelCaseAtRoot(t *testing.T) {
	payload := Payload{
		"callId":      "root-1",
		"agentId":     "agent-x",
		"phoneNumber": "+15550001111",
	}

	id, ok := ResolveIdentity(payload)
	if !ok {
		t.Fatal("expected identity to resolve")
	}
	if id.CallID != "root-1" || id.AgentID != "agent-x" || id.Phone != "+15550001111" {
		t.Fatalf("unexpected identity: %+v", id)
	}
}

func TestResolveIdentityCallObjectWins(t *testing.T) {
	payload := Payload{
		"call_id": "envelope-id",
		"call": map[string]any{
			"call_id": "call-object-id",
		},
	}

	id, ok := ResolveIdentity(payload)
	if !ok {
		t.Fatal("expected identity to resolve")
	}
	if id.CallID != "call-object-id" {
		t.Fatalf("expected call object to win, got %s", id.CallID)
	}
}

func TestResolveIdentityFromAnalysis(t *testing.T) {
	payload := Payload{
		"analysis": map[string]any{
			"conversation_id": "conv-9",
		},
	}

	id, ok := ResolveIdentity(payload)
	if !ok {
		t.Fatal("expected identity to resolve from analysis block")
	}
	if id.CallID != "conv-9" {
		t.Fatalf("unexpected call id: %s", id.CallID)
	}
}

func TestResolveIdentityNoCallID(t *testing.T) {
	payload := Payload{"event": "heartbeat", "data": map[string]any{"status": "ok"}}

	if _, ok := ResolveIdentity(payload); ok {
		t.Fatal("expected resolution failure without a call id")
	}
}

func TestResolveIdentityBareIDOnlyTrustedInCallObject(t *testing.T) {
	// A root-level "id" names the delivery, not the call.
	payload := Payload{"id": "delivery-55"}
	if _, ok := ResolveIdentity(payload); ok {
		t.Fatal("expected root-level id to be ignored")
	}

	nested := Payload{"call": map[string]any{"id": "call-55"}}
	id, ok := ResolveIdentity(nested)
	if !ok || id.CallID != "call-55" {
		t.Fatalf("expected nested id accepted, got %+v ok=%v", id, ok)
	}
}

func TestResolveIdentityPhoneSentinels(t *testing.T) {
	web := Payload{
		"call": map[string]any{"call_id": "c1", "call_type": "web_call"},
	}
	id, _ := ResolveIdentity(web)
	if id.Phone != PhoneWebCall {
		t.Fatalf("expected %q for web call, got %q", PhoneWebCall, id.Phone)
	}

	absent := Payload{
		"call": map[string]any{"call_id": "c2"},
	}
	id, _ = ResolveIdentity(absent)
	if id.Phone != PhoneUnknown {
		t.Fatalf("expected %q when phone absent, got %q", PhoneUnknown, id.Phone)
	}
}
