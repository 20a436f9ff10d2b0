package webhook

import (
	"context"
	"errors"
	"testing"

	callrepo "legalintake_backend/internal/calllogs/repository"
	leadrepo "legalintake_backend/internal/leads/repository"
	"legalintake_backend/platform/logger"
)

type fakeLeads struct {
	calls []leadrepo.Patch
	ids   []string
	err   error
}

func (f *fakeLeads) UpsertByCallID(_ context.Context, callID string, patch leadrepo.Patch) (*leadrepo.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, patch)
	f.ids = append(f.ids, callID)
	return &leadrepo.Lead{ID: 7, CallID: &callID}, nil
}

type fakeCallLogs struct {
	calls []callrepo.Patch
	ids   []string
	err   error
}

func (f *fakeCallLogs) UpsertByCallID(_ context.Context, callID string, patch callrepo.Patch) (*callrepo.CallLog, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, patch)
	f.ids = append(f.ids, callID)
	return &callrepo.CallLog{ID: 1, CallID: callID, LeadID: patch.LeadID}, nil
}

func newTestPipeline() (*Service, *fakeLeads, *fakeCallLogs) {
	leads := &fakeLeads{}
	callLogs := &fakeCallLogs{}
	svc := NewService(NewClassifier(), leads, callLogs, logger.New("development"))
	return svc, leads, callLogs
}

func TestProcessDropsWithoutCallID(t *testing.T) {
	svc, leads, callLogs := newTestPipeline()

	err := svc.Process(context.Background(), Payload{"event": "call_ended", "transcript": "agent: hi"})
	if err != nil {
		t.Fatalf("drop must not be an error: %v", err)
	}
	if len(leads.calls) != 0 || len(callLogs.calls) != 0 {
		t.Fatal("nothing should be persisted without a call id")
	}
}

func TestProcessDropsHeartbeat(t *testing.T) {
	svc, leads, callLogs := newTestPipeline()

	payload := Payload{"event": "heartbeat", "call_id": "c1"}
	if err := svc.Process(context.Background(), payload); err != nil {
		t.Fatalf("drop must not be an error: %v", err)
	}
	if len(leads.calls) != 0 || len(callLogs.calls) != 0 {
		t.Fatal("heartbeat without call data should not be persisted")
	}
}

func TestProcessUnknownEventWithDataPersists(t *testing.T) {
	svc, leads, callLogs := newTestPipeline()

	payload := Payload{
		"event":      "tenant_custom_event",
		"call_id":    "c1",
		"transcript": "agent: hello, how can I help you today",
	}
	if err := svc.Process(context.Background(), payload); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if len(leads.calls) != 1 || len(callLogs.calls) != 1 {
		t.Fatal("unknown event with call data should persist")
	}
	if leads.calls[0].Status != nil {
		t.Fatal("non-analyzed events must not set lead status")
	}
}

func TestProcessAnalyzedSetsStatus(t *testing.T) {
	svc, leads, _ := newTestPipeline()

	payload := Payload{
		"event":   "call_analyzed",
		"call_id": "c1",
		"analysis": map[string]any{
			"call_successful": true,
		},
	}
	if err := svc.Process(context.Background(), payload); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if leads.calls[0].Status == nil || *leads.calls[0].Status != "Qualified" {
		t.Fatalf("expected Qualified from call_successful, got %v", leads.calls[0].Status)
	}
}

func TestProcessAnalyzedMapsQualification(t *testing.T) {
	svc, leads, _ := newTestPipeline()

	payload := Payload{
		"event":   "call_analyzed",
		"call_id": "c1",
		"analysis": map[string]any{
			"call_successful": true,
			"custom_analysis_data": map[string]any{
				"qualification": "disqualified",
			},
		},
	}
	if err := svc.Process(context.Background(), payload); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if leads.calls[0].Status == nil || *leads.calls[0].Status != "Disqualified" {
		t.Fatalf("expected explicit qualification to win, got %v", leads.calls[0].Status)
	}
}

func TestProcessLinksCallLogToLead(t *testing.T) {
	svc, _, callLogs := newTestPipeline()

	payload := Payload{
		"event": "call_ended",
		"data": map[string]any{
			"call_id":     "c1",
			"agent_id":    "agent-7",
			"from_number": "+15551234567",
		},
	}
	if err := svc.Process(context.Background(), payload); err != nil {
		t.Fatalf("process failed: %v", err)
	}

	patch := callLogs.calls[0]
	if patch.LeadID == nil || *patch.LeadID != 7 {
		t.Fatalf("call log not linked to lead: %v", patch.LeadID)
	}
	if patch.AgentID == nil || *patch.AgentID != "agent-7" {
		t.Fatalf("agent id not propagated: %v", patch.AgentID)
	}
	if patch.PhoneNumber == nil || *patch.PhoneNumber != "+15551234567" {
		t.Fatalf("phone not propagated: %v", patch.PhoneNumber)
	}
	if patch.Status == nil || *patch.Status != "completed" {
		t.Fatalf("final event without status should default to completed, got %v", patch.Status)
	}
}

func TestProcessUnknownPhoneNeverOverwrites(t *testing.T) {
	svc, leads, callLogs := newTestPipeline()

	payload := Payload{
		"event":      "call_started",
		"call_id":    "c1",
		"transcript": "agent: hello",
	}
	if err := svc.Process(context.Background(), payload); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if leads.calls[0].Phone != nil {
		t.Fatal("Unknown phone sentinel must not enter the lead patch")
	}
	if callLogs.calls[0].PhoneNumber != nil {
		t.Fatal("Unknown phone sentinel must not enter the call log patch")
	}
}

func TestProcessStoreFailure(t *testing.T) {
	leads := &fakeLeads{err: errors.New("connection refused")}
	svc := NewService(NewClassifier(), leads, &fakeCallLogs{}, logger.New("development"))

	payload := Payload{"event": "call_ended", "call_id": "c1"}
	if err := svc.Process(context.Background(), payload); err == nil {
		t.Fatal("store failure should propagate to the handler")
	}
}
