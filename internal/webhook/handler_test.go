package webhook

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"legalintake_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

func newTestRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewHandler(svc, logger.New("development"))
	engine.POST("/webhook", h.Handle)
	return engine
}

func postWebhook(t *testing.T, engine *gin.Engine, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var decoded map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec.Code, decoded
}

func TestHandlerAcknowledgesDrop(t *testing.T) {
	svc, leads, _ := newTestPipeline()
	engine := newTestRouter(svc)

	// Heartbeat with no call data: dropped, but still acknowledged success.
	code, body := postWebhook(t, engine, `{"event":"heartbeat","call_id":"c1"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["success"] != true {
		t.Fatalf("expected success=true for dropped event, got %v", body["success"])
	}
	if len(leads.calls) != 0 {
		t.Fatal("dropped event must not persist anything")
	}
}

func TestHandlerMalformedBodyStill200(t *testing.T) {
	svc, _, _ := newTestPipeline()
	engine := newTestRouter(svc)

	code, body := postWebhook(t, engine, `{not json`)
	if code != http.StatusOK {
		t.Fatalf("expected 200 for malformed body, got %d", code)
	}
	if body["success"] != false {
		t.Fatalf("expected success=false, got %v", body["success"])
	}
}

func TestHandlerStoreFailureStill200(t *testing.T) {
	leads := &fakeLeads{err: errors.New("db down")}
	svc := NewService(NewClassifier(), leads, &fakeCallLogs{}, logger.New("development"))
	engine := newTestRouter(svc)

	code, body := postWebhook(t, engine, `{"event":"call_ended","call_id":"c1"}`)
	if code != http.StatusOK {
		t.Fatalf("provider must never see an error code, got %d", code)
	}
	if body["success"] != false {
		t.Fatalf("expected success=false on store failure, got %v", body["success"])
	}
}

func TestHandlerSuccessfulReconciliation(t *testing.T) {
	svc, leads, callLogs := newTestPipeline()
	engine := newTestRouter(svc)

	payload := `{
		"event": "call_analyzed",
		"data": {"call_id": "c1", "from_number": "+15551234567"},
		"analysis": {"call_successful": true, "summary": "caller needs an injury attorney"}
	}`

	code, body := postWebhook(t, engine, payload)
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("expected 200 success=true, got %d %v", code, body)
	}
	if len(leads.calls) != 1 || len(callLogs.calls) != 1 {
		t.Fatal("expected one lead and one call log upsert")
	}
}
