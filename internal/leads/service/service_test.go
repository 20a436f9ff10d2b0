package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"legalintake_backend/internal/events"
	"legalintake_backend/internal/leads/repository"
	"legalintake_backend/platform/apperr"
	"legalintake_backend/platform/logger"
	"legalintake_backend/platform/phone"
)

type fakeStore struct {
	mu     sync.Mutex
	leads  map[int64]*repository.Lead
	links  map[string]int64 // call id -> lead id via call log link
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads: make(map[int64]*repository.Lead),
		links: make(map[string]int64),
	}
}

func (f *fakeStore) List(_ context.Context) ([]repository.Lead, error) {
	out := make([]repository.Lead, 0, len(f.leads))
	for _, lead := range f.leads {
		out = append(out, *lead)
	}
	return out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, apperr.NotFound("lead not found")
	}
	copied := *lead
	return &copied, nil
}

func (f *fakeStore) FindByCallID(_ context.Context, callID string) (*repository.Lead, error) {
	var newest *repository.Lead
	for _, lead := range f.leads {
		if lead.CallID == nil || *lead.CallID != callID {
			continue
		}
		if newest == nil || lead.CreatedAt.After(newest.CreatedAt) {
			newest = lead
		}
	}
	if newest == nil {
		return nil, nil
	}
	copied := *newest
	return &copied, nil
}

func (f *fakeStore) FindIDByCallLogLink(_ context.Context, callID string) (int64, bool, error) {
	id, ok := f.links[callID]
	return id, ok, nil
}

func (f *fakeStore) FindRecentByPhoneDigits(_ context.Context, digits string, since time.Time) (*repository.Lead, error) {
	var newest *repository.Lead
	for _, lead := range f.leads {
		if phone.Digits(lead.Phone) != digits || lead.CreatedAt.Before(since) {
			continue
		}
		if newest == nil || lead.CreatedAt.After(newest.CreatedAt) {
			newest = lead
		}
	}
	if newest == nil {
		return nil, nil
	}
	copied := *newest
	return &copied, nil
}

func (f *fakeStore) Insert(_ context.Context, lead repository.Lead) (*repository.Lead, error) {
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt
	f.leads[lead.ID] = &lead
	copied := lead
	return &copied, nil
}

func (f *fakeStore) ApplyPatch(_ context.Context, id int64, patch repository.Patch) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, apperr.NotFound("lead not found")
	}
	if patch.CallID != nil {
		lead.CallID = patch.CallID
	}
	if patch.Name != nil {
		lead.Name = *patch.Name
	}
	if patch.Phone != nil {
		lead.Phone = *patch.Phone
	}
	if patch.CaseType != nil {
		lead.CaseType = *patch.CaseType
	}
	if patch.Urgency != nil {
		lead.Urgency = *patch.Urgency
	}
	if patch.Status != nil {
		lead.Status = *patch.Status
	}
	if patch.AttorneyID != nil {
		lead.AttorneyID = patch.AttorneyID
	}
	if patch.Summary != nil {
		lead.Summary = patch.Summary
	}
	if patch.Transcript != nil {
		lead.Transcript = patch.Transcript
	}
	lead.UpdatedAt = time.Now()
	copied := *lead
	return &copied, nil
}

func (f *fakeStore) AssignAttorney(_ context.Context, id, attorneyID int64) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, apperr.NotFound("lead not found")
	}
	lead.AttorneyID = &attorneyID
	now := time.Now()
	lead.LastContactedAt = &now
	copied := *lead
	return &copied, nil
}

func (f *fakeStore) NextID(_ context.Context) (int64, error) {
	f.nextID++
	return f.nextID, nil
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(repository.Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

func (f *fakeStore) WithCallLock(ctx context.Context, _ string, fn func(repository.Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f)
}

type testConfig struct{ window time.Duration }

func (c testConfig) GetDedupWindow() time.Duration   { return c.window }
func (c testConfig) GetClassifierConfigPath() string { return "" }

type fakeDirectory struct{}

func (fakeDirectory) GetByID(_ context.Context, id int64) (Attorney, error) {
	return Attorney{ID: id, Name: "Jane Counsel", Email: "jane@firm.example"}, nil
}

func newTestService(store repository.TxStore) *Service {
	log := logger.New("development")
	return New(store, testConfig{window: 30 * time.Minute}, fakeDirectory{}, events.NewInMemoryBus(log), log)
}

func strPtr(s string) *string { return &s }

func TestUpsertCreatesLeadWithDefaults(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	lead, err := svc.UpsertByCallID(context.Background(), "call-1", repository.Patch{})
	if err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	if lead.Name != "AI Lead" || lead.Phone != "Unknown" || lead.Status != "New" {
		t.Fatalf("unexpected defaults: %+v", lead)
	}
	if lead.CallID == nil || *lead.CallID != "call-1" {
		t.Fatalf("expected call id bound, got %v", lead.CallID)
	}
}

func TestUpsertIdempotent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	patch := repository.Patch{
		Phone:      strPtr("+15551234567"),
		Summary:    strPtr("caller described a slip and fall"),
		Transcript: strPtr("agent: hello\ncaller: I fell at the store"),
	}

	first, err := svc.UpsertByCallID(context.Background(), "call-1", patch)
	if err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	second, err := svc.UpsertByCallID(context.Background(), "call-1", patch)
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	if len(store.leads) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(store.leads))
	}
	if first.ID != second.ID {
		t.Fatalf("expected same lead, got %d and %d", first.ID, second.ID)
	}
	if *second.Summary != *patch.Summary || *second.Transcript != *patch.Transcript {
		t.Fatalf("fields changed on replay: %+v", second)
	}
}

func TestUpsertAbsorbsCallIDChurn(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	patch := repository.Patch{Phone: strPtr("+1 (555) 123-4567")}

	first, err := svc.UpsertByCallID(context.Background(), "call-x", patch)
	if err != nil {
		t.Fatalf("upsert x failed: %v", err)
	}
	second, err := svc.UpsertByCallID(context.Background(), "call-y", patch)
	if err != nil {
		t.Fatalf("upsert y failed: %v", err)
	}

	if len(store.leads) != 1 {
		t.Fatalf("expected call id churn to collapse to 1 lead, got %d", len(store.leads))
	}
	if first.ID != second.ID {
		t.Fatalf("expected same lead, got %d and %d", first.ID, second.ID)
	}
	if second.CallID == nil || *second.CallID != "call-y" {
		t.Fatalf("expected call id rebound to call-y, got %v", second.CallID)
	}
}

func TestUpsertWindowExpiry(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	patch := repository.Patch{Phone: strPtr("+15551234567")}

	first, err := svc.UpsertByCallID(context.Background(), "call-x", patch)
	if err != nil {
		t.Fatalf("upsert x failed: %v", err)
	}

	// Age the first lead past the dedup window.
	store.leads[first.ID].CreatedAt = time.Now().Add(-31 * time.Minute)

	second, err := svc.UpsertByCallID(context.Background(), "call-y", patch)
	if err != nil {
		t.Fatalf("upsert y failed: %v", err)
	}

	if len(store.leads) != 2 {
		t.Fatalf("expected 2 leads after window expiry, got %d", len(store.leads))
	}
	if first.ID == second.ID {
		t.Fatalf("expected distinct leads, both got id %d", first.ID)
	}
}

func TestUpsertNoWindowMatchForSentinelPhone(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	patch := repository.Patch{Phone: strPtr("Unknown")}

	if _, err := svc.UpsertByCallID(context.Background(), "call-x", patch); err != nil {
		t.Fatalf("upsert x failed: %v", err)
	}
	if _, err := svc.UpsertByCallID(context.Background(), "call-y", patch); err != nil {
		t.Fatalf("upsert y failed: %v", err)
	}

	if len(store.leads) != 2 {
		t.Fatalf("sentinel phones must not correlate: expected 2 leads, got %d", len(store.leads))
	}
}

func TestUpsertPrefersCallLogLink(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	existing, err := svc.UpsertByCallID(context.Background(), "call-old", repository.Patch{})
	if err != nil {
		t.Fatalf("seed upsert failed: %v", err)
	}
	store.links["call-new"] = existing.ID

	updated, err := svc.UpsertByCallID(context.Background(), "call-new", repository.Patch{
		Summary: strPtr("analysis arrived"),
	})
	if err != nil {
		t.Fatalf("linked upsert failed: %v", err)
	}

	if updated.ID != existing.ID {
		t.Fatalf("expected link lookup to find lead %d, got %d", existing.ID, updated.ID)
	}
	if len(store.leads) != 1 {
		t.Fatalf("expected 1 lead, got %d", len(store.leads))
	}
}

func TestUpsertDoesNotDowngradeStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.UpsertByCallID(context.Background(), "call-1", repository.Patch{
		Status: strPtr("Qualified"),
	})
	if err != nil {
		t.Fatalf("analyzed upsert failed: %v", err)
	}

	// A later delivery without an explicit status leaves it untouched.
	lead, err := svc.UpsertByCallID(context.Background(), "call-1", repository.Patch{
		Transcript: strPtr("agent: hello"),
	})
	if err != nil {
		t.Fatalf("intermediate upsert failed: %v", err)
	}
	if lead.Status != "Qualified" {
		t.Fatalf("status downgraded to %q", lead.Status)
	}
}

func TestCreateRequiresNoDefaultsOverwrite(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	lead, err := svc.Create(context.Background(), CreateInput{
		Name:  "John Caller",
		Phone: "+15550001111",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if lead.Name != "John Caller" || lead.CaseType != "General" || lead.Status != "New" {
		t.Fatalf("unexpected lead: %+v", lead)
	}
	if lead.ID != 1 {
		t.Fatalf("expected allocated id 1, got %d", lead.ID)
	}
}
