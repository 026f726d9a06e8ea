package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"lead-gateway/internal/jobs"
	"lead-gateway/internal/leads"
	"lead-gateway/internal/progress"
	"lead-gateway/internal/provider"
	wf "lead-gateway/internal/workflow"
)

// fakeLeadStore is an in-memory leads.Store.
type fakeLeadStore struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]leads.Lead
	updates []leads.FieldUpdate
}

func newFakeLeadStore(records ...leads.Lead) *fakeLeadStore {
	s := &fakeLeadStore{byID: make(map[uuid.UUID]leads.Lead)}
	for _, l := range records {
		s.byID[l.ID] = l
	}
	return s
}

func (s *fakeLeadStore) FindByID(ctx context.Context, id uuid.UUID) (leads.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id], nil
}

func (s *fakeLeadStore) FindManyByIDs(ctx context.Context, ids []uuid.UUID) ([]leads.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]leads.Lead, 0, len(ids))
	for _, id := range ids {
		if l, ok := s.byID[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *fakeLeadStore) UpdateFields(ctx context.Context, id uuid.UUID, update leads.FieldUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, update)
	l := s.byID[id]
	if update.PhoneNumber != nil {
		l.PhoneNumber = update.PhoneNumber
	}
	if update.EmailVerified != nil {
		l.EmailVerified = *update.EmailVerified
	}
	s.byID[id] = l
	return nil
}

// fakePublisher records every event published, in order.
type fakePublisher struct {
	mu       sync.Mutex
	complete []progress.OperationCompletePayload
	errs     []progress.OperationErrorPayload
	jobDone  []progress.JobCompletePayload
}

func (p *fakePublisher) PublishOperationComplete(room string, payload progress.OperationCompletePayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.complete = append(p.complete, payload)
	return nil
}

func (p *fakePublisher) PublishOperationError(room string, payload progress.OperationErrorPayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, payload)
	return nil
}

func (p *fakePublisher) PublishJobComplete(room string, payload progress.JobCompletePayload) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobDone = append(p.jobDone, payload)
	return nil
}

// fakeLedger records attempts without touching a database.
type fakeLedger struct {
	mu       sync.Mutex
	attempts int
}

func (l *fakeLedger) RecordAttempt(ctx context.Context, jobID string, leadID uuid.UUID, providerName string, costDollars float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.attempts++
	return nil
}

// fakeIdempotency lets tests control which workflowIDs are already seen.
type fakeIdempotency struct {
	mu       sync.Mutex
	seen     map[string]bool
	marked   []string
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{seen: make(map[string]bool)}
}

func (c *fakeIdempotency) Seen(ctx context.Context, workflowID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[workflowID], nil
}

func (c *fakeIdempotency) MarkSeen(ctx context.Context, workflowID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.marked = append(c.marked, workflowID)
	c.seen[workflowID] = true
	return nil
}

// fakeWorkflowRun implements client.WorkflowRun by handing back a canned
// value (or error) on Get.
type fakeWorkflowRun struct {
	value any
	err   error
}

func (r *fakeWorkflowRun) GetID() string    { return "fake-id" }
func (r *fakeWorkflowRun) GetRunID() string { return "fake-run-id" }

func (r *fakeWorkflowRun) Get(ctx context.Context, valuePtr any) error {
	if r.err != nil {
		return r.err
	}
	return assignOut(valuePtr, r.value)
}

func (r *fakeWorkflowRun) GetWithOptions(ctx context.Context, valuePtr any, options client.WorkflowRunGetOptions) error {
	return r.Get(ctx, valuePtr)
}

func assignOut(valuePtr any, value any) error {
	switch out := valuePtr.(type) {
	case *bool:
		*out = value.(bool)
	case *wf.PhoneLookupResult:
		*out = value.(wf.PhoneLookupResult)
	}
	return nil
}

// fakeTemporalClient embeds client.Client so it satisfies the full SDK
// surface while only ExecuteWorkflow is actually exercised in tests;
// anything else would panic on a nil embedded interface, which is fine
// since the orchestrator never calls it.
type fakeTemporalClient struct {
	client.Client

	mu       sync.Mutex
	executed []string
	run      *fakeWorkflowRun
	startErr error
}

func (c *fakeTemporalClient) ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow any, args ...any) (client.WorkflowRun, error) {
	c.mu.Lock()
	c.executed = append(c.executed, options.ID)
	c.mu.Unlock()

	if c.startErr != nil {
		return nil, c.startErr
	}
	return c.run, nil
}

func testLead(phone *string, emailVerified leads.EmailVerified) leads.Lead {
	return leads.Lead{
		ID:            uuid.New(),
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		PhoneNumber:   phone,
		EmailVerified: emailVerified,
	}
}

func newTestOrchestrator(store leads.Store, pub *fakePublisher, led *fakeLedger, idem *fakeIdempotency, tc *fakeTemporalClient) *Orchestrator {
	return &Orchestrator{
		Temporal:      tc,
		Leads:         store,
		Tracker:       jobs.NewTracker(zap.NewNop(), time.Minute, nil),
		Bus:           pub,
		Ledger:        led,
		Idempotency:   idem,
		ProviderNames: []string{"Orion", "Astra", "Nimbus"},
		Logger:        zap.NewNop(),
	}
}

func TestOrchestrator_Run_SkipsKnownFieldsWithoutDispatch(t *testing.T) {
	phone := "+15551234567"
	lead := testLead(&phone, leads.EmailVerifiedTrue)
	store := newFakeLeadStore(lead)
	pub := &fakePublisher{}
	tc := &fakeTemporalClient{}

	o := newTestOrchestrator(store, pub, &fakeLedger{}, newFakeIdempotency(), tc)

	err := o.Run(context.Background(), BatchInput{
		JobID:      "job-1",
		LeadIDs:    []uuid.UUID{lead.ID},
		Operations: []string{OperationVerifyEmail, OperationPhoneLookup},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tc.executed) != 0 {
		t.Errorf("expected no workflow dispatch for already-known fields, got %d", len(tc.executed))
	}
	if len(pub.complete) != 2 {
		t.Errorf("expected 2 operation-complete events, got %d", len(pub.complete))
	}
	if len(pub.jobDone) != 1 {
		t.Errorf("expected exactly 1 job-complete event, got %d", len(pub.jobDone))
	}
}

func TestOrchestrator_Run_DispatchesPhoneLookupAndRecordsCost(t *testing.T) {
	lead := testLead(nil, leads.EmailVerifiedTrue)
	store := newFakeLeadStore(lead)
	pub := &fakePublisher{}
	led := &fakeLedger{}
	tc := &fakeTemporalClient{run: &fakeWorkflowRun{value: wf.PhoneLookupResult{
		Result: provider.PhoneResult{Phone: "+15559876543", Provider: "Orion", Cost: 0.02},
		Attempts: []provider.PhoneResult{
			{Phone: "", Provider: "Astra", Cost: 0.01},
			{Phone: "+15559876543", Provider: "Orion", Cost: 0.02},
		},
	}}}

	o := newTestOrchestrator(store, pub, led, newFakeIdempotency(), tc)

	err := o.Run(context.Background(), BatchInput{
		JobID:      "job-2",
		LeadIDs:    []uuid.UUID{lead.ID},
		Operations: []string{OperationPhoneLookup},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tc.executed) != 1 {
		t.Fatalf("expected exactly 1 workflow dispatch, got %d", len(tc.executed))
	}
	if led.attempts != 2 {
		t.Errorf("expected 2 cost ledger attempts recorded (Astra's no-phone attempt plus Orion's), got %d", led.attempts)
	}
	if len(store.updates) != 1 || store.updates[0].PhoneNumber == nil {
		t.Errorf("expected the lead's phone number to be persisted")
	}
}

func TestOrchestrator_Run_IdempotencyCacheSkipsDuplicateDispatch(t *testing.T) {
	lead := testLead(nil, leads.EmailVerifiedUnknown)
	store := newFakeLeadStore(lead)
	pub := &fakePublisher{}
	tc := &fakeTemporalClient{run: &fakeWorkflowRun{value: true}}

	idem := newFakeIdempotency()
	idem.seen[WorkflowID(OperationVerifyEmail, lead.ID.String(), "job-3")] = true

	o := newTestOrchestrator(store, pub, &fakeLedger{}, idem, tc)

	err := o.Run(context.Background(), BatchInput{
		JobID:      "job-3",
		LeadIDs:    []uuid.UUID{lead.ID},
		Operations: []string{OperationVerifyEmail},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(tc.executed) != 0 {
		t.Errorf("expected no dispatch for a workflowId already marked seen, got %d", len(tc.executed))
	}
}
