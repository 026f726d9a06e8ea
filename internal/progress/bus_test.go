package progress

import (
	"encoding/json"
	"testing"
)

func TestSubject(t *testing.T) {
	if got := subject("job-123"); got != "progress.job-123" {
		t.Errorf("expected room-scoped subject, got %q", got)
	}
}

func TestEnvelope_RoundTrip(t *testing.T) {
	payload := OperationCompletePayload{
		LeadID:    "lead-1",
		Operation: "phone-lookup",
		Data:      map[string]any{"phone": "+15551234567", "provider": "Orion", "cost": 0.02},
		Progress:  ProgressCount{Completed: 1, Total: 4},
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	env := Envelope{Event: EventOperationComplete, Payload: raw}

	encoded, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	var decoded Envelope
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if decoded.Event != EventOperationComplete {
		t.Errorf("expected event to round-trip, got %q", decoded.Event)
	}

	var decodedPayload OperationCompletePayload
	if err := json.Unmarshal(decoded.Payload, &decodedPayload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if decodedPayload.LeadID != "lead-1" || decodedPayload.Progress.Total != 4 {
		t.Errorf("expected payload fields to round-trip, got %+v", decodedPayload)
	}
}
