package emailverify

import (
	"context"
	"testing"
)

func TestVerifier_RejectsSyntacticallyInvalid(t *testing.T) {
	v := New(0.9)
	ok, err := v.Verify(context.Background(), "not-an-email")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected syntactically invalid address to fail verification")
	}
}

func TestVerifier_DeterministicAcrossCalls(t *testing.T) {
	v := New(0.5)
	first, err := v.Verify(context.Background(), "ada@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := v.Verify(context.Background(), "ada@example.com")
	if first != second {
		t.Error("expected verification outcome to be stable for the same address")
	}
}
