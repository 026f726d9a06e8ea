package workflow

import (
	"errors"
	"testing"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"lead-gateway/internal/provider"
)

func TestPhoneLookupWorkflow_FirstProviderSucceeds(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivityWithOptions((&Activities{}).LookupPhone, activity.RegisterOptions{Name: LookupPhoneActivityName})

	env.OnActivity(LookupPhoneActivityName, "Orion", provider.LookupParams{FullName: "Ada Lovelace", CompanyWebsite: "example.com"}).
		Return(provider.PhoneResult{Phone: "+15551234567", Provider: "Orion", Cost: 0.02}, nil)

	env.ExecuteWorkflow(PhoneLookupWorkflow, PhoneLookupInput{
		Params:        provider.LookupParams{FullName: "Ada Lovelace", CompanyWebsite: "example.com"},
		ProviderNames: []string{"Orion", "Astra", "Nimbus"},
	})

	if !env.IsWorkflowCompleted() {
		t.Fatal("expected workflow to complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("unexpected workflow error: %v", err)
	}

	var outcome PhoneLookupResult
	if err := env.GetWorkflowResult(&outcome); err != nil {
		t.Fatalf("unexpected result error: %v", err)
	}
	if outcome.Result.Phone != "+15551234567" || outcome.Result.Provider != "Orion" {
		t.Errorf("expected Orion's result returned immediately, got %+v", outcome.Result)
	}
	if len(outcome.Attempts) != 1 || outcome.Attempts[0].Provider != "Orion" {
		t.Errorf("expected exactly Orion's attempt recorded, got %+v", outcome.Attempts)
	}
}

func TestPhoneLookupWorkflow_FallsThroughOnFailure(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivityWithOptions((&Activities{}).LookupPhone, activity.RegisterOptions{Name: LookupPhoneActivityName})

	params := provider.LookupParams{FullName: "No One", CompanyWebsite: "example.com"}

	env.OnActivity(LookupPhoneActivityName, "Orion", params).
		Return(provider.PhoneResult{}, errors.New("orion: transport failure"))
	env.OnActivity(LookupPhoneActivityName, "Astra", params).
		Return(provider.PhoneResult{Phone: "", Provider: "Astra", Cost: 0.01}, nil)
	env.OnActivity(LookupPhoneActivityName, "Nimbus", params).
		Return(provider.PhoneResult{Phone: "+15559876543", Provider: "Nimbus", Cost: 0.015}, nil)

	env.ExecuteWorkflow(PhoneLookupWorkflow, PhoneLookupInput{
		Params:        params,
		ProviderNames: []string{"Orion", "Astra", "Nimbus"},
	})

	if !env.IsWorkflowCompleted() {
		t.Fatal("expected workflow to complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("unexpected workflow error: %v", err)
	}

	var outcome PhoneLookupResult
	if err := env.GetWorkflowResult(&outcome); err != nil {
		t.Fatalf("unexpected result error: %v", err)
	}
	if outcome.Result.Provider != "Nimbus" || outcome.Result.Phone != "+15559876543" {
		t.Errorf("expected fallthrough to Nimbus after Orion's failure and Astra's miss, got %+v", outcome.Result)
	}

	// Orion's activity errored and is never billed, but Astra's no-phone
	// attempt still ran and cost money — its attempt must survive here so
	// the orchestrator can record it, not just Nimbus's winning attempt.
	if len(outcome.Attempts) != 2 {
		t.Fatalf("expected 2 billable attempts (Astra's miss plus Nimbus's win), got %d: %+v", len(outcome.Attempts), outcome.Attempts)
	}
	if outcome.Attempts[0].Provider != "Astra" || outcome.Attempts[0].Phone != "" || outcome.Attempts[0].Cost != 0.01 {
		t.Errorf("expected Astra's no-phone $0.01 attempt retained, got %+v", outcome.Attempts[0])
	}
	if outcome.Attempts[1].Provider != "Nimbus" {
		t.Errorf("expected Nimbus's winning attempt second, got %+v", outcome.Attempts[1])
	}
}

func TestPhoneLookupWorkflow_ExhaustsAllProviders(t *testing.T) {
	suite := &testsuite.WorkflowTestSuite{}
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivityWithOptions((&Activities{}).LookupPhone, activity.RegisterOptions{Name: LookupPhoneActivityName})

	params := provider.LookupParams{FullName: "Ghost", CompanyWebsite: "example.com"}

	for _, name := range []string{"Orion", "Astra", "Nimbus"} {
		env.OnActivity(LookupPhoneActivityName, name, params).
			Return(provider.PhoneResult{Phone: "", Provider: name}, nil)
	}

	env.ExecuteWorkflow(PhoneLookupWorkflow, PhoneLookupInput{
		Params:        params,
		ProviderNames: []string{"Orion", "Astra", "Nimbus"},
	})

	var outcome PhoneLookupResult
	if err := env.GetWorkflowResult(&outcome); err != nil {
		t.Fatalf("unexpected result error: %v", err)
	}
	if outcome.Result.Provider != "None" || outcome.Result.Phone != "" {
		t.Errorf("expected exhausted result {None, \"\"}, got %+v", outcome.Result)
	}
	if len(outcome.Attempts) != 3 {
		t.Errorf("expected all 3 no-phone attempts retained for billing, got %d: %+v", len(outcome.Attempts), outcome.Attempts)
	}
}
