// Package workflow hosts the durable-workflow-engine layer (§4.4, §4.5):
// real go.temporal.io/sdk workflow functions and the activities they
// delegate to, grounded on the client/worker contract the pack's Temporal
// reference files show (startToCloseTimeout-bounded activities, task-queue
// routed workers).
package workflow

import (
	"context"
	"fmt"

	"lead-gateway/internal/provider"
)

// Activity and workflow type names, registered explicitly rather than by
// reflection so task-queue routing in §6 is unambiguous.
const (
	LookupPhoneActivityName = "LookupPhoneActivity"
	VerifyEmailActivityName = "VerifyEmailActivity"

	PhoneLookupWorkflowName = "PhoneLookupWorkflow"
	VerifyEmailWorkflowName = "VerifyEmailWorkflow"
)

// EmailVerifier is the external capability verify-email delegates to. It is
// intentionally as small as PhoneProvider's Lookup: one call, one boolean
// outcome.
type EmailVerifier interface {
	Verify(ctx context.Context, email string) (bool, error)
}

// Activities bundles the non-deterministic capabilities workflow code
// invokes through workflow.ExecuteActivity. Its methods are registered
// individually with explicit names (see RegisterAll) so the worker's
// public surface matches §6's contract regardless of Go's own naming.
// Progress publication and persistence happen one layer up, in
// internal/orchestrator, which drives these workflows from outside
// workflow context and is free to call non-replay-safe code directly.
type Activities struct {
	Registry *provider.Registry
	Verifier EmailVerifier
}

// LookupPhone runs one provider's Execute by name. Providers not present in
// the registry (disabled, or misconfigured task-queue routing) are a
// programming error, not a lookup failure, so it returns an error rather
// than a provider.PhoneResult with an empty phone.
func (a *Activities) LookupPhone(ctx context.Context, providerName string, params provider.LookupParams) (provider.PhoneResult, error) {
	p, ok := a.Registry.ByName(providerName)
	if !ok {
		return provider.PhoneResult{}, fmt.Errorf("workflow: provider %q not found in registry", providerName)
	}
	return p.Execute(ctx, params)
}

// VerifyEmail runs the external email-verification call.
func (a *Activities) VerifyEmail(ctx context.Context, email string) (bool, error) {
	return a.Verifier.Verify(ctx, email)
}
