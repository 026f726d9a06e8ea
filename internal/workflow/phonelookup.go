package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"lead-gateway/internal/provider"
	"lead-gateway/internal/workflow/taskqueue"
)

// PhoneLookupInput carries the normalized lookup params and the provider
// names to try, in priority order — computed by the caller from
// Registry.Ordered() since workflow code must not hold a live registry
// reference (it has to stay replay-deterministic).
type PhoneLookupInput struct {
	Params        provider.LookupParams
	ProviderNames []string
}

func taskQueueForProvider(name string) string {
	if name == "Orion" {
		return taskqueue.PhoneVerify1
	}
	return taskqueue.PhoneVerify2
}

// PhoneLookupResult is what PhoneLookupWorkflow returns: the decided
// outcome (the winning provider's PhoneResult, or a Provider: "None"
// terminal once every provider is exhausted) plus every attempt that
// actually ran. §4.2 charges cost per attempt that ran, including ones
// that found no phone, so the caller needs every attempt's PhoneResult to
// record cost faithfully, not just the final one.
type PhoneLookupResult struct {
	Result   provider.PhoneResult
	Attempts []provider.PhoneResult
}

// PhoneLookupWorkflow implements §4.4: try providers in priority order,
// return at the first success. A single provider's failure is recorded
// and is not terminal for the workflow; only exhausting every provider
// without a phone produces the "None" result. Every attempt that
// completed (found a phone or not) is carried in Attempts so its cost is
// never dropped.
func PhoneLookupWorkflow(ctx workflow.Context, input PhoneLookupInput) (PhoneLookupResult, error) {
	logger := workflow.GetLogger(ctx)

	var attempts []provider.PhoneResult

	for _, name := range input.ProviderNames {
		ao := workflow.ActivityOptions{
			TaskQueue:           taskQueueForProvider(name),
			StartToCloseTimeout: 30 * time.Second,
			RetryPolicy: &temporal.RetryPolicy{
				MaximumAttempts: 1, // the provider's own Lookup retries internally (§4.2)
			},
		}
		actCtx := workflow.WithActivityOptions(ctx, ao)

		var result provider.PhoneResult
		err := workflow.ExecuteActivity(actCtx, LookupPhoneActivityName, name, input.Params).Get(ctx, &result)
		if err != nil {
			logger.Warn("provider attempt failed, trying next", "provider", name, "error", err)
			continue
		}
		attempts = append(attempts, result)
		if result.Phone != "" {
			return PhoneLookupResult{Result: result, Attempts: attempts}, nil
		}
	}

	return PhoneLookupResult{
		Result: provider.PhoneResult{
			Phone:     "",
			Provider:  "None",
			Cost:      0,
			Timestamp: workflow.Now(ctx),
		},
		Attempts: attempts,
	}, nil
}
