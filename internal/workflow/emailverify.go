package workflow

import (
	"time"

	"go.temporal.io/sdk/workflow"

	"lead-gateway/internal/workflow/taskqueue"
)

// VerifyEmailInput carries the email to verify.
type VerifyEmailInput struct {
	Email string
}

// VerifyEmailWorkflow wraps the VerifyEmail activity so verify-email cells
// get the same durable dispatch/task-queue routing as phone-lookup cells
// (§6 names a dedicated "email-verification-queue").
func VerifyEmailWorkflow(ctx workflow.Context, input VerifyEmailInput) (bool, error) {
	ao := workflow.ActivityOptions{
		TaskQueue:           taskqueue.EmailVerification,
		StartToCloseTimeout: 30 * time.Second,
	}
	actCtx := workflow.WithActivityOptions(ctx, ao)

	var verified bool
	err := workflow.ExecuteActivity(actCtx, VerifyEmailActivityName, input.Email).Get(ctx, &verified)
	return verified, err
}
