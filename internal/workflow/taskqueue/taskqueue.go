// Package taskqueue names the Temporal task queues the gateway dispatches
// onto and bounds each one's worker concurrency, adapted from the teacher's
// hand-rolled WorkerPool into Temporal's own per-worker concurrency knobs
// (§6 "task-queue routing to bound worker concurrency").
package taskqueue

import "go.temporal.io/sdk/worker"

const (
	// PhoneVerify1 is dedicated to Orion per §6's explicit assignment.
	PhoneVerify1 = "phone-verify-1"
	// PhoneVerify2 is shared by Astra and Nimbus per §6's grouping note.
	PhoneVerify2 = "phone-verify-2"
	// EmailVerification bounds email-verification activity concurrency.
	EmailVerification = "email-verification-queue"
)

// Config pairs a task queue name with the worker concurrency it should
// enforce. The limiters already cap external call concurrency per
// provider; these bounds are a second, coarser ceiling on how many
// activities a single worker process runs at once for that queue.
type Config struct {
	Queue                     string
	MaxConcurrentActivity     int
	MaxConcurrentWorkflowTask int
}

// Defaults returns the three task-queue bounds the design assigns: a
// dedicated queue for Orion (maxConcurrent=3, matching its provider
// config), a shared queue for Astra+Nimbus sized to their combined
// concurrency, and a queue for email verification.
func Defaults() []Config {
	return []Config{
		{Queue: PhoneVerify1, MaxConcurrentActivity: 3, MaxConcurrentWorkflowTask: 10},
		{Queue: PhoneVerify2, MaxConcurrentActivity: 12, MaxConcurrentWorkflowTask: 10},
		{Queue: EmailVerification, MaxConcurrentActivity: 20, MaxConcurrentWorkflowTask: 10},
	}
}

// WorkerOptions translates a Config into the Temporal SDK's own
// concurrency-bounding options.
func WorkerOptions(cfg Config) worker.Options {
	return worker.Options{
		MaxConcurrentActivityExecutionSize:     cfg.MaxConcurrentActivity,
		MaxConcurrentWorkflowTaskExecutionSize:  cfg.MaxConcurrentWorkflowTask,
	}
}
