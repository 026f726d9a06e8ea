package workflow

import "go.temporal.io/sdk/worker"

// RegisterAll binds every workflow and activity this package defines to w,
// under the explicit names other packages (and §6) reference by string —
// RegisterOptions.Name pins the wire name independent of Go's own function
// naming, so task-queue routing stays stable across refactors.
func RegisterAll(w worker.Worker, activities *Activities) {
	w.RegisterWorkflowWithOptions(PhoneLookupWorkflow, worker.RegisterWorkflowOptions{Name: PhoneLookupWorkflowName})
	w.RegisterWorkflowWithOptions(VerifyEmailWorkflow, worker.RegisterWorkflowOptions{Name: VerifyEmailWorkflowName})

	w.RegisterActivityWithOptions(activities.LookupPhone, worker.RegisterActivityOptions{Name: LookupPhoneActivityName})
	w.RegisterActivityWithOptions(activities.VerifyEmail, worker.RegisterActivityOptions{Name: VerifyEmailActivityName})
}
