package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskMatrixWarmup reloads the permission matrix ahead of the morning
	// traffic ramp.
	TaskMatrixWarmup = "authz:matrix_warmup"
	// TaskScopePrewarm resolves the customer portfolio of every active
	// field account and reports accounts left without customers.
	TaskScopePrewarm = "authz:scope_prewarm"
)

// MatrixWarmupPayload configures a matrix warmup run.
type MatrixWarmupPayload struct {
	// Force drops the cached matrix before reloading instead of trusting
	// the shared grants version.
	Force bool `json:"force"`
}

// ScopePrewarmPayload configures a scope prewarm run.
type ScopePrewarmPayload struct {
	// Roles restricts the pass to the named roles. Empty means every
	// active field role.
	Roles []string `json:"roles,omitempty"`
}

// NewMatrixWarmupTask constructs an Asynq task.
func NewMatrixWarmupTask(payload MatrixWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskMatrixWarmup, data), nil
}

// NewScopePrewarmTask constructs an Asynq task.
func NewScopePrewarmTask(payload ScopePrewarmPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScopePrewarm, data), nil
}
