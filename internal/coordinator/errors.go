package coordinator

import "fmt"

// Stage names a step of the pipeline.
type Stage string

const (
	StageValidate Stage = "validate"
	StagePrice    Stage = "price"
	StagePersist  Stage = "persist"
	StageNotify   Stage = "notify"
	StageAudit    Stage = "audit"
)

// PipelineError wraps the failure of a stage. Use errors.As to reach the
// underlying *domain.ValidationError, *domain.PersistenceError or
// notification error.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("coordinator: %s stage failed: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }
