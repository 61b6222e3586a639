// errors/pipeline_errors.go
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrAuthRequired   = errors.New("no usable identity assertion")
	ErrScopeRequired  = errors.New("county scope required for this role")
	ErrInvalidFilter  = errors.New("invalid filter input")
	ErrFetchFailed    = errors.New("record store query failed")
	ErrMaskingFailure = errors.New("masking rule could not be applied")
	ErrInternalServer = errors.New("internal server error")
)

// Error kinds surfaced to the transport layer.
const (
	KindAuthRequired  = "AUTH_REQUIRED"
	KindScopeRequired = "SCOPE_REQUIRED"
	KindInvalidFilter = "INVALID_FILTER"
	KindFetchFailed   = "FETCH_FAILED"
	KindInvalidRules  = "INVALID_RULES"
	KindMaskingFailed = "MASKING_FAILURE"
	KindInternal      = "INTERNAL"
)

// PipelineError names the pipeline stage that failed together with the error
// kind the transport layer maps to a status code. It wraps the sentinel so
// errors.Is keeps working through the pipeline boundary.
type PipelineError struct {
	Stage   string
	Kind    string
	Message string
	Err     error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("pipeline failed at %s (%s): %s", e.Stage, e.Kind, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError builds a stage-tagged failure around a sentinel error.
func NewPipelineError(stage, kind, message string, err error) *PipelineError {
	return &PipelineError{Stage: stage, Kind: kind, Message: message, Err: err}
}

// KindOf resolves the error kind for an arbitrary pipeline error, falling
// back to INTERNAL for anything unrecognized.
func KindOf(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, ErrAuthRequired):
		return KindAuthRequired
	case errors.Is(err, ErrScopeRequired):
		return KindScopeRequired
	case errors.Is(err, ErrInvalidFilter):
		return KindInvalidFilter
	case errors.Is(err, ErrFetchFailed):
		return KindFetchFailed
	case errors.Is(err, ErrInvalidRules):
		return KindInvalidRules
	}
	return KindInternal
}
