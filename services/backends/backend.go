// Package backends defines the uniform adapter contract through which the
// routing engine invokes any tier's model-serving endpoint, and the typed
// failure taxonomy every adapter must map its errors into.
package backends

import (
	"context"
	"errors"
	"fmt"

	"github.com/velox-ai/agents/models"
)

// FailureReason classifies why a backend invocation failed. Adapters never
// coerce one reason into another: an absent endpoint is unconfigured, not a
// transport error, and an error-status reply is upstream, never an empty
// success.
type FailureReason string

const (
	// ReasonUnconfigured means the backend has no endpoint or credential for
	// this process. Detected without attempting network I/O.
	ReasonUnconfigured FailureReason = "unconfigured"

	// ReasonTimeout means the per-call deadline elapsed before the backend
	// replied. The underlying call is abandoned, not awaited further.
	ReasonTimeout FailureReason = "timeout"

	// ReasonTransport means the request never produced an HTTP response
	// (connection refused, DNS failure, reset).
	ReasonTransport FailureReason = "transport_error"

	// ReasonUpstream means the backend responded but signalled failure
	// (non-2xx status, error payload, or an empty completion).
	ReasonUpstream FailureReason = "upstream_error"
)

// GenerateRequest carries one prompt to a backend. Instruction is the
// composed system block; Context and Utterance are forwarded separately for
// backends whose wire format keeps them apart.
type GenerateRequest struct {
	Instruction string
	Context     string
	Utterance   string
}

// GenerateResult is a successful completion.
type GenerateResult struct {
	Text  string
	Model string
}

// Backend is the uniform capability contract: submit a prompt, receive text
// or a *BackendError within the caller's deadline. Implementations must be
// safe for concurrent use; all mutable configuration is fixed at
// construction.
type Backend interface {
	// Name returns the model identifier reported in routed responses.
	Name() string

	// Tier returns the tier this backend serves.
	Tier() models.Tier

	// Generate produces a completion. Any failure is returned as a
	// *BackendError; transport faults never propagate raw.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)
}

// BackendError is the typed outcome of a failed invocation.
type BackendError struct {
	Backend    string
	Tier       models.Tier
	Reason     FailureReason
	StatusCode int
	Cause      error
}

// Error implements the error interface
func (e *BackendError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("backend %s (%s tier) failed: %s: %v", e.Backend, e.Tier, e.Reason, e.Cause)
	}
	return fmt.Sprintf("backend %s (%s tier) failed: %s", e.Backend, e.Tier, e.Reason)
}

// Unwrap implements error unwrapping
func (e *BackendError) Unwrap() error {
	return e.Cause
}

// NewBackendError creates a typed backend failure.
func NewBackendError(backend string, tier models.Tier, reason FailureReason, cause error) *BackendError {
	return &BackendError{
		Backend: backend,
		Tier:    tier,
		Reason:  reason,
		Cause:   cause,
	}
}

// ReasonOf extracts the failure reason from an error chain. Errors that are
// not backend errors report as transport faults, since that is the only way
// an untyped error can escape an adapter.
func ReasonOf(err error) FailureReason {
	var be *BackendError
	if errors.As(err, &be) {
		return be.Reason
	}
	return ReasonTransport
}

// IsUnconfigured checks whether an error chain contains an unconfigured
// backend failure.
func IsUnconfigured(err error) bool {
	var be *BackendError
	return errors.As(err, &be) && be.Reason == ReasonUnconfigured
}

// ClassifyCallError maps an HTTP client error to timeout or transport,
// honouring context cancellation. Shared by the adapter implementations.
func ClassifyCallError(err error) FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	return ReasonTransport
}
