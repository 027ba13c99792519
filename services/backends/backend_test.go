package backends

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/velox-ai/agents/models"
)

func TestBackendErrorMessage(t *testing.T) {
	err := NewBackendError("phi-3-mini", models.TierLight, ReasonUpstream, errors.New("status 500"))
	assert.Contains(t, err.Error(), "phi-3-mini")
	assert.Contains(t, err.Error(), "light")
	assert.Contains(t, err.Error(), "upstream_error")
	assert.Contains(t, err.Error(), "status 500")

	bare := NewBackendError("gemini-2.5-pro", models.TierPremium, ReasonUnconfigured, nil)
	assert.Contains(t, bare.Error(), "unconfigured")
}

func TestBackendErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewBackendError("phi-3-mini", models.TierLight, ReasonTransport, cause)
	assert.True(t, errors.Is(err, cause))
}

func TestReasonOf(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected FailureReason
	}{
		{
			name:     "direct backend error",
			err:      NewBackendError("m", models.TierLight, ReasonTimeout, nil),
			expected: ReasonTimeout,
		},
		{
			name:     "wrapped backend error",
			err:      fmt.Errorf("dispatch: %w", NewBackendError("m", models.TierStandard, ReasonUpstream, nil)),
			expected: ReasonUpstream,
		},
		{
			name:     "untyped error defaults to transport",
			err:      errors.New("something broke"),
			expected: ReasonTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReasonOf(tt.err))
		})
	}
}

func TestIsUnconfigured(t *testing.T) {
	assert.True(t, IsUnconfigured(NewBackendError("m", models.TierLight, ReasonUnconfigured, nil)))
	assert.False(t, IsUnconfigured(NewBackendError("m", models.TierLight, ReasonUpstream, nil)))
	assert.False(t, IsUnconfigured(errors.New("plain")))
}

func TestClassifyCallError(t *testing.T) {
	assert.Equal(t, ReasonTimeout, ClassifyCallError(context.DeadlineExceeded))
	assert.Equal(t, ReasonTimeout, ClassifyCallError(fmt.Errorf("do: %w", context.DeadlineExceeded)))
	assert.Equal(t, ReasonTransport, ClassifyCallError(errors.New("connection reset")))
}
