// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_KeepsStandardErrorThroughWrapping(t *testing.T) {
	base := NewBuildRetriesExhaustedError(3, stderrors.New("locale failed"))
	wrapped := fmt.Errorf("build stage: %w", base)

	got := Normalize(wrapped)

	assert.Same(t, base, got)
	assert.Equal(t, "failed to build after 3 retries", got.Message)
}

func TestNormalize_WrapsPlainError(t *testing.T) {
	cause := stderrors.New("disk on fire")

	got := Normalize(cause)

	assert.Equal(t, ErrCodeInternal, got.Code)
	assert.Equal(t, "disk on fire", got.Details)
	assert.True(t, stderrors.Is(got, cause))
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewRepairBudgetExhaustedError("slot type Size", stderrors.New("validation failed")).
		WithMetadata("artifactId", "art-1")

	bpmn := ConvertToBPMNError(stdErr, "bot-build.create-slot-type")
	vars := bpmn.ToErrorVariables()

	assert.Equal(t, BPMNBotBuildFailed, bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
	assert.Equal(t, "bot-build.create-slot-type", vars["errorStep"])
	assert.Equal(t, "validation failed", vars["errorCause"])
	assert.Equal(t, "art-1", vars["artifactId"])
	assert.Equal(t, string(ErrCodeRepairBudgetExhausted), vars["originalErrorCode"])
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeStorageFailed, 3},
		{ErrCodeOracleFailed, 0},
		{ErrCodeRepairBudgetExhausted, 0},
		{ErrCodeBuildRetriesExhausted, 0},
		{ErrCodePlatformWaitTimeout, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
		})
	}
}

func TestConvertToBPMNError_NonRetryableZeroesRetries(t *testing.T) {
	stdErr := NewStorageFailedError("put", stderrors.New("denied"))
	stdErr.Retryable = false

	bpmn := ConvertToBPMNError(stdErr, "bot-build.build-bot")
	require.NotNil(t, bpmn)
	assert.Equal(t, 0, bpmn.Retries)
}

func TestConvertToBPMNError_OracleFailureIsFatal(t *testing.T) {
	stdErr := NewOracleFailedError("propose correction", stderrors.New("503"))

	assert.False(t, stdErr.Retryable)
	bpmn := ConvertToBPMNError(stdErr, "bot-build.create-intent")
	require.NotNil(t, bpmn)
	assert.Equal(t, BPMNBotBuildFailed, bpmn.Code)
	assert.Equal(t, 0, bpmn.Retries)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "REPAIR", GetErrorCategory(ErrCodeRepairBudgetExhausted))
	assert.Equal(t, "PLATFORM", GetErrorCategory(ErrCodePlatformWaitTimeout))
	assert.Equal(t, "STORAGE", GetErrorCategory(ErrCodeArtifactNotFound))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInputParsingFailed))
	assert.Equal(t, "WORKFLOW", GetErrorCategory(ErrCodeWorkflowEngineFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
