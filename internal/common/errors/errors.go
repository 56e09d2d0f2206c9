// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Repair loop
	ErrCodeRepairBudgetExhausted ErrorCode = "REPAIR_BUDGET_EXHAUSTED"
	ErrCodeBuildRetriesExhausted ErrorCode = "BUILD_RETRIES_EXHAUSTED"
	ErrCodeOracleFailed          ErrorCode = "ORACLE_FAILED"
	ErrCodeUnclassifiedFailure   ErrorCode = "UNCLASSIFIED_FAILURE"

	// Platform
	ErrCodePlatformRequestFailed ErrorCode = "PLATFORM_REQUEST_FAILED"
	ErrCodePlatformWaitTimeout   ErrorCode = "PLATFORM_WAIT_TIMEOUT"

	// Storage
	ErrCodeArtifactNotFound     ErrorCode = "ARTIFACT_NOT_FOUND"
	ErrCodeArtifactUpdateFailed ErrorCode = "ARTIFACT_UPDATE_FAILED"
	ErrCodeStorageFailed        ErrorCode = "STORAGE_FAILED"

	// Input
	ErrCodeInputParsingFailed ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeResourceNotFound   ErrorCode = "RESOURCE_NOT_FOUND"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeWorkflowEngineFailed   ErrorCode = "WORKFLOW_ENGINE_FAILED"
	ErrCodeInternal               ErrorCode = "INTERNAL_ERROR"
)

// BPMNBotBuildFailed is the single error code every bot-build stage throws.
// The process model routes it to the shared failure recorder.
const BPMNBotBuildFailed = "BOT_BUILD_FAILED"

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *StandardError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As.
func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata attaches a key/value that ends up in the BPMN error variables.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message string, cause error, retryable bool) *StandardError {
	details := ""
	if cause != nil {
		details = cause.Error()
	}
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewRepairBudgetExhaustedError is raised when the mutator spends every attempt.
func NewRepairBudgetExhaustedError(resource string, cause error) *StandardError {
	return newError(ErrCodeRepairBudgetExhausted, fmt.Sprintf("repair of %s retried too many times", resource), cause, false)
}

// NewBuildRetriesExhaustedError is raised when the outer build budget is spent.
func NewBuildRetriesExhaustedError(retries int, cause error) *StandardError {
	return newError(ErrCodeBuildRetriesExhausted, fmt.Sprintf("failed to build after %d retries", retries), cause, false)
}

// NewOracleFailedError wraps a failure of the repair assistant.
func NewOracleFailedError(operation string, cause error) *StandardError {
	return newError(ErrCodeOracleFailed, fmt.Sprintf("repair oracle %s failed", operation), cause, false)
}

// NewPlatformRequestFailedError wraps a non-repairable platform error.
func NewPlatformRequestFailedError(operation string, cause error) *StandardError {
	return newError(ErrCodePlatformRequestFailed, fmt.Sprintf("platform %s failed", operation), cause, false)
}

// NewPlatformWaitTimeoutError is raised when a bounded poll gives up.
func NewPlatformWaitTimeoutError(operation string, cause error) *StandardError {
	return newError(ErrCodePlatformWaitTimeout, fmt.Sprintf("timed out waiting for %s", operation), cause, false)
}

// NewArtifactNotFoundError is raised when the repository has no such artifact.
func NewArtifactNotFoundError(artifactID string) *StandardError {
	e := newError(ErrCodeArtifactNotFound, "artifact not found", nil, false)
	e.Details = fmt.Sprintf("artifactId: %s", artifactID)
	return e
}

// NewArtifactUpdateFailedError wraps a repository write failure.
func NewArtifactUpdateFailedError(cause error) *StandardError {
	return newError(ErrCodeArtifactUpdateFailed, "artifact update failed", cause, true)
}

// NewStorageFailedError wraps an object-store failure.
func NewStorageFailedError(operation string, cause error) *StandardError {
	return newError(ErrCodeStorageFailed, fmt.Sprintf("storage %s failed", operation), cause, true)
}

// NewInputParsingFailedError wraps a job-variable decode failure.
func NewInputParsingFailedError(cause error) *StandardError {
	return newError(ErrCodeInputParsingFailed, "failed to parse job variables", cause, false)
}

// NewResourceNotFoundError is raised when a named resource is absent from the bundle or platform.
func NewResourceNotFoundError(kind, name string) *StandardError {
	e := newError(ErrCodeResourceNotFound, fmt.Sprintf("%s not found", kind), nil, false)
	e.Details = fmt.Sprintf("name: %s", name)
	return e
}

// NewNotificationSendFailedError wraps an alert delivery failure.
func NewNotificationSendFailedError(channel string, cause error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, fmt.Sprintf("%s notification failed", channel), cause, true)
}

// NewWorkflowEngineError wraps a failed Zeebe gateway call.
func NewWorkflowEngineError(operation string, cause error) *StandardError {
	return newError(ErrCodeWorkflowEngineFailed, fmt.Sprintf("workflow engine %s failed", operation), cause, true)
}

// NewInternalError wraps anything without a more specific code.
func NewInternalError(cause error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", cause, false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns how many job retries a code is worth. Repair and
// budget errors never retry at the job level: the stage already retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeArtifactUpdateFailed,
		ErrCodeStorageFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeWorkflowEngineFailed:
		return 3

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError, step string) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		"errorStep":         step,
		"errorCause":        stdErr.Details,
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           BPMNBotBuildFailed,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// Normalize returns the StandardError inside err, or wraps err as internal.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "REPAIR") || strings.HasPrefix(codeStr, "BUILD") ||
		strings.HasPrefix(codeStr, "ORACLE") || strings.HasPrefix(codeStr, "UNCLASSIFIED"):
		return "REPAIR"
	case strings.HasPrefix(codeStr, "PLATFORM"):
		return "PLATFORM"
	case strings.HasPrefix(codeStr, "ARTIFACT") || strings.HasPrefix(codeStr, "STORAGE"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.HasPrefix(codeStr, "WORKFLOW"):
		return "WORKFLOW"
	case strings.HasPrefix(codeStr, "INPUT") || strings.Contains(codeStr, "NOT_FOUND"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
