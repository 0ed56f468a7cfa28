package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "COMMON_001", ErrCodeInternal.String())
	assert.Equal(t, "PIPE_001", ErrCodeExtractionFailed.String())
}

func TestHTTPStatusForCode(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrCodeInternal, 500},
		{ErrCodeBadRequest, 400},
		{ErrCodeValidation, 400},
		{ErrCodeNotFound, 404},
		{ErrCodeDuplicateCase, 409},
		{ErrCodeExtractionFailed, 422},
		{ErrCodeUnsupportedDocument, 415},
		{ErrCodeAIModelNotAvailable, 503},
		{ErrorCode("UNKNOWN"), 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, HTTPStatusForCode(tt.code))
	}
}

func TestInsufficientDataIsNotAnHTTPError(t *testing.T) {
	// A sentinel result, not a failure: callers surface it inside a 200 body.
	assert.Equal(t, 200, HTTPStatusForCode(ErrCodeInsufficientData))
	assert.False(t, IsClientError(ErrCodeInsufficientData))
	assert.False(t, IsServerError(ErrCodeInsufficientData))
}

func TestDefaultMessageForCode(t *testing.T) {
	assert.Equal(t, "internal server error", DefaultMessageForCode(ErrCodeInternal))
	assert.Equal(t, "case already enqueued", DefaultMessageForCode(ErrCodeDuplicateCase))
	assert.Equal(t, "unknown error", DefaultMessageForCode(ErrorCode("UNKNOWN")))
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeBadRequest))
	assert.True(t, IsClientError(ErrCodeCaseNotFound))
	assert.False(t, IsClientError(ErrCodeInternal))
}

func TestModuleForCode(t *testing.T) {
	assert.Equal(t, "CASE", ModuleForCode(ErrCodeCaseNotFound))
	assert.Equal(t, "PIPE", ModuleForCode(ErrCodeStageTransient))
	assert.Equal(t, "PRED", ModuleForCode(ErrCodeInsufficientData))
	assert.Equal(t, "COMMON", ModuleForCode(ErrCodeInternal))
}
