// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juristack/juristack/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"case not found", errors.ErrCodeCaseNotFound, "case CRL-1234/2019 not found"},
		{"invalid param", errors.CodeInvalidParam, "case number must not be empty"},
		{"duplicate case", errors.ErrCodeDuplicateCase, "case already enqueued"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail, "Detail should be empty for bare New()")
			assert.Nil(t, ae.Cause, "Cause should be nil for bare New()")
		})
	}
}

func TestNew_StackIsPopulated(t *testing.T) {
	t.Parallel()

	ae := errors.New(errors.CodeInternal, "test")
	require.NotNil(t, ae)
	assert.Contains(t, ae.Stack, "errors_test")
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	result := errors.Wrap(nil, errors.CodeInternal, "should not matter")
	assert.Nil(t, result)
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("root DB error")
	wrapped := errors.Wrap(root, errors.CodeDBConnectionError, "connection failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.CodeDBConnectionError, wrapped.Code)
	assert.Equal(t, "connection failed", wrapped.Message)
	assert.Equal(t, root, wrapped.Cause)

	unwrapped := stderrors.Unwrap(wrapped)
	assert.Equal(t, root, unwrapped)
}

func TestWrap_UnknownCodePreservesOriginalClassification(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeDuplicateCase, "case already enqueued")
	outer := errors.Wrap(inner, errors.CodeUnknown, "enqueue rejected")

	require.NotNil(t, outer)
	assert.Equal(t, errors.ErrCodeDuplicateCase, outer.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Error formatting
// ─────────────────────────────────────────────────────────────────────────────

func TestError_FormatWithAndWithoutDetail(t *testing.T) {
	t.Parallel()

	bare := errors.New(errors.ErrCodeCaseNotFound, "case not found")
	assert.Equal(t, "[CASE_001] case not found", bare.Error())

	detailed := bare.WithDetail("case_number=CRL-1234/2019")
	assert.Equal(t, "[CASE_001] case not found: case_number=CRL-1234/2019", detailed.Error())
	assert.Empty(t, bare.Detail, "WithDetail must not mutate the receiver")
}

func TestWithCause_ReturnsCloneWithCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("pool exhausted")
	ae := errors.Internal("queue claim failed").WithCause(cause)

	require.NotNil(t, ae)
	assert.Equal(t, cause, ae.Cause)
	assert.True(t, stderrors.Is(ae, cause))
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("ignored"))
	assert.Nil(t, ae.WithCause(stderrors.New("ignored")))
}

// ─────────────────────────────────────────────────────────────────────────────
// Chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_TraversesChain(t *testing.T) {
	t.Parallel()

	inner := errors.New(errors.ErrCodeExtractionFailed, "corrupt PDF")
	middle := fmt.Errorf("stage run: %w", inner)
	outer := errors.Wrap(middle, errors.ErrCodeStageFailed, "extraction stage failed")

	assert.True(t, errors.IsCode(outer, errors.ErrCodeExtractionFailed))
	assert.True(t, errors.IsCode(outer, errors.ErrCodeStageFailed))
	assert.False(t, errors.IsCode(outer, errors.ErrCodeDuplicateCase))
	assert.False(t, errors.IsCode(nil, errors.ErrCodeStageFailed))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		err      error
		expected bool
	}{
		{"generic NotFound", errors.NotFound("not found"), true},
		{"case NotFound", errors.New(errors.ErrCodeCaseNotFound, "case not found"), true},
		{"queue entry NotFound", errors.New(errors.ErrCodeQueueEntryNotFound, "no entry"), true},
		{"internal error", errors.Internal("boom"), false},
		{"plain error", stderrors.New("boom"), false},
		{"nil", nil, false},
		{"wrapped NotFound", fmt.Errorf("ctx: %w", errors.NotFound("gone")), true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, errors.IsNotFound(tc.err))
		})
	}
}

func TestIsRetryable_ClassifiesFailureModes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"extraction failure is terminal", errors.ExtractionFailure("corrupt file"), false},
		{"unsupported document is terminal", errors.New(errors.ErrCodeUnsupportedDocument, "image/bmp"), false},
		{"transient stage failure retries", errors.Transient("model timeout"), true},
		{"database error retries", errors.New(errors.CodeDBQueryError, "deadlock"), true},
		{"model unavailable retries", errors.New(errors.ErrCodeAIModelNotAvailable, "down"), true},
		{"unknown error defaults to retryable", stderrors.New("???"), true},
		{"wrapped terminal stays terminal", errors.Wrap(errors.ExtractionFailure("bad"), errors.ErrCodeStageFailed, "stage"), false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.retryable, errors.IsRetryable(tc.err))
		})
	}
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.ErrCodeInsufficientData, errors.GetCode(errors.InsufficientData("no history")))
	assert.Equal(t, errors.ErrCodeChatFailed,
		errors.GetCode(fmt.Errorf("outer: %w", errors.New(errors.ErrCodeChatFailed, "boom"))))
}

func TestFactories_AssignExpectedCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  *errors.AppError
		code errors.ErrorCode
	}{
		{"NotFound", errors.NotFound("x"), errors.CodeNotFound},
		{"InvalidParam", errors.InvalidParam("x"), errors.CodeInvalidParam},
		{"Duplicate", errors.Duplicate("x"), errors.ErrCodeDuplicateCase},
		{"InvalidState", errors.InvalidState("x"), errors.CodeConflict},
		{"Internal", errors.Internal("x"), errors.CodeInternal},
		{"Transient", errors.Transient("x"), errors.ErrCodeStageTransient},
		{"ExtractionFailure", errors.ExtractionFailure("x"), errors.ErrCodeExtractionFailed},
		{"InsufficientData", errors.InsufficientData("x"), errors.ErrCodeInsufficientData},
		{"Conflict", errors.Conflict("x"), errors.CodeConflict},
		{"RateLimit", errors.RateLimit("x"), errors.CodeRateLimit},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.NotNil(t, tc.err)
			assert.Equal(t, tc.code, tc.err.Code)
			assert.True(t, strings.HasPrefix(tc.err.Error(), "["+tc.code.String()+"]"))
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeRetriesExhausted, "stage %s failed after %d attempts", "SUMMARY", 3)
	assert.Equal(t, "stage SUMMARY failed after 3 attempts", ae.Message)
}
