package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeUnauthorized       ErrorCode = "COMMON_003"
	ErrCodeForbidden          ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeConflict           ErrorCode = "COMMON_006"
	ErrCodeTooManyRequests    ErrorCode = "COMMON_007"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_008"
	ErrCodeTimeout            ErrorCode = "COMMON_009"
	ErrCodeValidation         ErrorCode = "COMMON_010"
	ErrCodeSerialization      ErrorCode = "COMMON_011"
	ErrCodeDatabaseError      ErrorCode = "COMMON_012"
	ErrCodeCacheError         ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeStorageError       ErrorCode = "COMMON_015"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_016"
	ErrCodeNotImplemented     ErrorCode = "COMMON_017"
)

// Aliases kept short for call sites that only care about the broad class.
const (
	CodeInternal     = ErrCodeInternal
	CodeInvalidParam = ErrCodeBadRequest
	CodeUnauthorized = ErrCodeUnauthorized
	CodeForbidden    = ErrCodeForbidden
	CodeNotFound     = ErrCodeNotFound
	CodeConflict     = ErrCodeConflict
	CodeRateLimit    = ErrCodeTooManyRequests
	CodeOK           = ErrorCode("OK")
	CodeUnknown      = ErrorCode("UNKNOWN")
)

// Case Module Error Codes
const (
	ErrCodeCaseNotFound      ErrorCode = "CASE_001"
	ErrCodeDuplicateCase     ErrorCode = "CASE_002"
	ErrCodeCaseNumberInvalid ErrorCode = "CASE_003"
	ErrCodeCaseNotProcessed  ErrorCode = "CASE_004"
)

// Pipeline Module Error Codes
const (
	ErrCodeExtractionFailed      ErrorCode = "PIPE_001"
	ErrCodeStageFailed           ErrorCode = "PIPE_002"
	ErrCodeStageTransient        ErrorCode = "PIPE_003"
	ErrCodeInvalidTransition     ErrorCode = "PIPE_004"
	ErrCodeQueueEntryNotFound    ErrorCode = "PIPE_005"
	ErrCodeRetriesExhausted      ErrorCode = "PIPE_006"
	ErrCodeStageHandlerMissing   ErrorCode = "PIPE_007"
	ErrCodeUnsupportedDocument   ErrorCode = "PIPE_008"
	ErrCodeEmptyDocument         ErrorCode = "PIPE_009"
	ErrCodeCaseAlreadyProcessing ErrorCode = "PIPE_010"
)

// Similarity Module Error Codes
const (
	ErrCodeSimilarityFailed      ErrorCode = "SIM_001"
	ErrCodeSimilarityNoArtifacts ErrorCode = "SIM_002"
	ErrCodeEmbeddingDimMismatch  ErrorCode = "SIM_003"
)

// Prediction Module Error Codes
const (
	ErrCodePredictionFailed       ErrorCode = "PRED_001"
	ErrCodePredictionInputInvalid ErrorCode = "PRED_002"
	ErrCodeInsufficientData       ErrorCode = "PRED_003"
)

// Chatbot Module Error Codes
const (
	ErrCodeChatFailed       ErrorCode = "CHAT_001"
	ErrCodeChatEmptyQuery   ErrorCode = "CHAT_002"
	ErrCodeChatCaseNotReady ErrorCode = "CHAT_003"
)

// AI / Model Error Codes
const (
	ErrCodeAIModelNotAvailable ErrorCode = "AI_001"
	ErrCodeAIInferenceFailed   ErrorCode = "AI_002"
	ErrCodeAIInputInvalid      ErrorCode = "AI_003"
	ErrCodeTranslationFailed   ErrorCode = "AI_004"
	ErrCodeSummaryFailed       ErrorCode = "AI_005"
)

// Infrastructure aliases for the generic codes used by repository layers.
const (
	CodeDBConnectionError = ErrCodeDatabaseError
	CodeDatabaseError     = ErrCodeDatabaseError
	CodeDBQueryError      = ErrCodeDatabaseError
	CodeCacheError        = ErrCodeCacheError
	CodeStorageError      = ErrCodeStorageError
	CodeMessageQueueError = ErrCodeMessageQueueError
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTooManyRequests:    http.StatusTooManyRequests,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,
	ErrCodeNotImplemented:     http.StatusNotImplemented,

	ErrCodeCaseNotFound:      http.StatusNotFound,
	ErrCodeDuplicateCase:     http.StatusConflict,
	ErrCodeCaseNumberInvalid: http.StatusBadRequest,
	ErrCodeCaseNotProcessed:  http.StatusConflict,

	ErrCodeExtractionFailed:      http.StatusUnprocessableEntity,
	ErrCodeStageFailed:           http.StatusInternalServerError,
	ErrCodeStageTransient:        http.StatusInternalServerError,
	ErrCodeInvalidTransition:     http.StatusConflict,
	ErrCodeQueueEntryNotFound:    http.StatusNotFound,
	ErrCodeRetriesExhausted:      http.StatusInternalServerError,
	ErrCodeStageHandlerMissing:   http.StatusInternalServerError,
	ErrCodeUnsupportedDocument:   http.StatusUnsupportedMediaType,
	ErrCodeEmptyDocument:         http.StatusUnprocessableEntity,
	ErrCodeCaseAlreadyProcessing: http.StatusConflict,

	ErrCodeSimilarityFailed:      http.StatusInternalServerError,
	ErrCodeSimilarityNoArtifacts: http.StatusConflict,
	ErrCodeEmbeddingDimMismatch:  http.StatusInternalServerError,

	ErrCodePredictionFailed:       http.StatusInternalServerError,
	ErrCodePredictionInputInvalid: http.StatusBadRequest,
	ErrCodeInsufficientData:       http.StatusOK,

	ErrCodeChatFailed:       http.StatusInternalServerError,
	ErrCodeChatEmptyQuery:   http.StatusBadRequest,
	ErrCodeChatCaseNotReady: http.StatusConflict,

	ErrCodeAIModelNotAvailable: http.StatusServiceUnavailable,
	ErrCodeAIInferenceFailed:   http.StatusInternalServerError,
	ErrCodeAIInputInvalid:      http.StatusBadRequest,
	ErrCodeTranslationFailed:   http.StatusInternalServerError,
	ErrCodeSummaryFailed:       http.StatusInternalServerError,
}

// ErrorCodeMessage maps ErrorCodes to default messages.
var ErrorCodeMessage = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeUnauthorized:       "unauthorized",
	ErrCodeForbidden:          "forbidden",
	ErrCodeNotFound:           "resource not found",
	ErrCodeConflict:           "resource conflict",
	ErrCodeTooManyRequests:    "too many requests",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeTimeout:            "request timeout",
	ErrCodeValidation:         "validation failed",
	ErrCodeSerialization:      "serialization failed",
	ErrCodeDatabaseError:      "database error",
	ErrCodeCacheError:         "cache error",
	ErrCodeExternalService:    "external service error",
	ErrCodeStorageError:       "object storage error",
	ErrCodeMessageQueueError:  "message queue error",
	ErrCodeNotImplemented:     "not implemented",

	ErrCodeCaseNotFound:      "case not found",
	ErrCodeDuplicateCase:     "case already enqueued",
	ErrCodeCaseNumberInvalid: "invalid case number",
	ErrCodeCaseNotProcessed:  "case processing not finished",

	ErrCodeExtractionFailed:      "text extraction failed",
	ErrCodeStageFailed:           "pipeline stage failed",
	ErrCodeStageTransient:        "transient pipeline stage failure",
	ErrCodeInvalidTransition:     "invalid pipeline stage transition",
	ErrCodeQueueEntryNotFound:    "queue entry not found",
	ErrCodeRetriesExhausted:      "stage retry limit exhausted",
	ErrCodeStageHandlerMissing:   "no handler registered for stage",
	ErrCodeUnsupportedDocument:   "unsupported document format",
	ErrCodeEmptyDocument:         "document contains no extractable text",
	ErrCodeCaseAlreadyProcessing: "case already being processed",

	ErrCodeSimilarityFailed:      "similarity computation failed",
	ErrCodeSimilarityNoArtifacts: "case has no chunks or keywords",
	ErrCodeEmbeddingDimMismatch:  "embedding dimension mismatch",

	ErrCodePredictionFailed:       "outcome prediction failed",
	ErrCodePredictionInputInvalid: "invalid prediction features",
	ErrCodeInsufficientData:       "insufficient historical data",

	ErrCodeChatFailed:       "chat query failed",
	ErrCodeChatEmptyQuery:   "empty chat query",
	ErrCodeChatCaseNotReady: "case not ready for chat",

	ErrCodeAIModelNotAvailable: "AI model not available",
	ErrCodeAIInferenceFailed:   "AI inference failed",
	ErrCodeAIInputInvalid:      "invalid input for AI model",
	ErrCodeTranslationFailed:   "translation failed",
	ErrCodeSummaryFailed:       "summary generation failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := ErrorCodeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError returns true if the ErrorCode corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the ErrorCode corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
