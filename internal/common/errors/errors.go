// Package errors provides standardized error handling for the tender services.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeTenderNotFound        ErrorCode = "TENDER_NOT_FOUND"
	ErrCodeProfileNotFound       ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeReadinessNotFound     ErrorCode = "READINESS_NOT_FOUND"
	ErrCodeWorkspaceItemNotFound ErrorCode = "WORKSPACE_ITEM_NOT_FOUND"

	ErrCodeProfileExists           ErrorCode = "PROFILE_EXISTS"
	ErrCodeWorkspaceItemExists     ErrorCode = "WORKSPACE_ITEM_EXISTS"
	ErrCodeProfileValidationFailed ErrorCode = "PROFILE_VALIDATION_FAILED"
	ErrCodeInvalidFilterFormat     ErrorCode = "INVALID_FILTER_FORMAT"
	ErrCodeInvalidWorkspaceStatus  ErrorCode = "INVALID_WORKSPACE_STATUS"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeMetadataWriteConflict    ErrorCode = "METADATA_WRITE_CONFLICT"

	ErrCodeDocumentStoreFailed ErrorCode = "DOCUMENT_STORE_FAILED"
	ErrCodeSearchQueryFailed   ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeFeedFetchFailed ErrorCode = "FEED_FETCH_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// IsNotFound reports whether the error carries one of the not-found codes.
func IsNotFound(err error) bool {
	se, ok := err.(*StandardError)
	if !ok {
		return false
	}
	switch se.Code {
	case ErrCodeTenderNotFound, ErrCodeProfileNotFound, ErrCodeReadinessNotFound, ErrCodeWorkspaceItemNotFound:
		return true
	}
	return false
}

// NewTenderNotFoundError creates a non-retryable not-found error.
func NewTenderNotFoundError(tenderID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTenderNotFound,
		Message:   "Tender not found",
		Details:   fmt.Sprintf("tenderId: %s", tenderID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileNotFoundError creates a non-retryable not-found error.
func NewProfileNotFoundError(teamID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileNotFound,
		Message:   "Company profile not found",
		Details:   fmt.Sprintf("teamId: %s", teamID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewReadinessNotFoundError creates a non-retryable not-found error.
func NewReadinessNotFoundError(tenderID, teamID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeReadinessNotFound,
		Message:   "Readiness score not found",
		Details:   fmt.Sprintf("tenderId: %s, teamId: %s", tenderID, teamID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkspaceItemNotFoundError creates a non-retryable not-found error.
func NewWorkspaceItemNotFoundError(tenderID, teamID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkspaceItemNotFound,
		Message:   "Workspace item not found",
		Details:   fmt.Sprintf("tenderId: %s, teamId: %s", tenderID, teamID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWorkspaceItemExistsError creates a non-retryable uniqueness conflict error.
func NewWorkspaceItemExistsError(tenderID, teamID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWorkspaceItemExists,
		Message:   "Tender is already tracked in this team's workspace",
		Details:   fmt.Sprintf("tenderId: %s, teamId: %s", tenderID, teamID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidWorkspaceStatusError creates a non-retryable validation error.
func NewInvalidWorkspaceStatusError(status string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidWorkspaceStatus,
		Message:   "Invalid workspace status",
		Details:   fmt.Sprintf("status: %s", status),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileExistsError creates a non-retryable uniqueness conflict error.
func NewProfileExistsError(teamID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileExists,
		Message:   "Profile already exists for this team",
		Details:   fmt.Sprintf("teamId: %s", teamID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProfileValidationFailedError creates a non-retryable validation error.
func NewProfileValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProfileValidationFailed,
		Message:   "Company profile validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidFilterFormatError creates a non-retryable filter format error.
func NewInvalidFilterFormatError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidFilterFormat,
		Message:   "Invalid filter format",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMetadataWriteConflictError creates a non-retryable write conflict error.
// The conflict is recovered locally by the sync engine; the document store
// record remains authoritative.
func NewMetadataWriteConflictError(tenderID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMetadataWriteConflict,
		Message:   "Metadata store write conflict",
		Details:   fmt.Sprintf("tenderId: %s, error: %s", tenderID, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDocumentStoreFailedError creates a retryable document store error.
func NewDocumentStoreFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDocumentStoreFailed,
		Message:   "Document store operation failed",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search query failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFeedFetchFailedError creates a retryable feed error.
func NewFeedFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeedFetchFailed,
		Message:   "Feed fetch failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "NOT_FOUND"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "METADATA"):
		return "DATABASE"
	case strings.Contains(codeStr, "DOCUMENT") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "FEED"):
		return "FEED"
	default:
		return "OTHER"
	}
}
