package dto

import (
	"net/http"
	"strings"
)

// Error codes raised by the HTTP layer itself. Domain errors keep the code
// their package declares (PROJECT_NOT_FOUND, TITLE_REQUIRED, ...).
const (
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeBadRequest        = "BAD_REQUEST"
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidID         = "INVALID_ID"
	ErrCodeInvalidVersion    = "INVALID_VERSION"
	ErrCodeRequestTooLarge   = "REQUEST_TOO_LARGE"
	ErrCodeRouteNotFound     = "ROUTE_NOT_FOUND"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeTokenExpired      = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid      = "TOKEN_INVALID"
	ErrCodeTokenRevoked      = "TOKEN_REVOKED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyExists     = "ALREADY_EXISTS"
	ErrCodeVersionConflict   = "VERSION_CONFLICT"
	ErrCodeDuplicateRequest  = "DUPLICATE_REQUEST"
	ErrCodeExportUnavailable = "EXPORT_UNAVAILABLE"
	ErrCodeNotReady          = "NOT_READY"
)

// InternalErrorMessage is the only text a 500 response carries
const InternalErrorMessage = "Internal server error"

// ErrorCodeHTTPStatus maps codes whose status does not follow from the
// naming rules in GetHTTPStatus
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:     http.StatusBadRequest,
	ErrCodeInvalidJSON:    http.StatusBadRequest,
	ErrCodeValidation:     http.StatusBadRequest,
	ErrCodeInvalidID:      http.StatusBadRequest,
	ErrCodeInvalidVersion: http.StatusBadRequest,
	"NO_CHANGES":          http.StatusBadRequest,
	"TITLE_TOO_LONG":      http.StatusBadRequest,
	"CROSS_PROJECT_LINK":  http.StatusBadRequest,
	"DUPLICATE_LINK":      http.StatusBadRequest,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeTokenRevoked: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeRouteNotFound:    http.StatusNotFound,
	ErrCodeMethodNotAllowed: http.StatusMethodNotAllowed,

	ErrCodeAlreadyExists:    http.StatusConflict,
	ErrCodeVersionConflict:  http.StatusConflict,
	ErrCodeDuplicateRequest: http.StatusConflict,

	ErrCodeExportUnavailable: http.StatusServiceUnavailable,
	ErrCodeNotReady:          http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the status for an error code. Codes missing from
// ErrorCodeHTTPStatus follow their name: NOT_FOUND and *_NOT_FOUND are 404,
// *_REQUIRED and INVALID_* are 400. Anything else is 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case code == ErrCodeNotFound || strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	case strings.HasSuffix(code, "_REQUIRED") || strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps generic codes to the wire code clients expect
var LegacyErrorCodeMapping = map[string]string{
	"CONCURRENCY_CONFLICT": ErrCodeVersionConflict,
	"INVALID_INPUT":        ErrCodeValidation,
}

// NormalizeErrorCode returns the wire code for code
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
