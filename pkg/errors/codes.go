package errors

import "net/http"

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "COMMON_000"

	CodeInternal       ErrorCode = "COMMON_001"
	CodeInvalidParam   ErrorCode = "COMMON_002"
	CodeNotFound       ErrorCode = "COMMON_003"
	CodeValidation     ErrorCode = "COMMON_004"
	CodeSerialization  ErrorCode = "COMMON_005"
	CodeUnavailable    ErrorCode = "COMMON_006"
	CodeCacheError     ErrorCode = "COMMON_007"
	CodeDataSource     ErrorCode = "COMMON_008"
)

// Pricing module error codes.  Configuration errors indicate a data or
// wiring defect (unknown family key, missing device entry) and are fatal
// for the request; they are never retried.
const (
	CodeModelNotFound  ErrorCode = "PRC_001"
	CodeDeviceNotFound ErrorCode = "PRC_002"
	CodeConfiguration  ErrorCode = "PRC_003"
)

// Catalog module error codes.
const (
	CodeCatalogLoadFailed ErrorCode = "CAT_001"
	CodeCatalogEmpty      ErrorCode = "CAT_002"
)

// Recommendation module error codes.
const (
	CodeSurveyInvalid ErrorCode = "REC_001"
)

// errorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var errorCodeHTTPStatus = map[ErrorCode]int{
	CodeInternal:      http.StatusInternalServerError,
	CodeInvalidParam:  http.StatusBadRequest,
	CodeNotFound:      http.StatusNotFound,
	CodeValidation:    http.StatusBadRequest,
	CodeSerialization: http.StatusInternalServerError,
	CodeUnavailable:   http.StatusServiceUnavailable,
	CodeCacheError:    http.StatusInternalServerError,
	CodeDataSource:    http.StatusServiceUnavailable,

	CodeModelNotFound:  http.StatusNotFound,
	CodeDeviceNotFound: http.StatusNotFound,
	CodeConfiguration:  http.StatusInternalServerError,

	CodeCatalogLoadFailed: http.StatusServiceUnavailable,
	CodeCatalogEmpty:      http.StatusServiceUnavailable,

	CodeSurveyInvalid: http.StatusBadRequest,
}

// HTTPStatus returns the HTTP status code associated with the given error.
// Errors without an AppError in their chain map to 500.
func HTTPStatus(err error) int {
	code := GetCode(err)
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
