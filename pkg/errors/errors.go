package errors

import (
	"fmt"
	"net/http"

	"github.com/golang/glog"
)

const (
	ERROR_CODE_PREFIX = "OCM-LBL-RECONCILER"

	// Forbidden occurs when the OCM account is not allowed to perform an action
	ErrorForbidden       ServiceErrorCode = 4
	ErrorForbiddenReason string           = "Forbidden to perform this action"

	// Conflict occurs when a label write collides with a concurrent remote change
	ErrorConflict       ServiceErrorCode = 6
	ErrorConflictReason string           = "An entity with the specified unique values already exists"

	// NotFound occurs when a requested entity does not exist in OCM
	ErrorNotFound       ServiceErrorCode = 7
	ErrorNotFoundReason string           = "Resource not found"

	// Validation occurs when an object or argument fails validation
	ErrorValidation       ServiceErrorCode = 8
	ErrorValidationReason string           = "General validation failure"

	// General occurs when an error fails to match any other error code
	ErrorGeneral       ServiceErrorCode = 9
	ErrorGeneralReason string           = "Unspecified error"

	// Unauthorized occurs when the requester is not authorized to perform the specified action
	ErrorUnauthorized       ServiceErrorCode = 11
	ErrorUnauthorizedReason string           = "Account is unauthorized to perform this action"

	// Unauthenticated occurs when the provided credentials cannot be validated
	ErrorUnauthenticated       ServiceErrorCode = 15
	ErrorUnauthenticatedReason string           = "Account authentication could not be verified"

	// Bad Request
	ErrorBadRequest       ServiceErrorCode = 21
	ErrorBadRequestReason string           = "Bad request"

	// Invalid search filter construction or rendering
	ErrorInvalidFilter       ServiceErrorCode = 23
	ErrorInvalidFilterReason string           = "Invalid search filter"

	// An OCM label object carried a type the reconciler does not know about
	ErrorUnknownLabelType       ServiceErrorCode = 24
	ErrorUnknownLabelTypeReason string           = "Unknown label type"

	// A label operation was attempted on an owner whose label container href
	// was never resolved against OCM
	ErrorMissingLabelContainerHref       ServiceErrorCode = 25
	ErrorMissingLabelContainerHrefReason string           = "Label container href missing"

	// A paginated OCM collection kept returning full pages past the safety cap
	ErrorPaginationOverflow       ServiceErrorCode = 26
	ErrorPaginationOverflowReason string           = "Paginated collection exceeded the maximum page count"
)

type ServiceErrorCode int

type ServiceErrors []ServiceError

func Find(code ServiceErrorCode) (bool, *ServiceError) {
	for _, err := range Errors() {
		if err.Code == code {
			return true, &err
		}
	}
	return false, nil
}

func Errors() ServiceErrors {
	return ServiceErrors{
		ServiceError{ErrorForbidden, ErrorForbiddenReason, http.StatusForbidden},
		ServiceError{ErrorConflict, ErrorConflictReason, http.StatusConflict},
		ServiceError{ErrorNotFound, ErrorNotFoundReason, http.StatusNotFound},
		ServiceError{ErrorValidation, ErrorValidationReason, http.StatusBadRequest},
		ServiceError{ErrorGeneral, ErrorGeneralReason, http.StatusInternalServerError},
		ServiceError{ErrorUnauthorized, ErrorUnauthorizedReason, http.StatusForbidden},
		ServiceError{ErrorUnauthenticated, ErrorUnauthenticatedReason, http.StatusUnauthorized},
		ServiceError{ErrorBadRequest, ErrorBadRequestReason, http.StatusBadRequest},
		ServiceError{ErrorInvalidFilter, ErrorInvalidFilterReason, http.StatusBadRequest},
		ServiceError{ErrorUnknownLabelType, ErrorUnknownLabelTypeReason, http.StatusBadRequest},
		ServiceError{ErrorMissingLabelContainerHref, ErrorMissingLabelContainerHrefReason, http.StatusInternalServerError},
		ServiceError{ErrorPaginationOverflow, ErrorPaginationOverflowReason, http.StatusInternalServerError},
	}
}

type ServiceError struct {
	// Code is the numeric and distinct ID for the error
	Code ServiceErrorCode
	// Reason is the context-specific reason the error was generated
	Reason string
	// HttpCode is the HTTP status code associated with the error when the
	// error originated from an OCM API response
	HttpCode int
}

// Reason can be a string with format verbs, which will be replaced by the specified values
func New(code ServiceErrorCode, reason string, values ...interface{}) *ServiceError {
	// If the code isn't defined, use the general error code
	var err *ServiceError
	exists, err := Find(code)
	if !exists {
		glog.Errorf("Undefined error code used: %d", code)
		err = &ServiceError{ErrorGeneral, ErrorGeneralReason, http.StatusInternalServerError}
	}

	// If the reason is unspecified, use the default
	if reason != "" {
		err.Reason = fmt.Sprintf(reason, values...)
	}

	return err
}

func NewErrorFromHTTPStatusCode(httpCode int, reason string, values ...interface{}) *ServiceError {
	if httpCode >= http.StatusBadRequest && httpCode < http.StatusInternalServerError {
		switch httpCode {
		case http.StatusBadRequest:
			return BadRequest(reason, values...)
		case http.StatusUnauthorized:
			return Unauthenticated(reason, values...)
		case http.StatusForbidden:
			return Forbidden(reason, values...)
		case http.StatusNotFound:
			return NotFound(reason, values...)
		case http.StatusConflict:
			return Conflict(reason, values...)
		default:
			return BadRequest(reason, values...)
		}
	}
	return GeneralError(reason, values...)
}

func ToServiceError(err error) *ServiceError {
	switch convertedErr := err.(type) {
	case *ServiceError:
		return convertedErr
	default:
		return GeneralError(convertedErr.Error())
	}
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s-%d: %s", ERROR_CODE_PREFIX, e.Code, e.Reason)
}

func (e *ServiceError) Is404() bool {
	return e.Code == ErrorNotFound
}

func (e *ServiceError) IsInvalidFilter() bool {
	return e.Code == ErrorInvalidFilter
}

func GeneralError(reason string, values ...interface{}) *ServiceError {
	return New(ErrorGeneral, reason, values...)
}

func NotFound(reason string, values ...interface{}) *ServiceError {
	return New(ErrorNotFound, reason, values...)
}

func Validation(reason string, values ...interface{}) *ServiceError {
	return New(ErrorValidation, reason, values...)
}

func Conflict(reason string, values ...interface{}) *ServiceError {
	return New(ErrorConflict, reason, values...)
}

func Forbidden(reason string, values ...interface{}) *ServiceError {
	return New(ErrorForbidden, reason, values...)
}

func Unauthenticated(reason string, values ...interface{}) *ServiceError {
	return New(ErrorUnauthenticated, reason, values...)
}

func BadRequest(reason string, values ...interface{}) *ServiceError {
	return New(ErrorBadRequest, reason, values...)
}

func InvalidFilter(reason string, values ...interface{}) *ServiceError {
	return New(ErrorInvalidFilter, reason, values...)
}

func UnknownLabelType(reason string, values ...interface{}) *ServiceError {
	return New(ErrorUnknownLabelType, reason, values...)
}

func MissingLabelContainerHref(reason string, values ...interface{}) *ServiceError {
	return New(ErrorMissingLabelContainerHref, reason, values...)
}

func PaginationOverflow(reason string, values ...interface{}) *ServiceError {
	return New(ErrorPaginationOverflow, reason, values...)
}
