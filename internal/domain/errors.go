package domain

import (
	"errors"
	"net/http"
)

// HTTPError is an error that knows the status it should be answered with.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(status int, message string) *HTTPError {
	return &HTTPError{Status: status, Message: message}
}

func InvalidInput(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

// NotFound answers 400, not 404: clients of this API already depend on it.
func NotFound(message string) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message)
}

func Unauthorized(message string) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message)
}

func Forbidden(message string) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message)
}

// AsHTTPError unwraps err into an *HTTPError if it carries one.
func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}

// Messages shared between services, middleware and tests.
const (
	MsgInvalidInput       = "Invalid Input"
	MsgInvalidStatus      = "Invalid Input: Status must be one of To Do, In Progress, Done"
	MsgInvalidPriority    = "Invalid Input: Priority must be one of Low, Medium, High"
	MsgInvalidRole        = "Invalid Input: Role must be one of Team Member, Manager"
	MsgUserExists         = "User is already existed"
	MsgNoUser             = "No user found"
	MsgWrongPassword      = "Wrong Password"
	MsgCannotFindUser     = "Cannot find user"
	MsgCannotFindTask     = "Cannot find task"
	MsgNoCredential       = "No valid credential"
	MsgInvalidToken       = "Invalid jwt token"
	MsgTokenExpired       = "jwt expired"
	MsgUserNoLongerValid  = "The user is no longer valid in the database"
	MsgInvalidSession     = "Invalid session"
	MsgForbidden          = "Forbidden"
	MsgInternal           = "Internal Server Error"
	MsgLogoutSuccessfully = "Logout Successfully"
)
