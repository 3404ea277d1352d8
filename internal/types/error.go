package types

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	BadRequest           ErrorCode = "BAD_REQUEST"
	NotFound             ErrorCode = "NOT_FOUND"
	Forbidden            ErrorCode = "FORBIDDEN"

	InsufficientAllowance       ErrorCode = "INSUFFICIENT_ALLOWANCE"
	InsufficientBalance         ErrorCode = "INSUFFICIENT_BALANCE"
	InsufficientStakedBalance   ErrorCode = "INSUFFICIENT_STAKED_BALANCE"
	InsufficientContractBalance ErrorCode = "INSUFFICIENT_CONTRACT_BALANCE"
	InsufficientTimePassed      ErrorCode = "INSUFFICIENT_TIME_PASSED"
)

func (e ErrorCode) String() string {
	return string(e)
}

// Error is returned by the service layer. It carries the status the transport
// should answer with next to the underlying error.
type Error struct {
	StatusCode int
	ErrorCode  ErrorCode
	Err        error
}

func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	return &Error{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Err:        err,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, errors.New(msg))
}

func NewInternalServiceError(err error) *Error {
	return NewError(http.StatusInternalServerError, InternalServiceError, err)
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.ErrorCode, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var ledgerErrorCodes = []struct {
	err    error
	status int
	code   ErrorCode
}{
	{ErrInvalidAmount, http.StatusBadRequest, BadRequest},
	{ErrUnauthorized, http.StatusForbidden, Forbidden},
	{ErrPoolAccount, http.StatusBadRequest, BadRequest},
	{ErrInsufficientAllowance, http.StatusUnprocessableEntity, InsufficientAllowance},
	{ErrInsufficientBalance, http.StatusUnprocessableEntity, InsufficientBalance},
	{ErrInsufficientStakedBalance, http.StatusUnprocessableEntity, InsufficientStakedBalance},
	{ErrInsufficientContractBalance, http.StatusConflict, InsufficientContractBalance},
	{ErrInsufficientTimePassed, http.StatusConflict, InsufficientTimePassed},
}

// FromLedgerError maps an error returned by the ledger or the token gateway
// to an Error. Unknown errors become internal service errors.
func FromLedgerError(err error) *Error {
	if err == nil {
		return nil
	}

	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	for _, e := range ledgerErrorCodes {
		if errors.Is(err, e.err) {
			return NewError(e.status, e.code, err)
		}
	}

	return NewInternalServiceError(err)
}
