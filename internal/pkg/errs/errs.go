package errs

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrValueIsRequired   = errors.New("value is required")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrObjectNotFound    = errors.New("object not found")
	ErrResourceGone      = errors.New("resource is gone")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrBadToken          = errors.New("bad idempotency token")
	ErrBlocked           = errors.New("source is blocked")
	ErrConflict          = errors.New("conflict")
	ErrRateLimited       = errors.New("rate limited")
)

func sanitize(v any) string {
	s := fmt.Sprintf("%v", v)
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %s)", msg, cause.Error())
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// ValueIsInvalidError reports a value that failed validation.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	return withCause(msg, e.Cause)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ObjectNotFoundError reports a lookup miss for an order, item or record.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s %s", ErrObjectNotFound, e.ParamName, sanitize(e.ID))
	}
	return withCause(fmt.Sprintf("%s: param is: %s, ID is: %s", ErrObjectNotFound, e.ParamName, sanitize(e.ID)), e.Cause)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ResourceGoneError reports that a table/counter/room or a menu item exists but is inactive.
type ResourceGoneError struct {
	Kind  string
	ID    any
	Cause error
}

func NewResourceGoneError(kind string, id any) *ResourceGoneError {
	return &ResourceGoneError{Kind: kind, ID: id}
}

func NewResourceGoneErrorWithCause(kind string, id any, cause error) *ResourceGoneError {
	return &ResourceGoneError{Kind: kind, ID: id, Cause: cause}
}

func (e *ResourceGoneError) Error() string {
	return withCause(fmt.Sprintf("%s: %s %s", ErrResourceGone, e.Kind, sanitize(e.ID)), e.Cause)
}

func (e *ResourceGoneError) Unwrap() error {
	return ErrResourceGone
}

// InvalidTransitionError reports a (from, to) pair that is absent from a transition table.
type InvalidTransitionError struct {
	Scope string
	From  string
	To    string
}

func NewInvalidTransitionError(scope, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{Scope: scope, From: from, To: to}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: %s %s -> %s", ErrInvalidTransition, e.Scope, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// BadTokenError reports a malformed idempotency token.
type BadTokenError struct {
	Reason string
}

func NewBadTokenError(reason string) *BadTokenError {
	return &BadTokenError{Reason: reason}
}

func (e *BadTokenError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBadToken, e.Reason)
}

func (e *BadTokenError) Unwrap() error {
	return ErrBadToken
}

// BlockedError reports a guest source that is cooling down after repeated rejections.
type BlockedError struct {
	Source     string
	RetryAfter time.Duration
}

func NewBlockedError(source string, retryAfter time.Duration) *BlockedError {
	return &BlockedError{Source: source, RetryAfter: retryAfter}
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("%s: %s (retry after %s)", ErrBlocked, sanitize(e.Source), e.RetryAfter)
}

func (e *BlockedError) Unwrap() error {
	return ErrBlocked
}

// ConflictError reports a lost race on an order row or an idempotency token.
type ConflictError struct {
	Subject string
	Cause   error
}

func NewConflictError(subject string) *ConflictError {
	return &ConflictError{Subject: subject}
}

func NewConflictErrorWithCause(subject string, cause error) *ConflictError {
	return &ConflictError{Subject: subject, Cause: cause}
}

func (e *ConflictError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrConflict, e.Subject), e.Cause)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// RateLimitedError reports a source that holds too many open streams.
type RateLimitedError struct {
	Source string
	Limit  int
}

func NewRateLimitedError(source string, limit int) *RateLimitedError {
	return &RateLimitedError{Source: source, Limit: limit}
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: %s already holds %d connections", ErrRateLimited, sanitize(e.Source), e.Limit)
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
