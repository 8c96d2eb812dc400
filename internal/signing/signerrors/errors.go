package signerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a signing failure
type Kind string

const (
	KindLockedAccount       Kind = "locked_account"
	KindUnsupportedFeature  Kind = "unsupported_feature"
	KindDeviceCommunication Kind = "device_communication"
	KindAddressMismatch     Kind = "address_mismatch"
	KindUserRejected        Kind = "user_rejected"
	KindSerialization       Kind = "serialization"
	KindUnknown             Kind = "unknown"
)

// Message ids of the texts shown to the account owner, see internal/i18n
const (
	MessageUserRejected = "sign_request_user_rejected"
	MessageFailed       = "sign_request_failed"
)

// Error is the typed error every signer component returns
type Error struct {
	kind  Kind
	msg   string
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}

	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

// Kind returns the failure class
func (e *Error) Kind() Kind {
	return e.kind
}

// Message returns the error text without its cause
func (e *Error) Message() string {
	return e.msg
}

// Cause makes the error compatible with errors.Cause
func (e *Error) Cause() error {
	return e.cause
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether resubmitting the request can succeed.
// A locked account can be unlocked, a device can be reconnected.
func (e *Error) Retryable() bool {
	switch e.kind {
	case KindLockedAccount, KindDeviceCommunication:
		return true
	case KindUnsupportedFeature, KindAddressMismatch, KindUserRejected, KindSerialization, KindUnknown:
		return false
	default:
		return false
	}
}

func newError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{
		kind:  kind,
		msg:   fmt.Sprintf(format, args...),
		cause: cause,
	}
}

func NewLockedAccount(address string) error {
	return newError(KindLockedAccount, nil, "account %s is locked", address)
}

func NewUnsupportedFeature(format string, args ...interface{}) error {
	return newError(KindUnsupportedFeature, nil, format, args...)
}

func NewDeviceCommunication(cause error, format string, args ...interface{}) error {
	return newError(KindDeviceCommunication, cause, format, args...)
}

func NewAddressMismatch(expected string, actual string) error {
	return newError(KindAddressMismatch, nil, "signer %s does not match address %s", actual, expected)
}

func NewUserRejected(reason string) error {
	if reason == "" {
		reason = "request cancelled"
	}

	return newError(KindUserRejected, nil, "%s", reason)
}

func NewSerialization(cause error, format string, args ...interface{}) error {
	return newError(KindSerialization, cause, format, args...)
}

// KindOf returns the Kind of the first *Error in err's chain, KindUnknown otherwise
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}

	return KindUnknown
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Retryable reports whether err is a retryable signing failure
func Retryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable()
	}

	return false
}

// Reason returns the text that gets appended to a request's error list
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) && e.kind == KindUserRejected {
		return e.msg
	}

	return err.Error()
}

// UserMessageID maps err to the id of the message shown to the account owner
func UserMessageID(err error) string {
	if Is(err, KindUserRejected) {
		return MessageUserRejected
	}

	return MessageFailed
}
