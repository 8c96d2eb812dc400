package ledger

import (
	"fmt"

	"github.com/pkg/errors"
)

const (
	StatusOK                  uint16 = 0x9000
	StatusUserRejected        uint16 = 0x6986
	StatusWrongLength         uint16 = 0x6700
	StatusInvalidData         uint16 = 0x6a80
	StatusInstructionNotFound uint16 = 0x6d00
	StatusClaNotSupported     uint16 = 0x6e00
	StatusAppNotOpen          uint16 = 0x6e01
	StatusLocked              uint16 = 0x5515
)

var statusText = map[uint16]string{
	StatusUserRejected:        "condition of use not satisfied (denied by the user?)",
	StatusWrongLength:         "wrong length",
	StatusInvalidData:         "invalid data received",
	StatusInstructionNotFound: "instruction not supported by the app",
	StatusClaNotSupported:     "class not supported, is the right app open?",
	StatusAppNotOpen:          "app does not seem to be open",
	StatusLocked:              "device is locked",
}

// StatusError is a non-success status word returned by the device
type StatusError struct {
	Code uint16
}

func (e *StatusError) Error() string {
	if text, ok := statusText[e.Code]; ok {
		return fmt.Sprintf("ledger: status 0x%04x: %s", e.Code, text)
	}

	return fmt.Sprintf("ledger: status 0x%04x", e.Code)
}

// UserRejected reports whether the user declined on the device
func (e *StatusError) UserRejected() bool {
	return e.Code == StatusUserRejected
}

// IsUserRejected reports whether err carries the user-rejected status word
func IsUserRejected(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.UserRejected()
}

// splitStatus separates the trailing status word from a reply
func splitStatus(reply []byte) ([]byte, error) {
	//nolint:mnd // status word is 2 bytes
	if len(reply) < 2 {
		return nil, errors.Errorf("ledger: reply too short: %d bytes", len(reply))
	}

	sw := uint16(reply[len(reply)-2])<<8 | uint16(reply[len(reply)-1])
	if sw != StatusOK {
		return nil, &StatusError{Code: sw}
	}

	return reply[:len(reply)-2], nil
}
