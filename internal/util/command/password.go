package command

import (
	"fmt"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// PasswordEnv names the variable read instead of prompting, for unattended runs
const PasswordEnv = "SIGNER_UNLOCK_PASSWORD"

const minPasswordLength = 8

var ErrPasswordMismatch = errors.New("passwords do not match")

// PromptPassword reads a password from the terminal without echoing it
func PromptPassword(prompt string) (string, error) {
	//nolint:forbidigo // Password input requires direct terminal I/O
	fmt.Fprint(os.Stderr, prompt)

	passwordBytes, err := term.ReadPassword(syscall.Stdin)
	if err != nil {
		return "", errors.Wrap(err, "failed to read password from terminal")
	}

	//nolint:forbidigo // Password input requires direct terminal I/O
	fmt.Fprintln(os.Stderr)

	return string(passwordBytes), nil
}

// ReadPassword returns the password from PasswordEnv, prompting when it is unset
func ReadPassword(prompt string) (string, error) {
	if password, ok := os.LookupEnv(PasswordEnv); ok {
		return password, nil
	}

	return PromptPassword(prompt)
}

// ReadNewPassword is ReadPassword for a new secret: a prompted password must
// be confirmed and both sources must meet the minimum length.
func ReadNewPassword(prompt string) (string, error) {
	password, ok := os.LookupEnv(PasswordEnv)
	if !ok {
		var err error
		password, err = PromptPassword(prompt)
		if err != nil {
			return "", err
		}

		confirm, err := PromptPassword("Confirm password: ")
		if err != nil {
			return "", errors.Wrap(err, "failed to read password confirmation")
		}

		if password != confirm {
			return "", ErrPasswordMismatch
		}
	}

	if len(password) < minPasswordLength {
		return "", errors.Errorf("password must be at least %d characters", minPasswordLength)
	}

	return password, nil
}
