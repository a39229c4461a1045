package cli

import (
	"errors"
	"fmt"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: ExitUsage, Err: fmt.Errorf(format, args...)}
}

func failure(message string, err error) error {
	if err == nil {
		err = errors.New(message)
	}

	return &ExitError{Code: ExitFailure, Err: &messageError{message: message, err: err}}
}

// messageError prints the user-facing message while keeping the classified
// cause reachable through errors.Is.
type messageError struct {
	message string
	err     error
}

func (e *messageError) Error() string {
	return e.message
}

func (e *messageError) Unwrap() error {
	return e.err
}

// ExitCode maps an error returned by the root command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}
