package cli

import (
	stderrors "errors"
	"fmt"
)

// Process exit codes
const (
	ExitOK         = 0
	ExitItemFailed = 1
	ExitFatal      = 2
)

// ExitError carries the exit code of a finished command. The error itself
// has already been reported when Reported is true.
type ExitError struct {
	Code     int
	Err      error
	Reported bool
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error returned by the root command to a process exit
// code. Errors that are not ExitErrors (flag parsing, unknown commands) are
// usage errors and count as fatal.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFatal
}

// IsReported reports whether err was already rendered for the user
func IsReported(err error) bool {
	var exitErr *ExitError
	return stderrors.As(err, &exitErr) && exitErr.Reported
}
