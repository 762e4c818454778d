package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess = 0 // Exact solution found (or command succeeded)
	ExitInexact = 1 // Solve completed but only an approximation exists
	ExitError   = 2 // Configuration or runtime error
)

// InexactError indicates that the search ran successfully but no exact
// solution exists, and the caller asked for exactness.
type InexactError struct {
	Message string
}

func (e *InexactError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var inexactErr *InexactError
		if errors.As(err, &inexactErr) {
			os.Exit(ExitInexact)
		}

		os.Exit(ExitError)
	}
}
