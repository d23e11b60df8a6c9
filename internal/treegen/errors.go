package treegen

import (
	"errors"
	"fmt"
)

const (
	errorTraversalFormat = "traversing %s: %v"
)

// ErrNotDirectory reports that the root path exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// TraversalError is returned when the root is unusable or a visited directory cannot be read.
type TraversalError struct {
	Path string
	Err  error
}

func (traversalError *TraversalError) Error() string {
	return fmt.Sprintf(errorTraversalFormat, traversalError.Path, traversalError.Err)
}

func (traversalError *TraversalError) Unwrap() error {
	return traversalError.Err
}

func newTraversalError(path string, cause error) *TraversalError {
	return &TraversalError{Path: path, Err: cause}
}
