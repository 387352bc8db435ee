package main

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures by the component that produced them
type ErrorKind string

const (
	ConfigurationError ErrorKind = "configuration"
	AuthError          ErrorKind = "auth"
	GenerationError    ErrorKind = "generation"
	PublishError       ErrorKind = "publish"
)

// RunError carries the error kind alongside the underlying cause
type RunError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *RunError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}

func newRunError(kind ErrorKind, op string, err error) *RunError {
	return &RunError{Kind: kind, Op: op, Err: err}
}

// IsKind reports whether err wraps a RunError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var runErr *RunError
	if errors.As(err, &runErr) {
		return runErr.Kind == kind
	}
	return false
}
