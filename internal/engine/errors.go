package engine

import (
	"errors"
	"fmt"
)

// ValidationError reports a configured reference that does not resolve on the
// remote service. Parameter names the offending key, Rule the failed check.
type ValidationError struct {
	Parameter string
	Rule      string
	Value     string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%q: %s", e.Parameter, e.Value, e.Rule)
}

// ParseError reports a remote payload that does not match the expected format
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("unexpected payload: missing %s", e.Field)
	}
	if e.Field == "" {
		return fmt.Sprintf("unexpected payload: %v", e.Err)
	}
	return fmt.Sprintf("unexpected payload at %s: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// BuildLaunchError reports that a build could not be launched for a subscription
type BuildLaunchError struct {
	Subscription int
	Err          error
}

func (e *BuildLaunchError) Error() string {
	return fmt.Sprintf("launching the job for the subscription %d failed", e.Subscription)
}

func (e *BuildLaunchError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err (or any error in its chain) is a ValidationError
func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsParseError reports whether err (or any error in its chain) is a ParseError
func IsParseError(err error) bool {
	var target *ParseError
	return errors.As(err, &target)
}

// IsBuildLaunchError reports whether err (or any error in its chain) is a BuildLaunchError
func IsBuildLaunchError(err error) bool {
	var target *BuildLaunchError
	return errors.As(err, &target)
}
