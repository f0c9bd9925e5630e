package adapter

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw/physical"
)

// ConfigError is returned by Initialize when a required option is missing or invalid.
type ConfigError struct {
	Option string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("invalid configuration: %s", e.Err)
	}
	return fmt.Sprintf("invalid configuration option %s: %s", e.Option, e.Err)
}

func (e *ConfigError) Cause() error {
	return e.Err
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// SchemaError is returned by Produce when a requested column isn't declared.
type SchemaError struct {
	Column   string
	Declared []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("column %s is not declared, declared columns: %s", e.Column, strings.Join(e.Declared, ", "))
}

// UnsupportedOperatorError describes a qualifier the adapter doesn't honor.
// It never fails a Produce call, it's reported in the Result so the caller re-checks the qualifier.
type UnsupportedOperatorError struct {
	Qualifier physical.Qualifier
	Reason    string
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported qualifier %s: %s", e.Qualifier, e.Reason)
}

// SourceUnavailableError is returned when the underlying data set can't be reached or read.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %s", e.Source, e.Err)
}

func (e *SourceUnavailableError) Cause() error {
	return e.Err
}

func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

func IsSchemaError(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}

func IsSourceUnavailable(err error) bool {
	var target *SourceUnavailableError
	return errors.As(err, &target)
}

func errorKind(err error) string {
	switch {
	case IsConfigError(err):
		return "config"
	case IsSchemaError(err):
		return "schema"
	case IsSourceUnavailable(err):
		return "source_unavailable"
	default:
		return "other"
	}
}
