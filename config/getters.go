package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/timelyfdw/timelyfdw/physical"
)

var ErrNotFound = errors.New("field not found")

// OptionError describes a missing or malformed table option.
type OptionError struct {
	Option string
	Err    error
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("option %s: %s", e.Option, e.Err)
}

func (e *OptionError) Cause() error {
	return e.Err
}

func (e *OptionError) Unwrap() error {
	return e.Err
}

type Option func(options *options)

type options struct {
	withDefault  bool
	defaultValue interface{}
}

func getOptions(opts ...Option) *options {
	defaultOptions := &options{
		withDefault:  false,
		defaultValue: nil,
	}

	for _, opt := range opts {
		opt(defaultOptions)
	}

	return defaultOptions
}

func WithDefault(value interface{}) Option {
	return func(options *options) {
		options.withDefault = true
		options.defaultValue = value
	}
}

// GetString gets a string from the given field.
func GetString(config physical.Options, field string, opts ...Option) (string, error) {
	options := getOptions(opts...)
	out, ok := config[field]
	if !ok || out == "" {
		if options.withDefault {
			return options.defaultValue.(string), nil
		}
		return "", &OptionError{Option: field, Err: ErrNotFound}
	}

	return out, nil
}

// GetInt gets an int from the given field.
func GetInt(config physical.Options, field string, opts ...Option) (int, error) {
	options := getOptions(opts...)
	out, err := GetString(config, field)
	if err != nil {
		if options.withDefault {
			return options.defaultValue.(int), nil
		}
		return 0, err
	}

	outInt, err := strconv.Atoi(out)
	if err != nil {
		return 0, &OptionError{Option: field, Err: errors.Errorf("expected int, got '%s'", out)}
	}

	return outInt, nil
}

// GetBool gets a bool from the given field.
func GetBool(config physical.Options, field string, opts ...Option) (bool, error) {
	options := getOptions(opts...)
	out, err := GetString(config, field)
	if err != nil {
		if options.withDefault {
			return options.defaultValue.(bool), nil
		}
		return false, err
	}

	outBool, err := strconv.ParseBool(out)
	if err != nil {
		return false, &OptionError{Option: field, Err: errors.Errorf("expected bool, got '%s'", out)}
	}

	return outBool, nil
}

// GetRune gets a single character from the given field.
func GetRune(config physical.Options, field string, opts ...Option) (rune, error) {
	options := getOptions(opts...)
	out, err := GetString(config, field)
	if err != nil {
		if options.withDefault {
			return options.defaultValue.(rune), nil
		}
		return 0, err
	}

	runes := []rune(out)
	if len(runes) != 1 {
		return 0, &OptionError{Option: field, Err: errors.Errorf("expected a single character, got '%s'", out)}
	}

	return runes[0], nil
}

// GetIPAddress gets an address in host:port form from the given field.
func GetIPAddress(config physical.Options, field string, opts ...Option) (string, int, error) {
	options := getOptions(opts...)
	value, err := GetString(config, field)
	if err != nil {
		if options.withDefault {
			defaults := options.defaultValue.([]interface{})
			return defaults[0].(string), defaults[1].(int), nil
		}
		return "", 0, err
	}

	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return "", 0, &OptionError{Option: field, Err: errors.New("expected address to be in host:port form")}
	}

	port, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return "", 0, &OptionError{Option: field, Err: errors.Wrap(err, "couldn't parse port")}
	}

	return parts[0], int(port), nil
}
