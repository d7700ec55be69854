package config

import (
	goerrors "errors"
	"fmt"

	"github.com/gruntwork-io/go-commons/errors"
)

// ConfigurationFault is a setting or input that prevents a run from starting.
type ConfigurationFault struct {
	Field  string
	Reason string
}

func (f ConfigurationFault) Error() string {
	return fmt.Sprintf("configuration fault in %s: %s", f.Field, f.Reason)
}

// Fault returns a ConfigurationFault carrying a stack trace.
func Fault(field, reason string) error {
	return errors.WithStackTrace(ConfigurationFault{Field: field, Reason: reason})
}

// IsFault reports whether err is, or wraps, a ConfigurationFault.
func IsFault(err error) bool {
	var fault ConfigurationFault
	return goerrors.As(errors.Unwrap(err), &fault)
}
