package common

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCollector accumulates non-fatal errors of a collection pass.
type ErrorCollector struct {
	errs []error
}

// New records err; nil errors are ignored.
func (c *ErrorCollector) New(err error) {
	if err == nil {
		return
	}
	c.errs = append(c.errs, err)
}

func (c *ErrorCollector) Add(text string) {
	c.New(errors.New(text))
}

func (c *ErrorCollector) Addf(format string, args ...interface{}) {
	c.New(fmt.Errorf(format, args...))
}

func (c *ErrorCollector) HasErrors() bool {
	return len(c.errs) > 0
}

// Combine joins all collected errors into one, or returns nil.
func (c *ErrorCollector) Combine() error {
	if c.HasErrors() {
		return errors.New(c.String())
	}
	return nil
}

func (c *ErrorCollector) String() string {
	parts := make([]string, 0, len(c.errs))
	for _, err := range c.errs {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, "; ")
}
