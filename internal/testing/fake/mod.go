// Package fake provides fake implementations for interfaces commonly used in
// the repository.
//
// The implementations offer configuration to return errors when it is needed
// by the unit test, and it is also possible to record the calls of the
// functions of an object in some cases.
package fake

import (
	"golang.org/x/xerrors"
)

const errMsg = "fake error"

// Err returns the message formatted the way the fakes format their errors, so
// that a test can assert the full error string.
func Err(msg string) string {
	return msg + ": " + errMsg
}

// GetError returns the error of the fakes.
func GetError() error {
	return xerrors.New(errMsg)
}

// Call is a tool to keep track of a function calls.
type Call struct {
	calls [][]interface{}
}

// NewCall returns a new empty call monitor.
func NewCall() *Call {
	return &Call{}
}

// Get returns the nth call ith parameter.
func (c *Call) Get(n, i int) interface{} {
	if c == nil {
		return nil
	}

	return c.calls[n][i]
}

// Len returns the number of calls.
func (c *Call) Len() int {
	if c == nil {
		return 0
	}

	return len(c.calls)
}

// Add adds a call to the list.
func (c *Call) Add(args ...interface{}) {
	if c == nil {
		return
	}

	c.calls = append(c.calls, args)
}
