// Copyright 2017 NDP Systèmes. All Rights Reserved.
// See LICENSE file for full licensing details.

// Package exceptions provides error types used throughout the CRM
package exceptions

import (
	"fmt"

	"github.com/pkg/errors"
)

// UserError is an error that must rollback the current transaction and
// be displayed as a warning to the user.
type UserError struct {
	Message string
	Debug   string
}

// Error method for the UserError type.
// Returns the message.
func (u UserError) Error() string {
	return u.Message
}

// NewUserError returns a UserError with the given formatted message
func NewUserError(format string, args ...interface{}) UserError {
	return UserError{Message: fmt.Sprintf(format, args...)}
}

// IsUserError returns true if err, or the cause of err, is a UserError
func IsUserError(err error) bool {
	_, ok := AsUserError(err)
	return ok
}

// AsUserError returns the UserError at the root of err, if any.
func AsUserError(err error) (UserError, bool) {
	switch e := errors.Cause(err).(type) {
	case UserError:
		return e, true
	case *UserError:
		return *e, true
	}
	return UserError{}, false
}
