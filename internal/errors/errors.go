package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types
var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrTargetNotResolved    = errors.New("target not resolved")
	ErrPlatformActionFailed = errors.New("platform action failed")
	ErrStorage              = errors.New("storage error")
	ErrNoPrivileges         = errors.New("not enough rights")
)

// PlatformActionError carries the platform's reason for rejecting an action.
type PlatformActionError struct {
	Action string
	Err    error
}

func (e *PlatformActionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *PlatformActionError) Unwrap() []error {
	errs := []error{ErrPlatformActionFailed, e.Err}
	if IsPrivilegeError(e.Err) {
		errs = append(errs, ErrNoPrivileges)
	}
	return errs
}

func PlatformAction(action string, err error) error {
	if err == nil {
		return nil
	}
	return &PlatformActionError{Action: action, Err: err}
}

type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsPrivilegeError reports whether the platform refused because the bot lacks admin rights.
func IsPrivilegeError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "not enough rights") || strings.Contains(msg, "CHAT_ADMIN_REQUIRED")
}

// Reason returns the innermost platform message suitable for showing to an admin.
func Reason(err error) string {
	var pe *PlatformActionError
	if errors.As(err, &pe) && pe.Err != nil {
		return pe.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
