package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrModuleNotFound  = errors.New("module not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidStep     = errors.New("invalid step")
	ErrStepMismatch    = errors.New("step mismatch")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidInput    = errors.New("invalid input")
)

// ProvisioningError reports a failed repository create or delete against the
// GitHub API during module bootstrap or session cleanup.
type ProvisioningError struct {
	Op  string // "create", "create from template", "delete"
	Err error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("provisioning: %s repository: %v", e.Op, e.Err)
}

func (e *ProvisioningError) Unwrap() error { return e.Err }

// UnrecoverableError is raised when a step's check reports a permanent
// system-side problem. The session cursor is left unchanged so an operator
// can intervene.
type UnrecoverableError struct {
	Message string
}

func (e *UnrecoverableError) Error() string {
	return "unrecoverable repository state: " + e.Message
}
