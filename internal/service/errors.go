package service

import (
	"errors"
	"fmt"

	"github.com/yowbhergie2/fleet-management-system-sub000/internal/model"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrConflict           = errors.New("version conflict")
	ErrAlreadyInUse       = errors.New("control number already in use")
	ErrInvalidFormat      = errors.New("invalid control number format")
	ErrInvalidAdjustment  = errors.New("adjustment would make balance negative")
	ErrTransientStore     = errors.New("transient store failure")
)

// ConflictError reports an optimistic-version mismatch. It carries the
// current state so the caller can reload without another read.
type ConflictError struct {
	CurrentStatus  string
	CurrentVersion int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict: document is at version %d, status %s", e.CurrentVersion, e.CurrentStatus)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// PreconditionError names the role/status guard that rejected an operation.
type PreconditionError struct {
	Operation        string
	Role             model.Role
	Status           string
	ExpectedRoles    []model.Role
	ExpectedStatuses []string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s not allowed: role %s on status %s, expected roles %v and statuses %v",
		e.Operation, e.Role, e.Status, e.ExpectedRoles, e.ExpectedStatuses)
}

func (e *PreconditionError) Unwrap() error { return ErrPreconditionFailed }
