package service

import (
	"errors"
	"fmt"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/model"
	"github.com/google/uuid"
)

// Domain error kinds. Match with errors.Is; inspect details with errors.As.
var (
	ErrNotFound         = errors.New("not found")
	ErrSessionFinalized = errors.New("session already finalized")
	ErrValidation       = errors.New("validation failed")
	// ErrConflict marks a lost race on a unique slot. It is resolved
	// internally and never returned from an exported operation.
	ErrConflict = errors.New("conflict")
	// ErrResultNotReady means the session exists but is still in progress.
	ErrResultNotReady = errors.New("result not ready")
	ErrStorage        = errors.New("storage failure")
)

// NotFoundError names the missing resource.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(resource string, id uuid.UUID) error {
	return &NotFoundError{Resource: resource, ID: id.String()}
}

// SessionFinalizedError is returned for any mutation of a terminal session.
type SessionFinalizedError struct {
	SessionID uuid.UUID
	Status    model.SessionStatus
}

func (e *SessionFinalizedError) Error() string {
	return fmt.Sprintf("session %s is already %s", e.SessionID, e.Status)
}

func (e *SessionFinalizedError) Is(target error) bool { return target == ErrSessionFinalized }

// ValidationError describes malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StorageError wraps an infrastructure failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
