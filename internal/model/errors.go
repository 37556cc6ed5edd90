package model

import "errors"

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")

	// ErrNotProcessOutput is returned when the value handed to the capture
	// subsystem has no process channels at all (stdout, stderr or exit status).
	ErrNotProcessOutput = errors.New("not the output of a spawned process")
	// ErrStreamRead is returned when the OS level read of a process channel faults.
	ErrStreamRead = errors.New("stream read failed")
	// ErrWorkerFailed is returned when the stderr draining worker terminates
	// abnormally instead of producing a value.
	ErrWorkerFailed = errors.New("stderr worker failed")
)
