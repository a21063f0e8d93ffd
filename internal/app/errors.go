package app

import "errors"

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound          = errors.New("not found")
	ErrAmendmentDiverged = errors.New("time amendment did not settle")
	ErrInvalidRollback   = errors.New("invalid rollback mode")
	ErrParentCycle       = errors.New("parent cycle")
	ErrCascadeTooDeep    = errors.New("time cascade too deep")
)
