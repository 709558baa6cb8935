package geobounds

import (
	"fmt"
	"strings"
)

// Stage tells where bounding box resolution failed.
type Stage string

const (
	StageRequest  Stage = "request"
	StageParse    Stage = "parse"
	StageValidate Stage = "validate"
)

// Error is the single error kind returned by bounding box resolution.
// It is always fatal for the job.
type Error struct {
	Stage       Stage
	Description string // location description, when known
	Message     string
	Cause       error
}

func (e *Error) Error() string {
	parts := []string{"geo bounds " + string(e.Stage) + " failed"}
	if e.Description != "" {
		parts = append(parts, fmt.Sprintf("for %q", e.Description))
	}
	msg := strings.Join(parts, " ") + ": " + e.Message
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

func invalid(format string, args ...any) *Error {
	return &Error{Stage: StageValidate, Message: fmt.Sprintf(format, args...)}
}
