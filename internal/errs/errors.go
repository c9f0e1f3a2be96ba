package errs

import (
	"errors"
	"fmt"
	"time"
)

// Sentinels shared across layers.
var (
	ErrRunActive       = errors.New("an analysis run is already active")
	ErrNothingToResume = errors.New("nothing to resume")
	ErrNoBackup        = errors.New("no backup registered for change id")
	ErrKeyNotFound     = errors.New("key not found")
	ErrUnavailable     = errors.New("analysis unavailable: API credential not configured")
)

var errorMissingParamFmt = "missing required param: %s"
var errorInvalidParamFmt = "invalid request params: %s %v"

func NewMissingParamError(name string) error {
	return fmt.Errorf(errorMissingParamFmt, name)
}

func NewInvalidParamErr(name string, value interface{}) error {
	return fmt.Errorf(errorInvalidParamFmt, name, value)
}

// ScanError reports a filesystem failure while selecting files for a module.
// The enclosing run records it and continues with the next module.
type ScanError struct {
	Module string
	Path   string
	Err    error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan failed for module %s at %s: %v", e.Module, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error { return e.Err }

func NewScanError(module, path string, err error) *ScanError {
	return &ScanError{Module: module, Path: path, Err: err}
}

// AnalysisError reports an irrecoverable AI call failure for a single file.
// It never aborts the enclosing batch.
type AnalysisError struct {
	FilePath   string
	StatusCode int
	Message    string
	Err        error
}

func (e *AnalysisError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("analysis failed for %s (status %d): %s", e.FilePath, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("analysis failed for %s: %s", e.FilePath, e.Message)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// RateLimitError is transient and retried inside the client. RetryAfter is
// the server-provided hint, zero when the server gave none.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %s", e.Message)
}

// ParseError reports a malformed AI response body. Callers degrade it to an
// empty result with a warning rather than failing the file.
type ParseError struct {
	FilePath string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse analysis response for %s: %v", e.FilePath, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PatchError reports a diff, apply or rollback failure. The target file is
// guaranteed restored from backup when Op is "apply".
type PatchError struct {
	ChangeID string
	Op       string // generate, check, apply, rollback
	Err      error
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("patch %s failed for change %s: %v", e.Op, e.ChangeID, e.Err)
}

func (e *PatchError) Unwrap() error { return e.Err }

func NewPatchError(changeID, op string, err error) *PatchError {
	return &PatchError{ChangeID: changeID, Op: op, Err: err}
}

// ConfigError reports a missing or malformed configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error on %s: %s", e.Field, e.Reason)
}
