package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tartampluch/go-lifecal/internal/config"
)

// Error codes reported in JSON output.
const (
	ErrCodeGeneric     = "error"
	ErrCodeUsage       = "usage"
	ErrCodeUnparseable = "unparseable_date"
	ErrCodeSync        = "sync_failed"
	ErrCodeSettings    = "settings"
)

// ExitError carries the process exit code and the JSON error code of a failed command.
type ExitError struct {
	Code    int    // Process exit code
	Kind    string // ErrCode* value
	Message string
	Err     error // Underlying error (optional)
	Details any   // Extra JSON payload (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError without an underlying cause.
func NewExitError(code int, kind, message string) *ExitError {
	return &ExitError{Code: code, Kind: kind, Message: message}
}

// WrapExitError wraps err with an exit code.
func WrapExitError(code int, kind, message string, err error) *ExitError {
	return &ExitError{Code: code, Kind: kind, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err. Plain errors map to ExitCodeError.
func GetExitCode(err error) int {
	if err == nil {
		return config.ExitCodeSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return config.ExitCodeError
}

// OutputFormatter writes command results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// Response is the JSON envelope of every command.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error part of Response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success outputs data. Text output relies on data's String method.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == config.FormatJSON {
		return json.NewEncoder(f.Writer).Encode(Response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs a failure. details is only rendered in JSON.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == config.FormatJSON {
		return json.NewEncoder(f.Writer).Encode(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: message, Details: details},
		})
	}
	_, err := fmt.Fprintln(f.Writer, message)
	return err
}

// Report prints err through the formatter and returns the exit code.
func (f *OutputFormatter) Report(err error) int {
	code, kind, msg := GetExitCode(err), ErrCodeGeneric, err.Error()

	var details any
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		kind, details = exitErr.Kind, exitErr.Details
	}
	_ = f.Error(kind, msg, details)
	return code
}
