package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"

	"go.vocdoni.io/dvote/log"
)

// Error is used by handler functions to wrap errors, assigning a unique error code
// and also specifying which HTTP Status should be used.
type Error struct {
	Err        error  // Original error
	Code       string // Error code, stable across releases
	HTTPstatus int    // HTTP status code to return
	LogLevel   string // Log level for this error (defaults to "debug")
	Data       any    // Optional details to include in the error response
}

// MarshalJSON returns a JSON containing Err.Error(), Code and Data. Field
// HTTPstatus is ignored.
//
// Example output: {"error":"missing cart items","code":"MISSING_ITEMS"}
func (e Error) MarshalJSON() ([]byte, error) {
	// json.Marshal doesn't call Err.Error(), so the message needs its own field.
	return json.Marshal(
		struct {
			Error   string `json:"error"`
			Code    string `json:"code,omitempty"`
			Details any    `json:"details,omitempty"`
		}{
			Error:   e.Error(),
			Code:    e.Code,
			Details: e.Data,
		})
}

// Error returns the Message contained inside the APIerror
func (e Error) Error() string {
	if e.Err == nil {
		return http.StatusText(e.HTTPstatus)
	}
	return e.Err.Error()
}

// Unwrap gives access to the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// Write serializes the error as JSON into w with the HTTP status of the
// error. It also logs the error with appropriate level.
func (e Error) Write(w http.ResponseWriter) {
	msg, err := json.Marshal(e)
	if err != nil {
		log.Warn(err)
		http.Error(w, "marshal failed", http.StatusInternalServerError)
		return
	}

	// Get caller information for better logging
	pc, file, line, _ := runtime.Caller(1)
	caller := runtime.FuncForPC(pc).Name()

	logLevel := e.LogLevel
	if logLevel == "" {
		if e.HTTPstatus >= 500 {
			logLevel = "error"
		} else {
			logLevel = "debug"
		}
	}

	if e.HTTPstatus >= 500 {
		log.Errorw(e.Err, fmt.Sprintf("API error response [%d]: %s (code: %s, caller: %s, file: %s:%d)",
			e.HTTPstatus, e.Error(), e.Code, caller, file, line))
	} else if log.Level() == log.LogLevelDebug || logLevel != "debug" {
		errMsg := fmt.Sprintf("API error response [%d]: %s (code: %s, caller: %s)",
			e.HTTPstatus, e.Error(), e.Code, caller)

		switch logLevel {
		case "info":
			log.Infow(errMsg)
		case "warn":
			log.Warnw(errMsg)
		default:
			log.Debugw(errMsg)
		}
	}

	// http.Error would reset the content type to text/plain
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(e.HTTPstatus)
	if _, err := w.Write(append(msg, '\n')); err != nil {
		log.Warnw("failed to write error response", "error", err)
	}
}

// Withf returns a copy of Error with the Sprintf formatted string appended at the end of e.Err
func (e Error) Withf(format string, args ...any) Error {
	return e.With(fmt.Sprintf(format, args...))
}

// With returns a copy of Error with the string appended at the end of e.Err
func (e Error) With(s string) Error {
	return Error{
		Err:        fmt.Errorf("%w: %v", e.Err, s),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
		LogLevel:   e.LogLevel,
		Data:       e.Data,
	}
}

// WithErr returns a copy of Error with err.Error() appended at the end of e.Err
func (e Error) WithErr(err error) Error {
	return Error{
		Err:        fmt.Errorf("%w: %w", e.Err, err),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
		LogLevel:   e.LogLevel,
		Data:       e.Data,
	}
}

// WithMessage returns a copy of Error whose message is replaced by msg. It
// is used to pass upstream messages through verbatim.
func (e Error) WithMessage(msg string) Error {
	return Error{
		Err:        fmt.Errorf("%s", msg),
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
		LogLevel:   e.LogLevel,
		Data:       e.Data,
	}
}

// WithLogLevel returns a copy of Error with the specified log level
func (e Error) WithLogLevel(level string) Error {
	return Error{
		Err:        e.Err,
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
		LogLevel:   level,
		Data:       e.Data,
	}
}

// WithData returns a copy of Error carrying data as the response details.
func (e Error) WithData(data any) Error {
	return Error{
		Err:        e.Err,
		Code:       e.Code,
		HTTPstatus: e.HTTPstatus,
		LogLevel:   e.LogLevel,
		Data:       data,
	}
}

// Is reports whether any error in err's tree matches target, so that callers
// importing this package do not need the standard errors package as well.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}
