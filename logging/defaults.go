package logging

import "github.com/go-kit/kit/log"

// DefaultLogger is handed out by GetLogger when a context carries no
// logger, and used by xhttp.RetryTransactor and xmetrics.Registry when no
// explicit go-kit Logger is configured.
func DefaultLogger() log.Logger {
	return log.NewNopLogger()
}

// MessageKey and ErrorKey are the structured-logging keys this module's
// go-kit call sites log their message and error values under.
func MessageKey() string { return "msg" }
func ErrorKey() string   { return "err" }
