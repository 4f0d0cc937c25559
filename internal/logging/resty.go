package logging

// RestyLogger implements resty.Logger and routes the HTTP client's internal
// messages through structured logging. Used by the store client and the CLI.
type RestyLogger struct {
	// Prefix identifies the client in log lines, e.g. "shopify".
	Prefix string
}

// Errorf routes error messages through structured logging.
func (l RestyLogger) Errorf(format string, v ...any) {
	Error(l.Prefix+": "+format, v...)
}

// Warnf routes warning messages through structured logging.
func (l RestyLogger) Warnf(format string, v ...any) {
	Warn(l.Prefix+": "+format, v...)
}

// Debugf routes debug messages through structured logging.
func (l RestyLogger) Debugf(format string, v ...any) {
	Debug(l.Prefix+": "+format, v...)
}
