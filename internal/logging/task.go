package logging

// TaskLogger prefixes every message with a task's display id so that the
// lines of concurrently running batches can be told apart.
type TaskLogger struct {
	prefix string
}

// ForTask returns a logger for the given task. The id is formatted once, at
// the level in effect when ForTask is called.
func ForTask(taskID string) TaskLogger {
	return TaskLogger{prefix: "Task " + FormatTaskID(taskID) + ": "}
}

func (l TaskLogger) args(v []any) []any {
	return append([]any{l.prefix}, v...)
}

func (l TaskLogger) Info(format string, v ...any) { Info("%s"+format, l.args(v)...) }
func (l TaskLogger) Warn(format string, v ...any) { Warn("%s"+format, l.args(v)...) }
func (l TaskLogger) Error(format string, v ...any) { Error("%s"+format, l.args(v)...) }
func (l TaskLogger) Debug(format string, v ...any) { Debug("%s"+format, l.args(v)...) }
func (l TaskLogger) Success(format string, v ...any) { Success("%s"+format, l.args(v)...) }
