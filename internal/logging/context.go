package logging

import "context"

type contextKey struct{}

var logDataKey = contextKey{}

// WithLogData returns a context carrying the given LogData.
func WithLogData(ctx context.Context, logData *LogData) context.Context {
	return context.WithValue(ctx, logDataKey, logData)
}

// GetLogData returns the LogData from the context, or nil when the
// request did not pass through the logging middleware.
func GetLogData(ctx context.Context) *LogData {
	logData, _ := ctx.Value(logDataKey).(*LogData)
	return logData
}
