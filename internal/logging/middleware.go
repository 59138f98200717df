package logging

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/sirupsen/logrus"
)

// Middleware injects a fresh LogData into each request context and
// writes the completion entry once the handler chain finishes.
func Middleware(log *logrus.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		logData := NewLogData(log)
		logData.AddData("operation", ctx.Operation().OperationID)

		endTimer := logData.AddTiming("duration")
		next(huma.WithValue(ctx, logDataKey, logData))
		endTimer()

		logData.Log().WithField("status", ctx.Status()).Infof("Handler.%v.Complete", ctx.Operation().OperationID)
	}
}
