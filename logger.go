package di

import (
	"go.uber.org/zap"
)

// The container logs with zap.
// Errors that occur while an object is closed can not always be returned
// (a close panic, an object built after disposal), so they are logged.
// Use WithLogger to plug the application logger, the default one discards everything.

func defaultLogger() *zap.Logger {
	return zap.NewNop()
}

func serviceField(id Key) zap.Field {
	return zap.Stringer("service", id)
}
