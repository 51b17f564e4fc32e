package reporting

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

func Init(version string) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              "https://8f4c2d9ab6e14f02a3db5c71e9d40c88@o528194.ingest.us.sentry.io/4507113229336576",
		AttachStacktrace: true,
		Release:          version,
	})
	if err != nil {
		slog.Error("sentry.Init:", "error", err)
	}
}

func PanicListener(msg string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelFatal)
	})

	sentry.CaptureMessage(msg)
	if result := sentry.Flush(6 * time.Second); !result {
		slog.Error("sentry.Flush: timeout")
	}
}
