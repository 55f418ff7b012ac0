package initializers

import (
	"time"

	"github.com/getsentry/sentry-go"
)

func InitSentry(dsn, env string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     serviceName,
	}); err != nil {
		return nil, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}
