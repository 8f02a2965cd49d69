// Package sigctx binds the process lifetime to termination signals.
package sigctx

import (
	"context"
	"os/signal"
	"syscall"
)

// NotifyContext returns a root context cancelled by SIGINT, SIGTERM or
// SIGQUIT. The returned stop function releases the signal handlers, so
// a second signal kills the process the default way.
func NotifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
}
