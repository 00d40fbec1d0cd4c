package httpapi

import (
	"context"
	"net/http"
	"time"
)

// serverBaseCtx is a process-level context that can be canceled on shutdown.
// Defaults to Background if not set.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// scanTimeout bounds a single catalog scan; zero means no limit.
var scanTimeout time.Duration

// SetScanTimeout sets the per-request scan timeout (<= 0 disables).
func SetScanTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	scanTimeout = d
}

// scanContext returns a context canceled when the client goes away, the
// server shuts down, or the scan timeout expires. cancel must be called.
func scanContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(r.Context())
	stop := context.AfterFunc(serverBaseCtx, cancel)
	if scanTimeout > 0 {
		tctx, tcancel := context.WithTimeout(ctx, scanTimeout)
		return tctx, func() {
			tcancel()
			stop()
			cancel()
		}
	}
	return ctx, func() {
		stop()
		cancel()
	}
}
