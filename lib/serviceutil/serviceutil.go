package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// SignalContext returns a context that is cancelled on the first Ctrl+C or
// SIGTERM. A second signal exits the process immediately.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			slog.Warn("received signal, finishing up (repeat to force quit)", "signal", sig.String())
			cancel()
		case <-ctx.Done():
			return
		}
		select {
		case <-sigs:
			os.Exit(130)
		case <-parent.Done():
		}
	}()

	return ctx, cancel
}
