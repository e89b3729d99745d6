package main

import (
	"context"
	"log/slog"
	"os"
	"recordscrape/cmd/recordscrape/commands"
	"recordscrape/lib/serviceutil"
	"recordscrape/lib/telemetry"
)

func main() {
	telemetry.InitSlog(telemetry.LogOptions{})

	ctx, cancel := serviceutil.SignalContext(context.Background())
	defer cancel()

	tel, err := telemetry.SetupFromEnv(ctx, "recordscrape")
	if err != nil {
		slog.Warn("failed to set up telemetry, continuing without it", "err", err)
	}

	err = commands.ExecuteContext(ctx)

	shutdownErr := tel.Shutdown(context.WithoutCancel(ctx))
	if shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}
	if err != nil {
		os.Exit(1)
	}
}
