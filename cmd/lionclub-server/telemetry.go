package main

import (
	"context"
	"log/slog"
	"os"

	"lionclub-backend/lib/serviceutil"
	"lionclub-backend/lib/telemetry"
)

func initTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose)

	t, err := telemetry.SetupFromEnv(ctx, "lionclub-server")
	if os.IsNotExist(err) {
		slog.Warn("no telemetry.json5 found, traces and metrics are disabled")
		return
	}
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}

	go func() {
		<-ctx.Done()
		err := t.Shutdown(context.Background())
		if err != nil {
			slog.Error("telemetry shutdown", "err", err)
		}
	}()
}
