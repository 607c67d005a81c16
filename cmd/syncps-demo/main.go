// Command syncps-demo runs two sync engines sharing an in-process
// transport, publishes a handful of publications on one side, and logs
// what the other side receives through a subscription. It exists to
// exercise the wiring end-to-end outside of tests.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/pollere/DNMP/internal/dlog"
	"github.com/pollere/DNMP/pkg/wirename"
)

var (
	topic    = flag.String("topic", "demo/topic", "slash-separated topic both peers use")
	count    = flag.Int("count", 5, "publications peer A sends")
	interval = flag.Duration("interval", 200*time.Millisecond, "delay between publications")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()
	dlog.SetLevel(slog.LevelInfo)

	cfg := demoConfig{
		topic:    wirename.New(splitPath(*topic)...),
		count:    *count,
		interval: *interval,
	}

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(newDemo),
		fx.Invoke(registerLifecycle),
		fx.NopLogger,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return app.Stop(stopCtx)
}

func splitPath(s string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '/' {
			if i > start {
				parts = append(parts, s[start:i])
			}
			start = i + 1
		}
	}
	return parts
}
