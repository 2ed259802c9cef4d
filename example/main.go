package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finchly/canary"
)

func main() {
	const token = "demo-token"

	// simulate the watched process: report in every 5 seconds (see operator.go)
	go StartDemoOperator("http://127.0.0.1:3000/", token, 5*time.Second)

	c, err := canary.New(
		canary.WithToken(token),
		canary.WithPort(3000),
		canary.WithTitle("demo canary"),
		canary.WithPingCallback(func(p canary.Ping) {
			slog.Info("ping observed via callback", "reason", p.Reason)
		}),
	)
	if err != nil {
		slog.Error("failed to create canary", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  Canary demo")
	fmt.Println()
	fmt.Println("  Open http://127.0.0.1:3000 in your browser")
	fmt.Println("  A demo operator pings every 5 seconds")
	fmt.Println()
	fmt.Println("  Report in manually:")
	fmt.Printf("    curl -X POST -H \"Authorization: Bearer %s\" -d \"manual ping\" http://127.0.0.1:3000/\n", token)
	fmt.Println()
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.Start(ctx); err != nil {
		slog.Error("canary error", "error", err)
		os.Exit(1)
	}
}
