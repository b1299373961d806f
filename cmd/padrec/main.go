package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/padrec/padrec/logging"
	"github.com/padrec/padrec/padrec"
)

var slog = logging.NewLogger("padrec/main")

func main() {
	args, err := padrec.ParseArgs()
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := padrec.Run(ctx, args); err != nil {
		slog.Error("padrec error", "error", err)
		os.Exit(1)
	}
}
