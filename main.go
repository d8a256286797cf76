package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/Eursukkul/table-booking/internal/cli"
)

func main() {
	if err := cli.NewRoot().ExecuteContext(context.Background()); err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
