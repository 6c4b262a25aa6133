package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/mvoronkov/recipeshelf/internal/client/cli"
	"github.com/mvoronkov/recipeshelf/internal/client/config"
	"github.com/mvoronkov/recipeshelf/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	// Keep the prompt clean: only warnings and errors reach the terminal.
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: slog.LevelWarn})))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)
}
