package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tickworld/internal/app"
	"tickworld/internal/config"
	"tickworld/internal/gamelog"
	"tickworld/internal/simerr"
)

func main() {
	gamelog.Init()

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: server <assets_dir>")
		os.Exit(1)
	}
	assetsDir := os.Args[1]
	gamelog.Log.Infof("Asset Directory: %s", assetsDir)

	addr := fmt.Sprintf(":%d", config.ServerPort)
	a, err := app.New(assetsDir, addr)
	if err != nil {
		logStartupError(err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		gamelog.Log.WithError(err).Error("tick engine stopped with an error")
		os.Exit(1)
	}
}

func logStartupError(err error) {
	switch {
	case errors.Is(err, simerr.ErrConfig):
		gamelog.Log.WithError(err).Error("failed to load assets")
	case errors.Is(err, simerr.ErrTransport):
		gamelog.Log.WithError(err).Error("failed to bind transport")
	default:
		gamelog.Log.WithError(err).Error("startup failed")
	}
}
