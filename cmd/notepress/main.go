package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/notepress/notepress/internal/cli"
	"github.com/notepress/notepress/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx, cli.CommandArgs(os.Args[1:])); err != nil {
		log.Fatalf("%v", err)
	}
}
