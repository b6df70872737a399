package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ppsim/internal/app"
)

func main() {
	cfg, err := app.Parse("ppsim", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		log.Fatalf("ppsim: %v", err)
	}

	a, err := app.New(cfg, log.Default())
	if err != nil {
		log.Fatalf("ppsim: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil {
		log.Fatalf("ppsim: %v", err)
	}
}
