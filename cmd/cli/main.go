package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/eportfolio/internal/client/cli"
	"github.com/dmitrijs2005/eportfolio/internal/client/config"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}
