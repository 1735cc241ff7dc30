/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

const (
	releaseVersion = "1.0.0"
)

func main() {
	log.SetFlags(0)

	envFile := os.Getenv("BILSENE_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	cobra.CheckErr(loadDotEnv(envFile))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &Config{}
	cobra.CheckErr(newCmd(cfg).ExecuteContext(ctx))
}
