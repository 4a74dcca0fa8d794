package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var Version = "dev"

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:    "account-service",
		Usage:   "account and session service",
		Version: Version,
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			createAdminCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
