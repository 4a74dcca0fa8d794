package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/db/memory"
	httptransport "github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/metrics"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/migrate"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/server"
)

const sweepInterval = time.Minute

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run migrations and start the HTTP API",
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := build(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			version, err := migrate.Up(a.sqlDB)
			if err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			a.log.Info("schema ready", zap.Uint("version", version))

			router := httptransport.NewRouter(httptransport.Deps{
				Auth:  a.auth,
				Users: a.users,
				Mail:  a.mailer,
				Health: map[string]httptransport.Pinger{
					"database":      a.userRepo,
					"session_store": a.store,
				},
				Metrics:          metrics.New(),
				Log:              a.log,
				AllowedOrigins:   a.cfg.AllowedOrigins,
				AllowCredentials: a.cfg.AllowCredentials,
			})

			srv := server.New(a.cfg.HTTPAddress, router, a.log)
			if a.cfg.HTTPSCertFile != "" {
				srv.WithTLS(a.cfg.HTTPSCertFile, a.cfg.HTTPSKeyFile)
			}
			if ms, ok := a.store.(*memory.MemorySessionStore); ok {
				srv.Go(func(ctx context.Context) error { return ms.Run(ctx, sweepInterval) })
			}

			err = srv.Run(ctx)
			a.log.Info("waiting for pending mail")
			a.mailer.Wait()
			return err
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending database migrations and exit",
		Action: func(c *cli.Context) error {
			a, err := build(c.Context)
			if err != nil {
				return err
			}
			defer a.Close()

			version, err := migrate.Up(a.sqlDB)
			if err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			a.log.Info("migrations applied", zap.Uint("version", version))
			return nil
		},
	}
}

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "create an account with the ADMIN role",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true},
			&cli.StringFlag{Name: "name", Value: "Administrator"},
			&cli.StringFlag{
				Name:     "password",
				Usage:    "account password",
				EnvVars:  []string{"ADMIN_PASSWORD"},
				Required: true,
			},
			&cli.StringFlag{Name: "company"},
		},
		Action: func(c *cli.Context) error {
			a, err := build(c.Context)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := migrate.Up(a.sqlDB); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}

			pub, err := a.auth.CreateAdmin(c.Context, model.SignUpInput{
				Name:                 c.String("name"),
				Email:                c.String("email"),
				Password:             c.String("password"),
				PasswordConfirmation: c.String("password"),
				Company:              c.String("company"),
			})
			if err != nil {
				return err
			}
			a.mailer.Wait()
			a.log.Info("admin created", zap.String("id", pub.ID), zap.String("email", pub.Email))
			return nil
		},
	}
}
