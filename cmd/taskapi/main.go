// @title          Task API
// @version        1.0
// @description    Task tracking REST API with signup, login and token-gated task creation.
// @BasePath       /
//
// @securityDefinitions.apikey  TokenAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/tasktracker/task-api/internal/app"
	"github.com/tasktracker/task-api/internal/infrastructure/config"
	"github.com/tasktracker/task-api/pkg/logger"
)

func main() {
	cliApp := &cli.App{
		Name:  "taskapi",
		Usage: "Task tracking REST API",
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
		},
		DefaultCommand: "serve",
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		log := logger.Init(logger.Options{})
		log.Error().Err(err).Msg("application failed")
		cancel()
		os.Exit(1)
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Apply pending migrations and serve the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, log, err := bootstrap(c.Context)
			if err != nil {
				return err
			}

			a, err := app.New(c.Context, cfg, log)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					log.Warn().Err(err).Msg("close")
				}
			}()

			return a.Run(c.Context)
		},
	}
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending database migrations and exit",
		Action: func(c *cli.Context) error {
			cfg, log, err := bootstrap(c.Context)
			if err != nil {
				return err
			}
			if err := app.Migrate(c.Context, cfg, log); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}

func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "taskapi",
	})
	log.Info().
		Str("env", cfg.Env).
		Str("driver", cfg.Database.Driver).
		Bool("redis", cfg.Redis.Addr != "").
		Msg("configuration loaded")
	return cfg, log, nil
}
