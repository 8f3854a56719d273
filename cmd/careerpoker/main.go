package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/peterkuimelis/careerpoker/internal/config"
	cpnet "github.com/peterkuimelis/careerpoker/internal/net"
	"github.com/peterkuimelis/careerpoker/internal/room"
	"github.com/peterkuimelis/careerpoker/internal/web"
)

var Version = "dev"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "careerpoker",
		Usage:   "career poker tables over WebSocket",
		Version: Version,
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Host tables for players to join",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "HTTP listen address (default $CAREERPOKER_ADDR or :8080)"},
					&cli.StringFlag{Name: "rules", Usage: "path to a rules YAML file"},
					&cli.StringFlag{Name: "redis", Usage: "redis:// URL for room snapshots; empty keeps them in memory"},
					&cli.StringFlag{Name: "log-level", Usage: "logrus level"},
					&cli.StringFlag{Name: "log-file", Usage: "also write logs to this rotating file"},
				},
				Action: runServe,
			},
			{
				Name:  "join",
				Usage: "Take a seat at a table from this terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: "localhost:8080", Usage: "server address"},
					&cli.StringFlag{Name: "room", Value: "lobby", Usage: "room id"},
					&cli.StringFlag{Name: "player", Required: true, Usage: "your seat name"},
				},
				Action: runJoin,
			},
		},
	}
}

// loadConfig reads the environment and applies any flags that were set.
func loadConfig(c *cli.Context) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if c.IsSet("addr") {
		cfg.Addr = c.String("addr")
	}
	if c.IsSet("rules") {
		cfg.RulesPath = c.String("rules")
	}
	if c.IsSet("redis") {
		cfg.RedisURL = c.String("redis")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-file") {
		cfg.LogFile = c.String("log-file")
	}
	return cfg, nil
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	logger := logrus.StandardLogger()
	if err := config.SetupLogging(logger, cfg); err != nil {
		return err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := room.OpenStore(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer closeStore()

	rooms := room.NewManager(room.ManagerOptions{Rules: rules, Store: store, Logger: logger})
	defer rooms.Close()

	srv := &http.Server{Addr: cfg.Addr, Handler: web.NewServer(rooms, logger)}
	errc := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{"addr": cfg.Addr, "redis": cfg.RedisURL != ""}).Info("careerpoker listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runJoin(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()
	return cpnet.Connect(ctx, c.String("addr"), c.String("room"), c.String("player"), os.Stdin, os.Stdout)
}
