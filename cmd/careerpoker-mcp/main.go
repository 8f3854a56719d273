package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/peterkuimelis/careerpoker/internal/config"
	cpmcp "github.com/peterkuimelis/careerpoker/internal/mcp"
	"github.com/peterkuimelis/careerpoker/internal/room"
	"github.com/peterkuimelis/careerpoker/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	addr := flag.String("addr", cfg.Addr, "HTTP address human players join on; empty disables it")
	rulesPath := flag.String("rules", cfg.RulesPath, "path to a rules YAML file")
	redisURL := flag.String("redis", cfg.RedisURL, "redis:// URL for room snapshots")
	flag.Parse()
	cfg.Addr, cfg.RulesPath, cfg.RedisURL = *addr, *rulesPath, *redisURL

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// stdout carries the MCP stream; logs go to stderr.
	logger := logrus.StandardLogger()
	if err := config.SetupLogging(logger, cfg); err != nil {
		return err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return err
	}

	store, closeStore, err := room.OpenStore(context.Background(), cfg.RedisURL)
	if err != nil {
		return err
	}
	defer closeStore()

	rooms := room.NewManager(room.ManagerOptions{Rules: rules, Store: store, Logger: logger})
	defer rooms.Close()

	if cfg.Addr != "" {
		srv := web.NewServer(rooms, logger)
		go func() {
			if err := srv.ListenAndServe(cfg.Addr); err != nil {
				logger.WithError(err).Error("web server stopped")
			}
		}()
	}

	s := server.NewMCPServer("careerpoker", "1.0.0")
	cpmcp.RegisterTools(s, cpmcp.NewSession(rooms))
	return server.ServeStdio(s)
}
