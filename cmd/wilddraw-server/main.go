package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/wilddraw/internal/lobby"
	"github.com/lox/wilddraw/internal/room"
	"github.com/lox/wilddraw/internal/server"
	"github.com/lox/wilddraw/internal/stats"
)

var CLI struct {
	Config    string `short:"c" default:"wilddraw.hcl" help:"Path to HCL configuration file"`
	Addr      string `short:"a" help:"Listen address (overrides config)"`
	LogLevel  string `short:"l" help:"Log level (overrides config)"`
	Static    string `help:"Static asset directory (overrides config)"`
	StatsFile string `help:"Player stats file (overrides config)"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("wilddraw-server"),
		kong.Description("Heads-up wild draw poker server"),
		kong.UsageOnError(),
	)

	cfg, err := server.LoadConfig(CLI.Config)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		kctx.Exit(1)
	}

	// Apply command line overrides
	if CLI.LogLevel != "" {
		cfg.Server.LogLevel = CLI.LogLevel
	}
	if CLI.Static != "" {
		cfg.Server.StaticDir = CLI.Static
	}
	if CLI.StatsFile != "" {
		cfg.Server.StatsFile = CLI.StatsFile
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		kctx.Exit(1)
	}

	logger := log.New(os.Stderr)
	switch cfg.Server.LogLevel {
	case "debug":
		logger.SetLevel(log.DebugLevel)
	case "info":
		logger.SetLevel(log.InfoLevel)
	case "warn":
		logger.SetLevel(log.WarnLevel)
	case "error":
		logger.SetLevel(log.ErrorLevel)
	default:
		logger.SetLevel(log.InfoLevel)
	}

	store, err := stats.NewStore(cfg.Server.StatsFile, logger.WithPrefix("stats"))
	if err != nil {
		logger.Fatal("failed to open stats file", "path", cfg.Server.StatsFile, "err", err)
	}

	l := lobby.New(cfg.RoomConfig(),
		lobby.WithLogger(logger.WithPrefix("lobby")),
		lobby.WithRoomOptions(room.WithRecorder(store)),
	)

	addr := cfg.Addr()
	if CLI.Addr != "" {
		addr = CLI.Addr
	}
	srv := server.NewServer(addr, cfg.Server.StaticDir, l, logger)

	logger.Info("starting wild draw poker server", "addr", addr, "static", cfg.Server.StaticDir)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })
	g.Go(func() error { return l.Run(ctx) })

	if err := g.Wait(); err != nil {
		logger.Fatal("server exited", "err", err)
	}
	logger.Info("shutdown complete")
}
