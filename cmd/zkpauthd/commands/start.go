package commands

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nsheremet/zkpauth/internal/config"
	"github.com/nsheremet/zkpauth/internal/engine"
	"github.com/nsheremet/zkpauth/internal/group"
	"github.com/nsheremet/zkpauth/internal/logger"
	"github.com/nsheremet/zkpauth/internal/ratelimit"
	"github.com/nsheremet/zkpauth/internal/store"
	"github.com/nsheremet/zkpauth/internal/transport"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the zkpauthd server",
	Long: `Start the zkpauthd server with the specified configuration.

Use --config to specify a custom configuration file, or it will use the
default location at ./zkpauthd.yaml.

Examples:
  # Start with default config
  zkpauthd start

  # Start with a custom config file
  zkpauthd start --config /etc/zkpauthd/config.yaml

  # Override a single setting via environment variable
  ZKP_LOG_LEVEL=debug zkpauthd start`,
	RunE: runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	params := group.Standard
	fingerprint := logger.GroupFingerprint(params.Name, params.P.Bytes(), params.Q.Bytes(), params.Alpha.Bytes(), params.Beta.Bytes())

	challenges := store.NewChallengeRegistry(cfg.ChallengeTTL(), cfg.MaxPendingChallenges)
	defer challenges.Close()
	sessions := store.NewSessionRegistry(cfg.MaxSessions)

	registerLimit := ratelimit.New(cfg.RateLimitPerMinute)
	defer registerLimit.Close()
	createLimit := ratelimit.New(cfg.RateLimitPerMinute)
	defer createLimit.Close()
	verifyLimit := ratelimit.New(cfg.RateLimitPerMinute)
	defer verifyLimit.Close()

	e := engine.New(engine.Config{
		Params:        params,
		Users:         store.NewUserRegistry(),
		Challenges:    challenges,
		Sessions:      sessions,
		RegisterLimit: registerLimit,
		CreateLimit:   createLimit,
		VerifyLimit:   verifyLimit,
	})

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	srv := transport.NewServer(addr, e, cfg.RequestTimeout(), fingerprint, cfg.MaxConcurrentStreams)

	logger.Info(ctx, "zkpauthd starting",
		"addr", addr,
		"group", params.Name,
		"group_fingerprint", fingerprint,
		"log_level", cfg.LogLevel,
	)

	serverDone := make(chan error, 1)
	go func() {
		serverDone <- srv.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		signal.Stop(sigChan)
		logger.Info(ctx, "shutdown signal received, initiating graceful shutdown")
		cancel()
		if err := <-serverDone; err != nil {
			logger.Error(ctx, "server shutdown error", "error", err)
			return err
		}
		logger.Info(ctx, "server stopped gracefully")
	case err := <-serverDone:
		signal.Stop(sigChan)
		if err != nil {
			logger.Error(ctx, "server error", "error", err)
			return err
		}
		logger.Info(ctx, "server stopped")
	}

	return nil
}
