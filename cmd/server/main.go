package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirerelay/internal/app"
	"github.com/vovakirdan/wirerelay/internal/config"
	"github.com/vovakirdan/wirerelay/internal/log"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "wirerelay [port]",
	Short:         "Real-time TCP chat relay",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	overrides := config.Config{LogLevel: logLevel}
	if len(args) == 1 {
		port, err := parsePort(args[0])
		if err != nil {
			_ = cmd.Usage()
			return err
		}
		overrides.Addr = fmt.Sprintf(":%d", port)
	}

	// Bootstrap logger until the configured one is available.
	bootLogger := log.New("info", "")
	cfg, cfgPath, err := config.Load(bootLogger, cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.UpdateFrom(overrides)

	logger := log.New(cfg.LogLevel, cfg.LogFile)
	logger.Info().Str("config", cfgPath).Msg("configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().Str("addr", application.Addr()).Msg("starting wirerelay")
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("server exited with error: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func parsePort(arg string) (int, error) {
	port, err := strconv.Atoi(arg)
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", arg)
	}
	return port, nil
}
