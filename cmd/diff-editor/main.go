package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"diff-editor-server/internal/config"
	"diff-editor-server/internal/filesystem"
	"diff-editor-server/internal/lock"
	"diff-editor-server/internal/mcp"
	"diff-editor-server/internal/service"
	"diff-editor-server/internal/transport"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	flagCfg := config.Default()

	cmd := &cobra.Command{
		Use:   "diff-editor",
		Short: "Line-oriented file editing server for coding agents",
		Long: `diff-editor serves line-oriented file editing tools (apply_diff,
read_file, write_file, insert_lines, search_replace, list_files) over an MCP
stdio channel or a JSON HTTP API. All paths are confined to one working
directory.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				if err := cfg.LoadFile(configPath); err != nil {
					return err
				}
			}

			// Explicit flags win over the config file.
			flags := cmd.Flags()
			overrides := []struct {
				name  string
				apply func()
			}{
				{"dir", func() { cfg.WorkingDirectory = flagCfg.WorkingDirectory }},
				{"transport", func() { cfg.Transport = flagCfg.Transport }},
				{"port", func() { cfg.Port = flagCfg.Port }},
				{"max-file-size", func() { cfg.MaxFileSizeMB = flagCfg.MaxFileSizeMB }},
				{"max-concurrent", func() { cfg.MaxConcurrentOps = flagCfg.MaxConcurrentOps }},
				{"timeout", func() { cfg.OperationTimeoutSec = flagCfg.OperationTimeoutSec }},
				{"log-level", func() { cfg.LogLevel = flagCfg.LogLevel }},
				{"log-format", func() { cfg.LogFormat = flagCfg.LogFormat }},
			}
			for _, o := range overrides {
				if flags.Changed(o.name) {
					o.apply()
				}
			}

			if err := cfg.Validate(); err != nil {
				return errors.Wrap(err, "invalid configuration")
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			return run(cfg, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "path to an optional TOML config file")
	flags.StringVar(&flagCfg.WorkingDirectory, "dir", "", "working directory all file paths resolve against (required)")
	flags.StringVar(&flagCfg.Transport, "transport", flagCfg.Transport, "transport protocol (http or stdio)")
	flags.IntVar(&flagCfg.Port, "port", flagCfg.Port, "port for the HTTP transport")
	flags.IntVar(&flagCfg.MaxFileSizeMB, "max-file-size", flagCfg.MaxFileSizeMB, "maximum file size in MB")
	flags.IntVar(&flagCfg.MaxConcurrentOps, "max-concurrent", flagCfg.MaxConcurrentOps, "maximum concurrent HTTP operations")
	flags.IntVar(&flagCfg.OperationTimeoutSec, "timeout", flagCfg.OperationTimeoutSec, "operation timeout in seconds")
	flags.StringVar(&flagCfg.LogLevel, "log-level", flagCfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&flagCfg.LogFormat, "log-format", flagCfg.LogFormat, "log format (text or json)")

	return cmd
}

// newLogger builds the process logger. It always writes to stderr because
// stdout belongs to the stdio JSON-RPC channel.
func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	logger.SetLevel(level)

	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

func run(cfg *config.Config, logger *logrus.Logger) error {
	logger.WithFields(logrus.Fields{
		"working_directory": cfg.WorkingDirectory,
		"transport":         cfg.Transport,
		"max_file_size_mb":  cfg.MaxFileSizeMB,
		"timeout_sec":       cfg.OperationTimeoutSec,
	}).Info("starting diff-editor server")

	fsAdapter := filesystem.NewDefaultFileSystemAdapter()
	lockManager := lock.NewLockManager()
	svc, err := service.NewDefaultFileOperationService(fsAdapter, lockManager, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "could not initialize file operation service")
	}
	processor := mcp.NewMCPProcessor(svc)

	if cfg.Transport == "stdio" {
		// Blocks until stdin closes.
		return transport.NewStdioHandler(processor, logger).Start(os.Stdin, os.Stdout)
	}
	return runHTTP(cfg, svc, processor, logger)
}

func runHTTP(cfg *config.Config, svc service.FileOperationService, processor *mcp.MCPProcessor, logger *logrus.Logger) error {
	handler := transport.NewHTTPHandler(svc, processor, cfg, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- handler.StartServer(cfg.Port)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case sig := <-sigChan:
		logger.WithField("signal", sig.String()).Info("shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.OperationTimeoutSec)*time.Second)
		defer cancel()
		if err := handler.Shutdown(ctx); err != nil {
			return errors.Wrap(err, "graceful shutdown failed")
		}
		return <-serverErr
	}
}
