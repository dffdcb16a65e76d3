// Command server runs the Claude Code OpenAI-compatible API shim.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ccshim/claude-code-api/internal/api"
	"github.com/ccshim/claude-code-api/internal/claude"
	"github.com/ccshim/claude-code-api/internal/config"
	"github.com/ccshim/claude-code-api/internal/logging"
	"github.com/ccshim/claude-code-api/internal/registry"
)

func init() {
	logging.SetupBase()
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Configuration file path (optional; environment variables override it)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err = logging.Apply(cfg.LogLevel, cfg.LogToFile); err != nil {
		log.Fatalf("failed to configure logging: %v", err)
	}

	// Locate the CLI up front: a missing binary is a configuration error
	// and the server must not accept traffic it cannot serve.
	binary, err := claude.ResolveBinary(cfg.ClaudePath)
	if err != nil {
		log.Fatalf("failed to locate Claude Code CLI: %v", err)
	}
	if version := claude.ProbeVersion(context.Background(), binary); version != "" {
		log.Infof("using Claude Code CLI at %s (%s)", binary, version)
	} else {
		log.Infof("using Claude Code CLI at %s", binary)
	}

	if configPath != "" {
		stop, errWatch := config.Watch(configPath)
		if errWatch != nil {
			log.Warnf("config watcher unavailable: %v", errWatch)
		} else {
			defer stop()
		}
	}

	reg := registry.New(cfg.DefaultModel)
	invoker := claude.NewInvoker(binary, cfg.RequestTimeout)
	server := api.NewServer(cfg, reg, invoker)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-quit:
		log.Infof("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err = server.Stop(ctx); err != nil {
			log.Errorf("shutdown error: %v", err)
		}
	}
}
