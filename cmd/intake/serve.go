package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vozlegal/intake/internal/adapter"
	"github.com/vozlegal/intake/internal/config"
	"github.com/vozlegal/intake/internal/daemon"
	"github.com/vozlegal/intake/internal/daemon/components"
	"github.com/vozlegal/intake/internal/httpapi"
	"github.com/vozlegal/intake/internal/knowledge"
	"github.com/vozlegal/intake/internal/session"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the intake service",
	Long:  `Starts the webhook API, the session reaper, and any enabled chat adapters, and runs them until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}

		stack, err := buildStack(cfg)
		if err != nil {
			return err
		}
		defer stack.Close()

		shutdownTimeout, err := config.DurationOrDefault(cfg.Server.ShutdownTimeout, config.DefaultServerShutdownTimeout)
		if err != nil {
			return fmt.Errorf("invalid shutdown timeout: %w", err)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		httpSrv := httpapi.NewServer(cfg.Server, stack.intake, stack.models)

		if cfg.Knowledge.SearchEnabled {
			if stack.models == nil {
				slog.Warn("Knowledge search enabled but no embedding model available, skipping")
			} else {
				index, err := knowledge.NewIndex(ctx, stack.base, func(embedCtx context.Context, text string) ([]float32, error) {
					return stack.models.RouteEmbedding(embedCtx, cfg.Models.Default, text)
				})
				if err != nil {
					return fmt.Errorf("failed to build knowledge index: %w", err)
				}
				httpSrv.EnableKnowledgeSearch(index, cfg.Knowledge.SearchTopK)
			}
		}

		ttl, err := config.DurationOrDefault(cfg.Sessions.TTL, config.DefaultSessionTTL)
		if err != nil {
			return fmt.Errorf("invalid session ttl: %w", err)
		}
		reaper := session.NewReaper(stack.sessions, ttl, cfg.Sessions.SweepSchedule)

		d := daemon.New(shutdownTimeout)
		if err := d.AddComponent(components.NewHTTPServerComponent(httpSrv)); err != nil {
			return err
		}
		if err := d.AddComponent(components.NewReaperComponent(reaper)); err != nil {
			return err
		}

		if cfg.Adapters.Telegram.Enabled {
			token := cfg.Adapters.Telegram.BotToken
			if token == "" {
				token = os.Getenv("TELEGRAM_BOT_TOKEN")
			}
			tg := adapter.NewTelegramAdapter(token, stack.intake, cfg.Adapters.Telegram.UpdateTimeout)
			if err := d.AddComponent(components.NewAdapterComponent(tg)); err != nil {
				return err
			}
		}

		slog.Info("Intake starting up", "port", cfg.Server.Port)
		if err := d.Run(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				slog.Info("Intake stopped gracefully")
				return nil
			}
			return fmt.Errorf("daemon failed: %w", err)
		}

		slog.Info("Intake stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
