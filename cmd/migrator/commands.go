package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/freshdesk-migrator/internal/api/http"
	"github.com/spec-kit/freshdesk-migrator/internal/api/http/handlers"
	"github.com/spec-kit/freshdesk-migrator/internal/auth"
	"github.com/spec-kit/freshdesk-migrator/internal/config"
	"github.com/spec-kit/freshdesk-migrator/pkg/util/errorutil"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newMigrateCommand() *cobra.Command {
	var maxID int64
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate Freshdesk tickets 1..max-id in order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if maxID < 0 {
				return errors.New("--max-id must not be negative")
			}
			ctx, cancel := signalContext()
			defer cancel()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			batch := rt.migration.MigrateRange(ctx, maxID)
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: migrated %d tickets and %d fails\n",
				batch.RunID, batch.SuccessCount, batch.FailCount)
			return nil
		},
	}
	cmd.Flags().Int64Var(&maxID, "max-id", 0, "highest Freshdesk ticket id to migrate")
	_ = cmd.MarkFlagRequired("max-id")
	return cmd
}

func newMigrateOneCommand() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "migrate-one",
		Short: "Migrate a single Freshdesk ticket",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if id <= 0 {
				return errors.New("--id must be positive")
			}
			ctx, cancel := signalContext()
			defer cancel()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.close()

			result := rt.migration.MigrateOne(ctx, id)
			if !result.Succeeded() {
				return fmt.Errorf("ticket %d failed in %s (%s): %w",
					id, result.FailedIn, errorutil.Code(result.Err), result.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ticket %d migrated to %s (%d comments, %d failed)\n",
				id, result.TargetURL, result.CommentsAttempted, result.CommentsFailed)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "Freshdesk ticket id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the migration control API",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.close()
			logger := rt.logger

			checks := map[string]handlers.Pinger{}
			if rt.postgres.Enabled() {
				checks["postgres"] = rt.postgres
			}
			if rt.redis != nil {
				checks["redis"] = rt.redis
			}

			tokens := auth.NewTokenManager(rt.cfg.Auth.JWTSecret, rt.cfg.Auth.AccessTokenTTLMinutes)
			migrations := handlers.NewMigrationsHandler(rt.migration, rt.ledger, logger)

			app := fiber.New(fiber.Config{AppName: rt.cfg.App.Name, DisableStartupMessage: true})
			httptransport.RegisterMiddlewares(app, logger, rt.metrics, rt.cfg.App.RequestTimeout())
			httptransport.RegisterRoutes(app, httptransport.RouteConfig{
				Health:         handlers.NewHealthHandler(rt.cfg.App.Name, rt.cfg.App.Version, checks),
				Migrations:     migrations,
				Metrics:        rt.metrics,
				AuthMiddleware: auth.NewAuthMiddleware(tokens),
			})

			go func() {
				logger.Info("control api listening", zap.String("addr", rt.cfg.App.Addr()))
				if err := app.Listen(rt.cfg.App.Addr()); err != nil {
					logger.Fatal("fiber listen", zap.Error(err))
				}
			}()

			waitForShutdown(logger)

			if runID, ok := migrations.ActiveRun(); ok {
				logger.Info("stopping active migration run", zap.String("run_id", runID))
			}
			migrations.Shutdown()
			return app.Shutdown()
		},
	}
}

func newTokenCommand() *cobra.Command {
	var (
		operator string
		scopes   []string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator token for the control API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Read()
			if err != nil {
				return err
			}
			granted := make([]auth.Scope, 0, len(scopes))
			for _, raw := range scopes {
				scope, err := auth.ParseScope(strings.TrimSpace(raw))
				if err != nil {
					return err
				}
				granted = append(granted, scope)
			}
			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
			token, expiresAt, err := tokens.GenerateToken(operator, granted...)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&operator, "operator", "", "name recorded in the token")
	cmd.Flags().StringSliceVar(&scopes, "scope", nil, "scopes to grant (default: all)")
	_ = cmd.MarkFlagRequired("operator")
	return cmd
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
