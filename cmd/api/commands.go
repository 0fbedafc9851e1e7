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

	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/infrastructure/database"
	"github.com/sangkips/tablepos/internal/presentation/http/routes"
	"github.com/sangkips/tablepos/pkg/utils"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			importBackups(ctx, a.recovery, a.log)

			ginMode(a.cfg)
			router := routes.Setup(ctx, a.handlers(), &routes.Deps{
				JWTManager: utils.NewJWTManager(a.cfg.JWT.Secret, a.cfg.JWT.ExpiryHours),
				Cfg:        a.cfg,
				Log:        a.log,
			})

			port := a.cfg.App.Port
			if port == "" {
				port = "8080"
			}
			srv := &http.Server{Addr: ":" + port, Handler: router, ReadHeaderTimeout: 10 * time.Second}

			errCh := make(chan error, 1)
			go func() {
				a.log.Info("starting server",
					zap.String("service", a.cfg.App.Name),
					zap.String("port", port),
					zap.String("env", a.cfg.App.Env),
				)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}

func newMigrateCommand() *cobra.Command {
	var tableCount int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadBase()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.Open(&cfg.Database, log, cfg.App.Debug)
			if err != nil {
				return err
			}
			if err := database.AutoMigrate(db, log); err != nil {
				return err
			}
			if cmd.Flags().Changed("tables") {
				cfg.POS.TableCount = tableCount
			}
			return database.SeedDefaultData(db, log, cfg.POS.TableCount, cfg.POS.WalkInName)
		},
	}
	cmd.Flags().IntVar(&tableCount, "tables", 0, "number of tables to seed (defaults to POS_TABLE_COUNT)")
	return cmd
}

func newImportBackupsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import-backups",
		Short: "Move locally saved failed transactions into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			imported, err := a.recovery.ImportLocalBackups(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d failed transaction(s)\n", imported)
			return err
		},
	}
}

func newTokenCommand() *cobra.Command {
	var (
		cashierID string
		name      string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a cashier access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadBase()
			if err != nil {
				return err
			}

			id := uuid.New()
			if cashierID != "" {
				if id, err = uuid.Parse(cashierID); err != nil {
					return fmt.Errorf("invalid --cashier-id: %w", err)
				}
			}

			token, err := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours).GenerateToken(id, name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&cashierID, "cashier-id", "", "cashier uuid (random when empty)")
	cmd.Flags().StringVar(&name, "name", "", "cashier display name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
