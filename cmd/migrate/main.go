package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jhoicas/seguros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/seguros-api/pkg/config"
	"github.com/jhoicas/seguros-api/pkg/logger"
)

var timeout time.Duration

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Migraciones de base de datos de seguros-api",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Aplica todas las migraciones pendientes",
	RunE: withProvider(func(ctx context.Context, cmd *cobra.Command, p *goose.Provider) error {
		results, err := p.Up(ctx)
		for _, r := range results {
			fmt.Fprintln(cmd.OutOrStdout(), r.String())
		}
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "sin migraciones pendientes")
		}
		return nil
	}),
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revierte la última migración aplicada",
	RunE: withProvider(func(ctx context.Context, cmd *cobra.Command, p *goose.Provider) error {
		r, err := p.Down(ctx)
		if r != nil {
			fmt.Fprintln(cmd.OutOrStdout(), r.String())
		}
		return err
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Muestra el estado de cada migración",
	RunE: withProvider(func(ctx context.Context, cmd *cobra.Command, p *goose.Provider) error {
		statuses, err := p.Status(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range statuses {
			applied := "-"
			if !s.AppliedAt.IsZero() {
				applied = s.AppliedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(out, "%-6d %-10s %-25s %s\n", s.Source.Version, s.State, applied, filepath.Base(s.Source.Path))
		}
		return nil
	}),
}

// withProvider abre el pool con la configuración del entorno y entrega el
// provider de goose al comando.
func withProvider(fn func(context.Context, *cobra.Command, *goose.Provider) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("cargar configuración: %w", err)
		}
		if cfg.DB.Driver != "postgres" {
			return fmt.Errorf("DB_DRIVER=%s: las migraciones solo aplican a postgres", cfg.DB.Driver)
		}
		log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		pool, err := openPool(ctx, cfg, log.Component("postgres"))
		if err != nil {
			return err
		}
		defer pool.Close()

		provider, err := postgres.NewMigrationProvider(pool)
		if err != nil {
			return err
		}
		defer func() { _ = provider.Close() }()
		return fn(ctx, cmd, provider)
	}
}

func openPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	return pool, nil
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "tiempo máximo de la operación")
	rootCmd.AddCommand(upCmd, downCmd, statusCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
