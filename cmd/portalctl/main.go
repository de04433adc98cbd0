// Package main provides portalctl, the operator CLI for the student portal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/seanlongden/asa-student-portal/internal/app"
	"github.com/seanlongden/asa-student-portal/internal/catalog"
	"github.com/seanlongden/asa-student-portal/internal/config"
	"github.com/seanlongden/asa-student-portal/internal/db"
	"github.com/seanlongden/asa-student-portal/internal/migrations"
	"github.com/seanlongden/asa-student-portal/internal/services"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
	syncTimeout  time.Duration
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "portalctl",
		Short:        "Operator tasks for the student portal",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newAdminTokenCmd())
	rootCmd.AddCommand(newCatalogCmd())
	return rootCmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			database, err := db.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to open db: %w", err)
			}
			defer database.Close()
			applied, err := migrations.Apply(cmd.Context(), database, migrations.Files())
			if err != nil {
				return fmt.Errorf("failed to migrate: %w", err)
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", name)
			}
			return nil
		},
	}
}

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-metrics",
		Short: "Pull this week's metrics for every connected student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log, logFile := app.NewLogger(cfg)
			defer func() {
				log.Sync()
				if logFile != nil {
					_ = logFile.Close()
				}
			}()
			ctx, cancel := context.WithTimeout(cmd.Context(), syncTimeout)
			defer cancel()
			portal, err := app.Open(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer portal.Close()
			summary, err := portal.MetricsSync().SyncAll(ctx)
			if err != nil {
				return fmt.Errorf("sync interrupted: %w", err)
			}
			return printJSON(cmd, summary)
		},
	}
	cmd.Flags().DurationVar(&syncTimeout, "timeout", time.Hour, "overall deadline for the sweep")
	return cmd
}

func newAdminTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Mint a bearer token for the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if tokenSubject == "" {
				return fmt.Errorf("--subject is required")
			}
			cfg := config.LoadAdminAuth()
			tokens := services.AdminTokens{
				Secret: []byte(cfg.AdminJWTSecret),
				Issuer: cfg.AdminJWTIssuer,
				TTL:    tokenTTL,
			}
			token, expires, err := tokens.Mint(tokenSubject, []string{services.RoleAdmin})
			if err != nil {
				return fmt.Errorf("failed to mint token: %w", err)
			}
			return printJSON(cmd, map[string]string{
				"token":     token,
				"expiresAt": expires.UTC().Format(time.RFC3339),
			})
		},
	}
	cmd.Flags().StringVar(&tokenSubject, "subject", "", "operator name recorded in the token")
	cmd.Flags().DurationVar(&tokenTTL, "ttl", 12*time.Hour, "token lifetime")
	return cmd
}

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog [path]",
		Short: "Validate a module catalog and print its outline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cat *catalog.Catalog
				err error
			)
			if len(args) == 1 {
				cat, err = catalog.Load(args[0])
			} else {
				cat, err = catalog.Default()
			}
			if err != nil {
				return fmt.Errorf("invalid catalog: %w", err)
			}
			for _, mod := range cat.All() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s (%s): %d lessons, %d inputs\n", mod.Order, mod.Title, mod.ID, len(mod.Lessons), len(mod.Inputs))
			}
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
