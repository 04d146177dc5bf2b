// Package main содержит служебную утилиту w2wctl для обслуживания сервиса Waste2Wealth.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/app"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/config"
)

var databaseURI string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "w2wctl",
		Short:         "Waste2Wealth maintenance tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&databaseURI, "database-uri", "d", "", "database URI (overrides DATABASE_URI)")

	root.AddCommand(createAdminCmd())
	root.AddCommand(geocodeOrdersCmd())
	return root
}

// withApp собирает зависимости сервиса, вызывает fn и освобождает ресурсы.
func withApp(ctx context.Context, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.ParseEnv()
	if err != nil {
		return err
	}
	if databaseURI != "" {
		cfg.DatabaseURI = databaseURI
	}
	if cfg.DatabaseURI == "" {
		return fmt.Errorf("database URI is required: set DATABASE_URI or --database-uri")
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	a, err := app.New(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
