package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/productionplan/app"
	"github.com/kilianp07/productionplan/config"
	"github.com/kilianp07/productionplan/infra/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:          "productionplan",
	Short:        "Powerplant production plan service",
	SilenceUsage: true,
	RunE:         serve,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the production plan API",
	RunE:  serve,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
	rootCmd.AddCommand(serveCmd)
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

// loadConfig falls back to the defaults when the default file is absent.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		logger.New("main").Warnf("%s not found, using default configuration", cfgPath)
		return config.Default(), nil
	}
	return nil, fmt.Errorf("load config: %w", err)
}

func serve(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}
