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

	"github.com/kilianp07/plantsched/app"
	"github.com/kilianp07/plantsched/config"
	"github.com/kilianp07/plantsched/core/scheduler"
)

const defaultConfigPath = "config.yaml"

var (
	cfgPath    string
	policyPath string
)

var rootCmd = &cobra.Command{
	Use:           "plantsched",
	Short:         "Risk-aware production scheduling",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultConfigPath, "configuration file")
	rootCmd.PersistentFlags().StringVar(&policyPath, "policy", "", "scheduling policy file overriding the scheduler section")
}

// Execute runs the CLI.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the configuration file. The default path may be absent.
func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == defaultConfigPath {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if policyPath != "" {
		pol, err := scheduler.LoadConfig(policyPath)
		if err != nil {
			return nil, fmt.Errorf("load policy: %w", err)
		}
		cfg.Scheduler = pol
	}
	return cfg, nil
}

func newService() (*app.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.New(cfg)
}
