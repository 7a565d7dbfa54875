package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"prospect-engine/internal/config"
	"prospect-engine/internal/logging"
	"prospect-engine/internal/secrets"
)

type globalFlags struct {
	configPath string
	envFile    string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:          "prospect",
		Short:        "Launch prospect jobs for a list of company domains and collect the contacts",
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default "+config.DefaultPath+" when present)")
	pf.StringVar(&g.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	pf.StringVar(&g.logLevel, "log-level", "", "override log.level")

	rootCmd.AddCommand(
		newRunCmd(g),
		newMigrateCmd(g),
		newKeyCmd(),
		newConfigCmd(),
	)

	return rootCmd
}

// load builds the effective config: file, then dotenv, then environment,
// then the keychain for a missing API key.
func (g *globalFlags) load() (config.Config, error) {
	path, err := config.Resolve(g.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if err := config.LoadDotEnv(g.envFile); err != nil {
		return cfg, fmt.Errorf("env file %s: %w", g.envFile, err)
	}
	config.OverlayEnv(&cfg, os.Getenv)
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if key, err := secrets.ResolveAPIKey(cfg.API.APIKey, ""); err == nil {
		cfg.API.APIKey = key
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*logrus.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
}
