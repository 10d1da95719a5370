// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the biosearch CLI.
//
// biosearch searches a BioSearch endpoint across biological databases and
// either prints the grouped results or serves the search page.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/biosearch/internal/logging"
	"github.com/pdiddy/biosearch/internal/secrets"
	"github.com/pdiddy/biosearch/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg and logger are populated by PersistentPreRunE before any subcommand runs.
var (
	cfg    types.AppConfig
	logger = zerolog.Nop()
)

// rootCmd is the base command for the biosearch CLI.
var rootCmd = &cobra.Command{
	Use:   "biosearch",
	Short: "Search biological databases from one place",
	Long: `biosearch sends one query to a BioSearch server, which fans it out to the
selected biological databases (NCBI, PubMed, UniProt, DrugBank, KEGG, PDB,
Ensembl) and returns the results grouped by database.

Use "search" for a one-off query from the terminal and "serve" to run the
search page in a browser.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./biosearch.yaml or ~/.config/biosearch/biosearch.yaml)")
	pf.String("server", "", "base URL of the BioSearch server")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("layouts", "", "YAML file registering extra database layouts")
	_ = viper.BindPFlag("client.server_url", pf.Lookup("server"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("render.layouts_file", pf.Lookup("layouts"))
}

func setDefaults() {
	viper.SetDefault("client.timeout", 60*time.Second)
	viper.SetDefault("client.user_agent", "biosearch/"+version)
	viper.SetDefault("client.server_url", "http://localhost:5000")
	viper.SetDefault("client.api_token", "")
	viper.SetDefault("client.rate_limit_retries", 0)
	viper.SetDefault("serve.addr", ":8080")
	viper.SetDefault("notify.ttl", 3*time.Second)
	viper.SetDefault("export.dir", ".")
	viper.SetDefault("log.level", "info")
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("biosearch")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "biosearch"))
		}
	}

	viper.SetEnvPrefix("BIOSEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads .env, the secrets directory, and viper into cfg, then
// builds the logger.
func loadConfig() error {
	boot := logging.New(os.Stderr, types.LogConfig{Level: "warn"})

	if _, err := secrets.LoadEnv(".env"); err != nil {
		return err
	}
	s, err := secrets.Load(".secrets/", boot)
	if err != nil {
		return err
	}
	if tok, ok := s[secrets.APITokenKey]; ok {
		viper.SetDefault("client.api_token", tok)
	}

	var c types.AppConfig
	if err := viper.Unmarshal(&c); err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	cfg = c
	logger = logging.New(os.Stderr, cfg.Log)
	logger.Debug().
		Str("server", cfg.Client.ServerURL).
		Bool("api_token", cfg.Client.APIToken != "").
		Msg("configuration loaded")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
