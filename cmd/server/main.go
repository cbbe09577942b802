// Package main provides the entry point for the Simple Easy Issues server application.
package main

//nolint:gofumpt
import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/simple-easy-issues/internal/config"

	// Import migrations to register them with PocketBase
	_ "github.com/ericfisherdev/simple-easy-issues/migrations"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "dev"

var configFile string

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "issues-server",
		Short: "Simple Easy Issues API server",
		Long: `issues-server runs the Simple Easy Issues HTTP API on top of a
partitioned document store (PocketBase or in-memory).

Settings come from defaults, an optional YAML file and environment variables.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: $CONFIG_FILE)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newInitStoreCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// loadConfig reads the configuration named by --config or CONFIG_FILE.
func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}
