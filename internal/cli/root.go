// Package cli implements issues-cli, the command-line client of the Simple Easy Issues API.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	applicationName = "issues-cli"
	configName      = ".issues-cli"
	version         = "1.0.0"
)

var (
	cfgFile      string
	outputFormat string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   applicationName,
	Short: "Simple Easy Issues CLI - issue tracking from the command line",
	Long: `issues-cli is a command-line interface for the Simple Easy Issues API.

It manages authentication profiles, projects, issues and comments. List and show
commands print tables by default; use --output json, yaml or csv for scripting.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.issues-cli.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml, csv)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("profile", "", "profile to use instead of the default")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetEnvPrefix("ISSUES_CLI")
	viper.AutomaticEnv() // ISSUES_CLI_PROFILE, ISSUES_CLI_OUTPUT

	if verbose {
		if path, err := getConfigPath(); err == nil {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", path)
		}
	}
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	if cfgFile != "" {
		// Convert to absolute path
		absPath, err := filepath.Abs(cfgFile)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute path for config file: %w", err)
		}
		return absPath, nil
	}

	// Try user home directory first
	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, configName+".yaml"), nil
	}

	// Fallback to user config directory
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: both UserHomeDir and UserConfigDir failed")
	}

	return filepath.Join(configDir, configName+".yaml"), nil
}

// format returns the requested output format, honoring ISSUES_CLI_OUTPUT.
func format() string {
	if f := viper.GetString("output"); f != "" {
		return f
	}
	return outputFormat
}

// currentClient loads the active profile and builds a client for it.
func currentClient() (*Profile, *APIClient, error) {
	profile, err := GetCurrentProfile()
	if err != nil {
		return nil, nil, fmt.Errorf("not authenticated: %w", err)
	}
	return profile, NewAPIClientFromProfile(profile), nil
}

// resolveProject picks the --project flag or the profile's selected project.
func resolveProject(cmd *cobra.Command, profile *Profile) (string, error) {
	projectID, _ := cmd.Flags().GetString("project")
	if projectID == "" {
		projectID = profile.ProjectID
	}
	if projectID == "" {
		return "", fmt.Errorf("no project specified and no default project set; use --project or 'project select'")
	}
	return projectID, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
