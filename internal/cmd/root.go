// Package cmd implements the tourguide command line.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/tourguide/internal/cmd/config"
	appconfig "github.com/Iron-Ham/tourguide/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "tourguide",
	Short: "Guided product tours for terminal applications",
	Long: `Tourguide plays step-by-step product tours over a terminal screen.

Tours are defined in YAML files in the tours directory. Each step is drawn
as a tooltip pointing at a named panel; before and after hooks run around
every transition, and at most one tour is on screen at a time.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/tourguide/config.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))

	config.Register(rootCmd)
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	appconfig.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(appconfig.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TOURGUIDE")
	// Replace dots with underscores for nested keys in env vars
	// e.g., TOURGUIDE_TOURS_FALLBACK_POLICY for tours.fallback_policy
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
