// Package cmd implements the vaccine-alert CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/vaccine-alert/internal/config"
)

const envPrefix = "VACCINE_ALERT"

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vaccine-alert",
		Short: "Watch a location for open vaccination slots",
		Long: "vaccine-alert polls the public CoWIN availability API for one pincode or\n" +
			"district and notifies every configured channel the moment slots open up.\n" +
			"Running it without a subcommand is the same as \"vaccine-alert watch\".",
		SilenceUsage: true,
		RunE:         runWatch,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path (env "+envPrefix+"_CONFIG)")
	flags.String("pin", "", "pincode to watch, overrides location.pincode")
	flags.String("district", "", "district id to watch, overrides location.district")
	flags.Duration("interval", 0, "poll interval, overrides schedule.interval")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("output", "table", "output format for one-shot commands (table, json)")

	for _, name := range []string{"config", "pin", "district", "interval", "log-level", "output"} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}

	root.AddCommand(watchCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(notifyCmd())
	root.AddCommand(versionCmd())

	return root
}

func init() {
	cobra.OnInitialize(initViper)
}

func initViper() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file and applies flag and environment
// overrides bound through viper.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithOverrides(viper.GetString("config"), config.Overrides{
		Pincode:  viper.GetString("pin"),
		District: viper.GetString("district"),
		Interval: viper.GetDuration("interval"),
		LogLevel: viper.GetString("log-level"),
	})
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func outputFormat() string {
	return strings.ToLower(viper.GetString("output"))
}
