package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nsxbet/klc-reviewer/pkg/logger"
)

var (
	cfgFile   string
	appLogger = logger.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "klc-reviewer",
	Short: "A KiCad Library Convention checker for footprints and symbols",
	Long: `KLC Reviewer checks KiCad footprint files (.kicad_mod) and symbol
libraries (.kicad_sym) against the KiCad Library Convention (KLC).

It reports rule violations, can repair many of them in place, and compares
two versions of a symbol library to find changes that break existing designs.
The convention itself is published at https://klc.kicad.org/`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		appLogger = logger.NewWithLevel(logger.LevelFromFlags(viper.GetBool("verbose"), viper.GetBool("debug")))
		slog.SetDefault(appLogger.GetSlogLogger())
		if used := viper.ConfigFileUsed(); used != "" {
			slog.Debug("Using config file", logger.File(used))
		}
	},
}

// exitCodeError ends the process with a status without printing anything.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitWith returns nil for status 0, or an error carrying the status. Values
// above 255 are clamped so that they never wrap to success.
func exitWith(status int) error {
	switch {
	case status <= 0:
		return nil
	case status > 255:
		status = 255
	}
	return &exitCodeError{code: status}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It returns the process exit status.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	var exit *exitCodeError
	if errors.As(err, &exit) {
		return exit.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return 1
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.klc-reviewer.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose logging")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".klc-reviewer" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".klc-reviewer")
	}

	viper.SetEnvPrefix("KLC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// A missing config file is fine; a broken one is reported once the
	// logger is set up.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Warning: ignoring config file: %v\n", err)
		}
	}
}
