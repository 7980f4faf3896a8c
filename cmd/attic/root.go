package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/attic/pkg/attic/config"
	"github.com/jamesainslie/attic/pkg/attic/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "attic",
		Short: "Audit a personal file archive",
		Long: `Attic fingerprints every file in your archive and reconciles the result
against the snapshot taken on the previous run. It reports files that are
unchanged, changed, renamed, newly added, or missing, and it helps you triage
an incoming directory against content you already archived or already decided
to throw away.

Examples:
  attic verify ~/archive                 # Check the archive, update its snapshot
  attic verify --strict ~/archive        # Fail if anything changed or vanished
  attic triage ~/archive ~/incoming      # Verify, then triage incoming files
  attic history                          # Show past runs`,
		SilenceUsage: true,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/attic/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (plain, json, pretty)")
	rootCmd.PersistentFlags().Bool("strict", false, "treat changed or deleted archive files as failure")
	rootCmd.PersistentFlags().Bool("no-cache", false, "bypass the fingerprint cache, rehash everything")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "scan parallelism (0=auto)")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "exclude patterns (can be specified multiple times)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))
	_ = viper.BindPFlag("no_cache", rootCmd.PersistentFlags().Lookup("no-cache"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("exclude", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	config.SetupViper(viper.GetViper(), cfgFile)
	_ = viper.ReadInConfig()
}

// initLogging configures logging from the effective settings. The --verbose
// and --quiet flags override the configured level.
func initLogging() error {
	level := viper.GetString("logging.level")
	if viper.GetBool("verbose") {
		level = "debug"
	}
	return logging.Init(logging.Config{
		Level:      level,
		Path:       viper.GetString("logging.path"),
		Components: viper.GetStringMapString("logging.components"),
		Quiet:      viper.GetBool("quiet"),
	})
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
