// Package commands implements the zkpauthd CLI, grounded on
// marmos91-dittofs/cmd/dittofs/commands: a cobra root command holding a
// global --config flag, with start/version as subcommands.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and Date are injected at build time via ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "zkpauthd",
	Short: "zkpauthd - password-free zero-knowledge authentication server",
	Long: `zkpauthd runs a server implementing the Chaum-Pedersen zero-knowledge
proof protocol: clients register a public commitment once and thereafter
prove knowledge of their secret without ever transmitting it.

Use "zkpauthd [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./zkpauthd.yaml)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(versionCmd)
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
