// Package commands implements the zkpauthctl CLI: register and login
// subcommands under a cobra root, following marmos91-dittofs's
// cmd/dittofs/commands package shape.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Version, Commit, and Date are injected at build time via ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	serverAddr string
	username   string
)

var rootCmd = &cobra.Command{
	Use:   "zkpauthctl",
	Short: "zkpauthctl - demo client for the zkpauthd zero-knowledge auth server",
	Long: `zkpauthctl demonstrates the Chaum-Pedersen challenge/response exchange
against a running zkpauthd server: it derives a secret scalar from a
password, registers the public commitments, and later proves knowledge
of the secret without ever sending it over the wire.

This tool exists to exercise the protocol end to end; it holds no
persistent credential store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called once from main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverAddr, "server", "http://127.0.0.1:50051", "zkpauthd server base URL")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "username")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(versionCmd)
}
