// Package cli wires the commands together. Each command builds its own
// collaborators from the loaded settings and passes them down
// explicitly; nothing is shared through package state.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"invoicez/internal/config"
)

var (
	workingDir string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "invoicez",
		Short: "Generate invoices from calendar events",
		Long: `invoicez turns training sessions from a calendar into invoice records.

It parses event titles, merges multi-week sessions, reconciles them with
the YAML invoice store in the working directory and walks you through
billing what is still unbilled.`,
		RunE:          runSync, // default action is a sync run
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&workingDir, "dir", "C", ".", "Invoice repository directory")
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(selectCalendarCmd)
	rootCmd.AddCommand(dumpEventsCmd)
	rootCmd.AddCommand(convertInvoicesCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadEnvironment resolves the repository paths and loads the settings.
func loadEnvironment() (*config.Paths, *config.Settings, error) {
	paths, err := config.NewPaths(workingDir)
	if err != nil {
		return nil, nil, err
	}
	settings, err := config.Load(paths)
	if err != nil {
		return nil, nil, err
	}
	return paths, settings, nil
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
