package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"libraryhub/internal/client"
)

type cli struct {
	server    string
	statePath string
	api       *client.Client
}

func newRootCmd() *cobra.Command {
	a := &cli{}
	root := &cobra.Command{
		Use:           "libraryctl",
		Short:         "Command line client for the library API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.server, "server", envOr("LIBRARY_API", "http://localhost:8080/api"), "API base URL")
	root.PersistentFlags().StringVar(&a.statePath, "state", defaultStatePath(), "file holding the session")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.booksCmd(),
		a.borrowCmd(),
		a.returnCmd(),
		a.loansCmd(),
		a.reserveCmd(),
		a.reservationsCmd(),
		a.reviewCmd(),
		a.reviewsCmd(),
		a.dashboardCmd(),
		a.connectionsCmd(),
	)
	return root
}

// open loads the stored session and resumes it.
func (a *cli) open(cmd *cobra.Command) error {
	storage, err := client.OpenFileStorage(a.statePath)
	if err != nil {
		return err
	}
	a.api = client.New(a.server, storage)
	if _, err := a.api.Restore(cmd.Context()); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Stored session discarded: %v\n", err)
	}
	return nil
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".libraryctl.json"
	}
	return filepath.Join(dir, "libraryctl", "state.json")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
