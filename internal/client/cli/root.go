// Package cli implements the promptctl commands.
package cli

import (
	"bufio"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptshelf/promptshelf-backend/internal/client"
)

// app holds what every command shares: where the server and the state file
// are, and where interactive input comes from
type app struct {
	serverURL string
	statePath string

	stdin  io.Reader
	reader *bufio.Reader
}

// NewRootCmd builds the promptctl command tree
func NewRootCmd() *cobra.Command {
	a := &app{stdin: os.Stdin}

	root := &cobra.Command{
		Use:          "promptctl",
		Short:        "Manage your saved AI prompts",
		Long:         "A command-line client for the prompt store. Log in with a username and password, then list, add, copy, export and import prompts.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.stdin = cmd.InOrStdin()
			a.reader = bufio.NewReader(a.stdin)
		},
	}

	defaultServer := os.Getenv("PROMPTSHELF_URL")
	if defaultServer == "" {
		defaultServer = client.DefaultBaseURL
	}
	defaultState, err := client.DefaultStatePath()
	if err != nil {
		defaultState = ".promptshelf-session.json"
	}
	if env := os.Getenv("PROMPTSHELF_STATE"); env != "" {
		defaultState = env
	}

	root.PersistentFlags().StringVarP(&a.serverURL, "server", "s", defaultServer, "API base URL (default: $PROMPTSHELF_URL)")
	root.PersistentFlags().StringVar(&a.statePath, "state", defaultState, "Session state file (default: $PROMPTSHELF_STATE or the user config dir)")

	root.AddCommand(
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.listCmd(),
		a.addCmd(),
		a.editCmd(),
		a.rmCmd(),
		a.copyCmd(),
		a.tagsCmd(),
		a.exportCmd(),
		a.importCmd(),
	)

	return root
}

func (a *app) api() *client.API {
	return client.NewAPI(a.serverURL, nil)
}

func (a *app) manager() (*client.Manager, error) {
	return client.NewManager(a.api(), a.statePath)
}

// session returns the stored session together with its manager
func (a *app) session() (*client.Manager, client.Session, error) {
	m, err := a.manager()
	if err != nil {
		return nil, client.Session{}, err
	}
	s, err := m.Current()
	if err != nil {
		return nil, client.Session{}, err
	}
	return m, s, nil
}
