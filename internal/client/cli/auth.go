package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptshelf/promptshelf-backend/internal/client"
)

func (a *app) credentials(cmd *cobra.Command) (string, string, error) {
	username, _ := cmd.Flags().GetString("username")
	if username == "" {
		var err error
		if username, err = a.readLine(cmd.ErrOrStderr(), "Username"); err != nil {
			return "", "", err
		}
	}
	password, err := a.readSecret(cmd.ErrOrStderr(), "Password")
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func (a *app) signupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account from a username and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}

			var s client.Session
			if anonymous, _ := cmd.Flags().GetBool("anonymous"); anonymous {
				s, err = m.SignupAnonymous(cmd.Context())
			} else {
				username, password, cerr := a.credentials(cmd)
				if cerr != nil {
					return cerr
				}
				s, err = m.Signup(cmd.Context(), username, password)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "signed up as %s\n", displayName(s))
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "Username (prompted when empty)")
	cmd.Flags().Bool("anonymous", false, "Use a random session id instead of credentials")
	return cmd
}

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with an existing username and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			username, password, err := a.credentials(cmd)
			if err != nil {
				return err
			}

			s, err := m.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", displayName(s))
			return nil
		},
	}
	cmd.Flags().StringP("username", "u", "", "Username (prompted when empty)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			if err := m.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session after checking it with the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			s, err := m.Restore(cmd.Context())
			if errors.Is(err, client.ErrNoSession) {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (session %s)\n", displayName(s), s.ID)
			return nil
		},
	}
}

func displayName(s client.Session) string {
	if s.Username == "" {
		return "anonymous"
	}
	return s.Username
}
