package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/support-desk/internal/service"
)

var errNoUserStore = errors.New("no user store: set POSTGRES_DSN (the API server seeds its in-memory store from SEED_* instead)")

func newAddUserCommand(env *environment) *cobra.Command {
	var input service.RegisterInput

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a student or admin account",
		Example: `  supportctl adduser --email ada@example.com --first-name Ada --last-name Lovelace \
      --role admin --password 'correct horse battery'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env.users == nil {
				return errNoUserStore
			}
			user, err := env.accounts().RegisterUser(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s) id=%s\n", user.Role, user.FullName(), user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&input.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&input.Role, "role", "student", "student or admin")
	cmd.Flags().StringVar(&input.Password, "password", "", "initial password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newTokenCommand(env *environment) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for an existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if env.users == nil {
				return errNoUserStore
			}
			_, token, exp, err := env.accounts().IssueToken(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
