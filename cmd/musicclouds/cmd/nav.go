package cmd

import (
	"errors"
	"fmt"
	"io"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	"github.com/musicclouds/web/internal/service"
	"github.com/spf13/cobra"
)

// NavSelectOutput represents the JSON/YAML output for nav select.
type NavSelectOutput struct {
	Name     string `json:"name"      yaml:"name"`
	To       string `json:"to"        yaml:"to"`
	SignedIn bool   `json:"signed_in" yaml:"signed_in"`
}

func newNavCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nav",
		Short: "Show the navigation entries visible to the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			m := a.session(ctx)
			var user *domainauth.User
			if m.IsActive(ctx) {
				user = m.User()
			}
			links := service.NewNavigationPresenter(nil).Links(user)
			return a.render(cmd.OutOrStdout(), links, func(tw io.Writer) error {
				fmt.Fprintln(tw, "NAME\tTARGET")
				for _, l := range links {
					fmt.Fprintf(tw, "%s\t%s\n", l.Name, l.To)
				}
				return nil
			})
		},
	}
	cmd.AddCommand(newNavSelectCmd(a))
	return cmd
}

func newNavSelectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "select <name>",
		Short: "Resolve a navigation entry; selecting Logout signs out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			m := a.session(ctx)
			// Drops an expired credential so the entries match what nav lists.
			m.IsActive(ctx)
			to, err := service.NewNavigationPresenter(nil).Select(ctx, args[0], m)
			if err != nil {
				var unknown *service.UnknownLinkError
				if errors.As(err, &unknown) {
					return fmt.Errorf("%w (run 'musicclouds nav' to list entries)", err)
				}
				return err
			}

			out := NavSelectOutput{Name: args[0], To: to, SignedIn: m.User() != nil}
			return a.render(cmd.OutOrStdout(), out, func(tw io.Writer) error {
				fmt.Fprintf(tw, "%s\n", out.To)
				return nil
			})
		},
	}
}
