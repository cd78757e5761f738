package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	httpx "github.com/musicclouds/web/internal/http"
	"github.com/musicclouds/web/internal/http/validation"
	"github.com/musicclouds/web/internal/observability/metrics"
	"github.com/musicclouds/web/internal/ports"
	"github.com/musicclouds/web/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// validateAccount applies the account form rules shared with the web client.
func validateAccount(acct ports.Account, requirePassword bool) *validation.FieldValidator {
	passwordRules := []validation.Validator{validation.MaxLen("Password", maxPasswordLen)}
	if requirePassword {
		passwordRules = append([]validation.Validator{validation.Required("Password")}, passwordRules...)
	}
	age := ""
	if acct.Age != 0 {
		age = strconv.Itoa(acct.Age)
	}
	return validation.New().
		Validate("firstName", acct.FirstName, validation.Required("First name"), validation.MaxLen("First name", 50)).
		Validate("lastName", acct.LastName, validation.Required("Last name"), validation.MaxLen("Last name", 50)).
		Validate("username", acct.Username, validation.Required("Username"), validation.MaxLen("Username", 50)).
		Validate("email", acct.Email, validation.Required("Email"), validation.Email("Email")).
		Validate("age", age, validation.IntRange("Age", 1, 150)).
		Validate("gender", acct.Gender, validation.OneOf("Gender", httpx.Genders)).
		Validate("password", acct.Password, passwordRules...)
}

func accountFlags(f *pflag.FlagSet, acct *ports.Account) {
	f.StringVar(&acct.FirstName, "first-name", "", "First name")
	f.StringVar(&acct.LastName, "last-name", "", "Last name")
	f.StringVar(&acct.Email, "email", "", "Email")
	f.StringVar(&acct.Username, "username", "", "Username")
	f.StringVar(&acct.Password, "password", "", "Password")
	f.IntVar(&acct.Age, "age", 0, "Age")
	f.StringVar(&acct.Gender, "gender", "", "Gender (Male or Female)")
	f.StringVar(&acct.Role, "role", "", "Role (ADMIN or USER)")
}

// adminCredential runs the route guard for the users-management screen and
// returns the credential to forward to the user service.
func (a *app) adminCredential(ctx context.Context) (string, error) {
	raw, ok := a.activeCredential(ctx, a.session(ctx))
	if !ok {
		return "", errNotSignedIn
	}
	policy, _, _ := routePolicy(httpx.UsersManagementPath)
	d := service.NewRouteGuard().Decide(raw, httpx.UsersManagementPath, policy)
	metrics.EmitRouteDecision(a.metrics, httpx.UsersManagementPath, d)
	switch d.Outcome {
	case domainauth.OutcomeRender:
	case domainauth.OutcomeSignIn:
		return "", errNotSignedIn
	default:
		return "", fmt.Errorf("users management requires the ADMIN role (signed in as %s)", d.Role)
	}
	if err := a.backend(); err != nil {
		return "", err
	}
	return raw, nil
}

func parseUserID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", arg)
	}
	return id, nil
}

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage accounts (requires the ADMIN role)",
	}
	cmd.AddCommand(newUsersListCmd(a), newUsersAddCmd(a), newUsersUpdateCmd(a), newUsersDeleteCmd(a))
	return cmd
}

func newUsersListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List accounts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			raw, err := a.adminCredential(ctx)
			if err != nil {
				return err
			}
			accounts, err := a.users.ListUsers(ctx, raw)
			if err != nil {
				return err
			}
			return a.render(cmd.OutOrStdout(), accounts, func(tw io.Writer) error {
				if len(accounts) == 0 {
					fmt.Fprintln(tw, "No users found.")
					return nil
				}
				fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL\tAGE\tGENDER\tROLE")
				for _, u := range accounts {
					fmt.Fprintf(tw, "%d\t%s\t%s %s\t%s\t%d\t%s\t%s\n",
						u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.Age, u.Gender, u.Role)
				}
				return nil
			})
		},
	}
}

func newUsersAddCmd(a *app) *cobra.Command {
	var acct ports.Account
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Long: `Create an account as the signed-in admin.

Examples:
  musicclouds users add --first-name Max --last-name Mixer --username max \
    --email max@musicclouds.io --password secret --gender Male`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if fv := validateAccount(acct, true); !fv.OK() {
				return validationError(fv.Errors())
			}
			ctx := cmd.Context()
			raw, err := a.adminCredential(ctx)
			if err != nil {
				return err
			}
			if err := a.users.CreateUser(ctx, raw, acct); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s user %s\n", okFmt("Created"), acct.Username)
			return nil
		},
	}
	accountFlags(cmd.Flags(), &acct)
	return cmd
}

func newUsersUpdateCmd(a *app) *cobra.Command {
	var acct ports.Account
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace an account's fields; an empty password keeps the current one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			if fv := validateAccount(acct, false); !fv.OK() {
				return validationError(fv.Errors())
			}
			ctx := cmd.Context()
			raw, err := a.adminCredential(ctx)
			if err != nil {
				return err
			}
			if err := a.users.UpdateUser(ctx, raw, id, acct); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s user %d\n", okFmt("Updated"), id)
			return nil
		},
	}
	accountFlags(cmd.Flags(), &acct)
	return cmd
}

func newUsersDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an account",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseUserID(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			raw, err := a.adminCredential(ctx)
			if err != nil {
				return err
			}
			if err := a.users.DeleteUser(ctx, raw, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s user %d\n", okFmt("Deleted"), id)
			return nil
		},
	}
}
