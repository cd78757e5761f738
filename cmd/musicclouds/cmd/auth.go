package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	"github.com/musicclouds/web/internal/http/validation"
	"github.com/musicclouds/web/internal/ports"
	"github.com/musicclouds/web/internal/token"
	"github.com/spf13/cobra"
)

// maxPasswordLen matches the web sign-in form.
const maxPasswordLen = 20

// SessionOutput represents the JSON/YAML output for login, signup and whoami.
type SessionOutput struct {
	Username  string     `json:"username"             yaml:"username"`
	Roles     []string   `json:"roles"                yaml:"roles"`
	Admin     bool       `json:"admin"                yaml:"admin"`
	ExpiresAt *time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
}

// StatusOutput represents the JSON/YAML output for status.
type StatusOutput struct {
	Authenticated bool   `json:"authenticated"      yaml:"authenticated"`
	Username      string `json:"username,omitempty" yaml:"username,omitempty"`
	Admin         bool   `json:"admin"              yaml:"admin"`
	Store         string `json:"store"              yaml:"store"`
}

func sessionOutput(user *domainauth.User, raw string) SessionOutput {
	out := SessionOutput{Username: user.Username, Admin: user.IsAdmin()}
	for _, r := range user.Roles {
		out.Roles = append(out.Roles, string(r))
	}
	if claims, err := token.Decode(raw); err == nil && claims.HasExpiry {
		exp := claims.ExpiresAt.UTC()
		out.ExpiresAt = &exp
	}
	return out
}

func (a *app) printSession(w io.Writer, out SessionOutput, verb string) error {
	return a.render(w, out, func(tw io.Writer) error {
		fmt.Fprintf(tw, "%s as %s\n", okFmt(verb), out.Username)
		fmt.Fprintf(tw, "Roles:\t%s\n", strings.Join(out.Roles, ", "))
		if out.ExpiresAt != nil {
			fmt.Fprintf(tw, "Expires:\t%s\n", out.ExpiresAt.Format(time.RFC3339))
		}
		return nil
	})
}

// loginMessage turns a backend failure into the text shown to the user.
func loginMessage(err error) error {
	if errors.Is(err, ports.ErrAuthRejected) {
		return errors.New("Invalid credentials.") //nolint:stylecheck // shown verbatim, like the web form.
	}
	return err
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the issued credential",
		Long: `Sign in to the user service. The password is read from stdin when
--password is not given.

Examples:
  musicclouds login --email ada@musicclouds.io
  echo "$PASSWORD" | musicclouds login --email ada@musicclouds.io -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				if password, err = readSecret(cmd, "Password: "); err != nil {
					return err
				}
			}
			fv := validation.New().
				Validate("email", email, validation.Required("Email"), validation.Email("Email")).
				Validate("password", password, validation.Required("Password"), validation.MaxLen("Password", maxPasswordLen))
			if !fv.OK() {
				return validationError(fv.Errors())
			}
			if err := a.backend(); err != nil {
				return err
			}

			ctx := cmd.Context()
			m := a.session(ctx)
			user, err := m.Login(ctx, ports.LoginInput{Email: strings.TrimSpace(email), Password: password})
			if err != nil {
				return loginMessage(err)
			}
			raw, _ := m.Credential(ctx)
			return a.printSession(cmd.OutOrStdout(), sessionOutput(user, raw), "Signed in")
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var in ports.RegisterInput
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Password == "" {
				var err error
				if in.Password, err = readSecret(cmd, "Password: "); err != nil {
					return err
				}
			}
			acct := ports.Account{
				FirstName: in.FirstName, LastName: in.LastName, Email: in.Email,
				Username: in.Username, Age: in.Age, Gender: in.Gender, Password: in.Password,
			}
			if fv := validateAccount(acct, true); !fv.OK() {
				return validationError(fv.Errors())
			}
			if err := a.backend(); err != nil {
				return err
			}

			ctx := cmd.Context()
			m := a.session(ctx)
			user, err := m.Register(ctx, in)
			if err != nil {
				return err
			}
			raw, _ := m.Credential(ctx)
			return a.printSession(cmd.OutOrStdout(), sessionOutput(user, raw), "Signed up")
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.FirstName, "first-name", "", "First name")
	f.StringVar(&in.LastName, "last-name", "", "Last name")
	f.StringVar(&in.Email, "email", "", "Email")
	f.StringVar(&in.Username, "username", "", "Username")
	f.StringVar(&in.Password, "password", "", "Password (prompted when empty)")
	f.IntVar(&in.Age, "age", 0, "Age")
	f.StringVar(&in.Gender, "gender", "", "Gender (Male or Female)")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.session(cmd.Context()).Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), okFmt("Signed out"))
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Long: `Display the user of the stored credential. Returns an error when no
active session exists; an expired credential is removed.

Examples:
  musicclouds whoami
  musicclouds whoami -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			m := a.session(ctx)
			raw, ok := a.activeCredential(ctx, m)
			user := m.User()
			if !ok || user == nil {
				return errNotSignedIn
			}
			return a.printSession(cmd.OutOrStdout(), sessionOutput(user, raw), "Signed in")
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether a session is active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			m := a.session(ctx)
			_, active := a.activeCredential(ctx, m)

			out := StatusOutput{Authenticated: active, Store: a.opts.storePath}
			if out.Store == "" {
				out.Store = "default"
			}
			if user := m.User(); active && user != nil {
				out.Username = user.Username
				out.Admin = user.IsAdmin()
			}
			return a.render(cmd.OutOrStdout(), out, func(tw io.Writer) error {
				if !out.Authenticated {
					fmt.Fprintf(tw, "Session:\t%s\n", warnFmt("not signed in"))
					return nil
				}
				fmt.Fprintf(tw, "Session:\t%s\n", okFmt("active"))
				fmt.Fprintf(tw, "User:\t%s\n", out.Username)
				fmt.Fprintf(tw, "Admin:\t%t\n", out.Admin)
				return nil
			})
		},
	}
}

// readSecret reads one line from the command's stdin, prompting on stderr.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
