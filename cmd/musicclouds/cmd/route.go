package cmd

import (
	"fmt"
	"io"
	"strings"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
	httpx "github.com/musicclouds/web/internal/http"
	"github.com/musicclouds/web/internal/observability/metrics"
	"github.com/musicclouds/web/internal/service"
	"github.com/spf13/cobra"
)

// RouteDecisionOutput represents the JSON/YAML output for route check.
type RouteDecisionOutput struct {
	Path     string `json:"path"               yaml:"path"`
	Outcome  string `json:"outcome"            yaml:"outcome"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Role     string `json:"role,omitempty"     yaml:"role,omitempty"`
	Guarded  bool   `json:"guarded"            yaml:"guarded"`
}

// RouteOutput represents one row of route list.
type RouteOutput struct {
	Path      string   `json:"path"                       yaml:"path"`
	Title     string   `json:"title"                      yaml:"title"`
	Guarded   bool     `json:"guarded"                    yaml:"guarded"`
	Roles     []string `json:"roles,omitempty"            yaml:"roles,omitempty"`
	Authed    string   `json:"authenticated_to,omitempty" yaml:"authenticated_to,omitempty"`
	Protected []string `json:"protected,omitempty"        yaml:"protected,omitempty"`
}

func newRouteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "route",
		Short: "Inspect web client route access",
	}
	cmd.AddCommand(newRouteListCmd(a), newRouteCheckCmd(a))
	return cmd
}

func newRouteListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the web client's routes and their policies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			routes := httpx.DefaultRoutes()
			out := make([]RouteOutput, 0, len(routes))
			for _, r := range routes {
				out = append(out, RouteOutput{
					Path:      r.Path,
					Title:     r.Title,
					Guarded:   r.Guarded,
					Roles:     r.Policy.AuthorizedRoles,
					Authed:    r.Policy.NonAuthenticatedPath,
					Protected: r.Policy.ProtectedPaths,
				})
			}
			return a.render(cmd.OutOrStdout(), out, func(tw io.Writer) error {
				fmt.Fprintln(tw, "PATH\tTITLE\tGUARDED\tROLES\tSIGNED-IN REDIRECT")
				for _, r := range out {
					fmt.Fprintf(tw, "%s\t%s\t%t\t%s\t%s\n", r.Path, r.Title, r.Guarded, strings.Join(r.Roles, ","), r.Authed)
				}
				return nil
			})
		},
	}
}

func newRouteCheckCmd(a *app) *cobra.Command {
	var (
		protected   []string
		roles       []string
		nonAuthPath string
	)
	cmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Decide what the web client would show the signed-in user at path",
		Long: `Run the route guard for path with the stored credential.

Without policy flags the web client's route table is used. Passing any of
--protect, --role or --non-auth-path checks an ad-hoc policy instead.

Examples:
  musicclouds route check /users-management
  musicclouds route check /reports --protect /reports --role ADMIN -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			policy, guarded, known := routePolicy(path)
			if cmd.Flags().Changed("protect") || cmd.Flags().Changed("role") || cmd.Flags().Changed("non-auth-path") {
				policy = domainauth.RoutePolicy{
					ProtectedPaths:       protected,
					AuthorizedRoles:      roles,
					NonAuthenticatedPath: nonAuthPath,
				}
				guarded, known = true, true
			}

			ctx := cmd.Context()
			raw, _ := a.activeCredential(ctx, a.session(ctx))

			var d domainauth.Decision
			switch {
			case !known:
				d = domainauth.Decision{Outcome: domainauth.OutcomeNotFound}
			case !guarded:
				d = domainauth.Decision{Outcome: domainauth.OutcomeRender}
			default:
				d = service.NewRouteGuard().Decide(raw, path, policy)
				metrics.EmitRouteDecision(a.metrics, path, d)
			}

			out := RouteDecisionOutput{
				Path:     path,
				Outcome:  string(d.Outcome),
				Location: d.Location,
				Role:     string(d.Role),
				Guarded:  guarded,
			}
			return a.render(cmd.OutOrStdout(), out, func(tw io.Writer) error {
				fmt.Fprintf(tw, "Path:\t%s\n", out.Path)
				fmt.Fprintf(tw, "Outcome:\t%s\n", outcomeLabel(d))
				if out.Role != "" {
					fmt.Fprintf(tw, "Role:\t%s\n", out.Role)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&protected, "protect", nil, "Protected paths of an ad-hoc policy")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Authorized role names of an ad-hoc policy (ADMIN)")
	cmd.Flags().StringVar(&nonAuthPath, "non-auth-path", "", "Where signed-in users are sent from protected paths")
	return cmd
}

// routePolicy looks path up in the web client's route table.
func routePolicy(path string) (policy domainauth.RoutePolicy, guarded, known bool) {
	for _, r := range httpx.DefaultRoutes() {
		if r.Path == path {
			return r.Policy, r.Guarded, true
		}
	}
	return domainauth.RoutePolicy{}, false, false
}

func outcomeLabel(d domainauth.Decision) string {
	switch d.Outcome {
	case domainauth.OutcomeRender:
		return okFmt("render")
	case domainauth.OutcomeRedirect:
		return warnFmt("redirect") + " -> " + d.Location
	case domainauth.OutcomeSignIn:
		return warnFmt("sign in")
	default:
		return errFmt("not found")
	}
}
