package service

import (
	"context"
	"fmt"
	"strings"

	domainauth "github.com/musicclouds/web/internal/domain/auth"
)

// DefaultNavLinks is the sidebar shown by the web client and the CLI.
func DefaultNavLinks() []domainauth.NavLink {
	return []domainauth.NavLink{
		{Name: "Discover", To: "/discover"},
		{Name: "Sign in", To: "/sign-in", GuestOnly: true},
		{Name: "Users management", To: "/users-management", AdminOnly: true},
		{Name: "My Tracks", To: "/my-tracks", RequiresSession: true},
		{Name: "My Friends", To: "/my-friends", RequiresSession: true},
		{Name: "Podcasts", To: "/podcasts"},
		{Name: "Around You", To: "/around-you"},
		{Name: "Top Artists", To: "/top-artists"},
		{Name: "Top Charts", To: "/top-charts"},
		{Name: "Logout", To: "/sign-in", RequiresSession: true, Logout: true},
	}
}

// Logouter is the part of SessionManager a logout selection needs.
type Logouter interface {
	Logout(ctx context.Context)
}

// NavigationPresenter filters navigation links for the current session.
type NavigationPresenter struct {
	links []domainauth.NavLink
}

// NewNavigationPresenter returns a presenter over links, or DefaultNavLinks when links is empty.
func NewNavigationPresenter(links []domainauth.NavLink) *NavigationPresenter {
	if len(links) == 0 {
		links = DefaultNavLinks()
	}
	return &NavigationPresenter{links: append([]domainauth.NavLink(nil), links...)}
}

// Links returns the entries visible to user (nil means no session), in table order.
func (p *NavigationPresenter) Links(user *domainauth.User) []domainauth.NavLink {
	visible := make([]domainauth.NavLink, 0, len(p.links))
	for _, link := range p.links {
		if hidden(link, user) {
			continue
		}
		visible = append(visible, link)
	}
	return visible
}

func hidden(link domainauth.NavLink, user *domainauth.User) bool {
	switch {
	case link.AdminOnly && !user.IsAdmin():
		return true
	case link.GuestOnly && user != nil:
		return true
	case (link.RequiresSession || link.Logout) && user == nil:
		return true
	default:
		return false
	}
}

// UnknownLinkError is returned by Select for a name that is not visible to the session.
type UnknownLinkError struct {
	Name string
}

func (e *UnknownLinkError) Error() string {
	return fmt.Sprintf("unknown navigation entry %q", e.Name)
}

// Select resolves a visible entry by name (case-insensitive) and returns its
// target. Selecting a logout entry ends the session before returning.
func (p *NavigationPresenter) Select(ctx context.Context, name string, session *SessionManager) (string, error) {
	var (
		user *domainauth.User
		l    Logouter
	)
	if session != nil {
		user, l = session.User(), session
	}
	return p.selectFor(ctx, name, user, l)
}

func (p *NavigationPresenter) selectFor(ctx context.Context, name string, user *domainauth.User, l Logouter) (string, error) {
	for _, link := range p.Links(user) {
		if !strings.EqualFold(link.Name, name) && !strings.EqualFold(Slug(link.Name), name) {
			continue
		}
		if link.Logout && l != nil {
			l.Logout(ctx)
		}
		return link.To, nil
	}
	return "", &UnknownLinkError{Name: name}
}

// Slug returns the URL form of a link name ("Users management" -> "users-management").
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
