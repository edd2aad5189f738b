// Package gateway maps logical OSINT lookup operations onto the upstream
// endpoint family. Each operation is a declarative table entry naming its
// route, upstream path and parameter contract; the dispatcher itself has no
// per-operation branching.
package gateway

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrMissingParam marks a lookup rejected before dispatch because a required
// query parameter was absent or empty.
var ErrMissingParam = errors.New("missing required parameter")

// Operation describes one logical lookup.
type Operation struct {
	// Name is the route suffix under /osint.
	Name string
	// Path is the upstream sub-path.
	Path string
	// Required parameters must each be present and non-empty.
	Required []string
	// AtLeastOne lists alternatives of which one or more must be present.
	AtLeastOne []string
	// Optional parameters are forwarded only when non-empty.
	Optional []string
	// Defaults are applied for optional parameters left absent.
	Defaults map[string]string
	// Quota marks operations that consume a search slot.
	Quota bool
}

// Operations is the full lookup catalogue. Quota applies to the costly
// breach/stealer searches only; everything else is metered by transport rate
// limits alone.
var Operations = []Operation{
	{Name: "ip-info", Path: "/ip-info", Required: []string{"ip"}},
	{Name: "subdomain", Path: "/extract-subdomain", Required: []string{"domain"}},
	{Name: "holehe", Path: "/holehe", Required: []string{"email"}},
	{Name: "ghunt", Path: "/ghunt", Required: []string{"email"}},
	{Name: "steam", Path: "/steam", Required: []string{"steam_id"}},
	{Name: "xbox", Path: "/xbox", Required: []string{"xbl_id"}},
	{Name: "roblox", Path: "/roblox-userinfo", AtLeastOne: []string{"user_id", "username"}},
	{Name: "minecraft", Path: "/mc-history", Required: []string{"username"}},
	{Name: "discord/user", Path: "/discord-userinfo", Required: []string{"user_id"}},
	{Name: "discord/history", Path: "/username-history", Required: []string{"user_id"}},
	{Name: "discord/roblox", Path: "/discord-to-roblox", Required: []string{"user_id"}},
	{
		Name: "search/breach", Path: "/search-breach", Quota: true,
		Required: []string{"q"},
		Optional: []string{"cursor", "dbnames"},
	},
	{
		Name: "search/stealer", Path: "/search-stealer", Quota: true,
		Required: []string{"query"},
		Optional: []string{"type"},
		Defaults: map[string]string{"type": "email"},
	},
	{
		Name: "search/stealer-v2", Path: "/v2/stealer/search", Quota: true,
		Required: []string{"query"},
		Optional: []string{"type", "page"},
		Defaults: map[string]string{"type": "email", "page": "1"},
	},
}

// Find returns the operation registered under name.
func Find(name string) (Operation, bool) {
	for _, op := range Operations {
		if op.Name == name {
			return op, true
		}
	}
	return Operation{}, false
}

// BuildQuery validates the inbound query against the operation's parameter
// contract and returns exactly the parameters to forward upstream. Absent
// optional parameters are omitted rather than sent empty; defaults fill in
// where declared.
func (op Operation) BuildQuery(in url.Values) (url.Values, error) {
	out := url.Values{}

	for _, p := range op.Required {
		v := strings.TrimSpace(in.Get(p))
		if v == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingParam, p)
		}
		out.Set(p, v)
	}

	if len(op.AtLeastOne) > 0 {
		found := false
		for _, p := range op.AtLeastOne {
			if v := strings.TrimSpace(in.Get(p)); v != "" {
				out.Set(p, v)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: one of %s", ErrMissingParam, strings.Join(op.AtLeastOne, ", "))
		}
	}

	for _, p := range op.Optional {
		if v := strings.TrimSpace(in.Get(p)); v != "" {
			out.Set(p, v)
		} else if d, ok := op.Defaults[p]; ok {
			out.Set(p, d)
		}
	}

	return out, nil
}
