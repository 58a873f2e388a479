// Package gate decides, for a page request, whether the caller may proceed or
// must be sent elsewhere to finish signing up. It reads only the session
// claims carried by the request and never touches the store.
package gate

import (
	"path"
	"strings"
)

// State is what the gate knows about the caller. The zero value is an
// unauthenticated visitor.
type State struct {
	Authenticated    bool
	UFEmailVerified  bool
	ProfileCompleted bool
}

type Action int

const (
	Allow Action = iota
	Redirect
)

func (a Action) String() string {
	if a == Redirect {
		return "redirect"
	}
	return "allow"
}

// Decision is the outcome of Evaluate. Rule names the table entry that matched.
type Decision struct {
	Action Action
	Target string
	Rule   string
}

type Config struct {
	PublicPaths         []string // exact matches
	ExemptPrefixes      []string // plain string prefixes
	RestrictedPaths     []string // the path and everything below it
	VerifyPath          string
	CompleteProfilePath string
	LandingPath         string
}

type rule struct {
	name   string
	match  func(s State, p string) bool
	target string
}

// Gate holds the ordered decision table. It is safe for concurrent use.
type Gate struct {
	public   map[string]struct{}
	prefixes []string
	rules    []rule
}

func New(cfg Config) *Gate {
	g := &Gate{public: make(map[string]struct{}, len(cfg.PublicPaths))}
	for _, p := range cfg.PublicPaths {
		g.public[clean(p)] = struct{}{}
	}
	for _, p := range cfg.ExemptPrefixes {
		if p != "" {
			g.prefixes = append(g.prefixes, p)
		}
	}

	verify := clean(cfg.VerifyPath)
	complete := clean(cfg.CompleteProfilePath)
	landing := clean(cfg.LandingPath)
	restricted := make([]string, 0, len(cfg.RestrictedPaths))
	for _, p := range cfg.RestrictedPaths {
		restricted = append(restricted, clean(p))
	}

	// First match wins.
	g.rules = []rule{
		{
			name:   "unauthenticated",
			match:  func(s State, _ string) bool { return !s.Authenticated },
			target: verify,
		},
		{
			name:   "email-unverified",
			match:  func(s State, p string) bool { return !s.UFEmailVerified && p != verify },
			target: verify,
		},
		{
			name:   "profile-incomplete",
			match:  func(s State, p string) bool { return s.UFEmailVerified && !s.ProfileCompleted && !under(p, complete) },
			target: complete,
		},
		{
			name:   "profile-already-complete",
			match:  func(s State, p string) bool { return s.UFEmailVerified && s.ProfileCompleted && under(p, complete) },
			target: landing,
		},
		{
			name: "restricted-action",
			match: func(s State, p string) bool {
				if s.UFEmailVerified {
					return false
				}
				for _, r := range restricted {
					if under(p, r) {
						return true
					}
				}
				return false
			},
			target: verify,
		},
	}
	return g
}

// Exempt reports whether p bypasses the gate entirely.
func (g *Gate) Exempt(p string) bool {
	p = clean(p)
	if _, ok := g.public[p]; ok {
		return true
	}
	for _, prefix := range g.prefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Evaluate runs the decision table for a request to p.
func (g *Gate) Evaluate(s State, p string) Decision {
	p = clean(p)
	if g.Exempt(p) {
		return Decision{Action: Allow, Rule: "exempt"}
	}
	for _, r := range g.rules {
		if r.match(s, p) {
			if r.target == p {
				// Never redirect a page to itself.
				return Decision{Action: Allow, Rule: r.name}
			}
			return Decision{Action: Redirect, Target: r.target, Rule: r.name}
		}
	}
	return Decision{Action: Allow, Rule: "default"}
}

func clean(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

// under reports whether p is base or a path below it.
func under(p, base string) bool {
	if base == "/" {
		return true
	}
	return p == base || strings.HasPrefix(p, base+"/")
}
