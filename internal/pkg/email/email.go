package email

import "strings"

// Normalize trims and lowercases an address. Emails are case-insensitive identity keys.
func Normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

// Domain returns the part after the last '@', or "" when there is none.
func Domain(addr string) string {
	i := strings.LastIndexByte(addr, '@')
	if i < 0 || i == len(addr)-1 {
		return ""
	}
	return addr[i+1:]
}

// AllowList is a set of institutional email domains. Matching is exact:
// "ufl.edu" does not admit "cs.ufl.edu" unless that domain is listed too.
type AllowList struct {
	domains map[string]struct{}
}

func NewAllowList(domains []string) AllowList {
	m := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.TrimPrefix(Normalize(d), "@")
		if d != "" {
			m[d] = struct{}{}
		}
	}
	return AllowList{domains: m}
}

// Allows reports whether addr belongs to one of the listed domains.
func (a AllowList) Allows(addr string) bool {
	d := Domain(Normalize(addr))
	if d == "" {
		return false
	}
	_, ok := a.domains[d]
	return ok
}
