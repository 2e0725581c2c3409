// Package identity resolves the requester behind an HTTP request. Session
// issuance and password handling live in the fronting auth service; this side
// only consumes what it asserts.
package identity

import "net/http"

const RoleAdmin = "admin"

type User struct {
	Name string
	Unit string
	Role string
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Provider turns an incoming request into the authenticated user, or reports
// that there is none.
type Provider interface {
	FromRequest(r *http.Request) (User, bool)
}

// HeaderProvider trusts identity headers stamped by the auth proxy in front
// of this service.
type HeaderProvider struct {
	NameHeader string
	UnitHeader string
	RoleHeader string
}

func NewHeaderProvider() *HeaderProvider {
	return &HeaderProvider{
		NameHeader: "X-User",
		UnitHeader: "X-Unit",
		RoleHeader: "X-Role",
	}
}

func (p *HeaderProvider) FromRequest(r *http.Request) (User, bool) {
	name := r.Header.Get(p.NameHeader)
	if name == "" {
		return User{}, false
	}
	return User{
		Name: name,
		Unit: r.Header.Get(p.UnitHeader),
		Role: r.Header.Get(p.RoleHeader),
	}, true
}
