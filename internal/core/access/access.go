// Package access decides which part of the portal an identity may see.
package access

import "github.com/brandpreneur/client-portal/internal/core/domain"

// Role is the classification of a visitor.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleClient    Role = "client"
	RoleAdmin     Role = "admin"
)

// Policy answers whether an identity holds admin capability.
type Policy func(domain.Identity) bool

// AdminEmail grants admin to the identity whose email equals addr exactly.
// Comparison is case-sensitive; an empty addr grants nobody.
func AdminEmail(addr string) Policy {
	return func(id domain.Identity) bool {
		return addr != "" && id.Email == addr
	}
}

// Router classifies identities using an injected policy.
type Router struct {
	isAdmin Policy
}

func NewRouter(isAdmin Policy) Router {
	if isAdmin == nil {
		isAdmin = func(domain.Identity) bool { return false }
	}
	return Router{isAdmin: isAdmin}
}

// Classify is a pure function of the identity.
func (r Router) Classify(id *domain.Identity) Role {
	if id == nil {
		return RoleAnonymous
	}
	if r.isAdmin(*id) {
		return RoleAdmin
	}
	return RoleClient
}
