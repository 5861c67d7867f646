package services

import "github.com/MontelAle/participium-sub002/domain"

// Decision is the outcome of an endpoint authorization check.
type Decision struct {
	Allowed bool
	// Reason is set on denial. It is for logs only; the boundary collapses
	// every denial into the same client-visible forbidden signal.
	Reason error
}

// Authorize decides whether a principal with the given role may call an
// endpoint declaring requiredRoles. An empty requirement means the endpoint
// is unrestricted, which is an explicit policy choice distinct from
// deny-all. Pure function: no I/O, deterministic in its inputs.
func Authorize(requiredRoles []string, principal *domain.Principal) Decision {
	if len(requiredRoles) == 0 {
		return Decision{Allowed: true}
	}
	if principal == nil || principal.Role == nil {
		return Decision{Reason: domain.ErrNoPrincipalOrRole}
	}
	for _, name := range requiredRoles {
		if principal.Role.Name == name {
			return Decision{Allowed: true}
		}
	}
	return Decision{Reason: domain.ErrRoleNotPermitted}
}
