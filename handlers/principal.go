package handlers

import (
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

const (
	RoleUser  = "user"
	RoleHost  = "host"
	RoleAdmin = "admin"
)

// Principal is the caller's identity, resolved once per request from the
// auth record instead of being re-read in every handler.
type Principal struct {
	Email string
	Role  string
}

// PrincipalFrom reads the caller out of the request. Requests without an
// auth record get a zero Principal and ok=false.
func PrincipalFrom(e *core.RequestEvent) (Principal, bool) {
	if e.Auth == nil {
		return Principal{}, false
	}
	role := e.Auth.GetString("role")
	if role == "" {
		role = RoleUser
	}
	return Principal{Email: e.Auth.Email(), Role: role}, true
}

// RequireRole resolves the Principal and rejects callers below the wanted
// role. Admin passes every check; host passes host checks.
func RequireRole(e *core.RequestEvent, role string) (Principal, error) {
	p, ok := PrincipalFrom(e)
	if !ok {
		return Principal{}, apis.NewUnauthorizedError("Authentication required", nil)
	}
	if p.Role == RoleAdmin {
		return p, nil
	}
	if role == RoleHost && p.Role == RoleHost {
		return p, nil
	}
	if role == RoleUser {
		return p, nil
	}
	return Principal{}, apis.NewForbiddenError("Access denied", nil)
}
