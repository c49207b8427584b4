// Package auth resolves the caller identity supplied by the external identity provider.
package auth

import "github.com/labstack/echo/v4"

const identityKey = "auth.identity"

// Identity is the verified caller. UserID is opaque to the rest of the service.
type Identity struct {
	UserID string
	Email  string
}

// WithIdentity attaches id to the request context
func WithIdentity(c echo.Context, id Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity attached by Middleware
func IdentityFrom(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityKey).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, false
	}
	return id, true
}
