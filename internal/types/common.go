package types

import (
	uuid "github.com/gofrs/uuid"
)

// HTTP Header Constants
const (
	HeaderUID           = "uid"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
)

// Authentication Constants
const (
	BearerPrefix = "Bearer "

	// UserCtxName is the fiber Locals key holding the verified UserContext
	UserCtxName = "user"

	// DefaultClaimKey is the JWT claim that carries the user payload
	DefaultClaimKey = "claim"
)

// UserContext is the identity resolved from a verified credential.
// Search only consumes UserID as the scoping identity.
type UserContext struct {
	UserID      uuid.UUID `json:"uid"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	SystemRole  string    `json:"role"`
}
