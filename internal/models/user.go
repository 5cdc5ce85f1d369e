package models

type UserRole string

const (
	RoleRegular UserRole = "user"
	RoleAdmin   UserRole = "admin"
)

// AuthenticatedUser is the identity threaded from the JWT middleware into
// tool execution. No tool enforces it yet; it exists so future tools can
// scope results to the caller.
type AuthenticatedUser struct {
	ID   int64    `json:"id"`
	Role UserRole `json:"role"`
}
