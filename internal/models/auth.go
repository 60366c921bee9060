package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin      UserRole = "SUPER_ADMIN"
	RoleDepartmentAdmin UserRole = "DEPARTMENT_ADMIN"
)

// JWTClaims represents the JWT payload for admin access tokens.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	Name       string   `json:"name"`
	Role       UserRole `json:"role"`
	Department string   `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// Actor identifies the administrator performing an operation.
type Actor struct {
	ID         string
	Name       string
	Role       UserRole
	Department string
}

// GlobalView reports whether the actor sees every department.
func (a Actor) GlobalView() bool {
	return a.Role == RoleSuperAdmin
}

// DisplayName returns the name stamped on edits and decisions.
func (a Actor) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// ActorFromClaims converts validated token claims into an Actor.
func ActorFromClaims(claims *JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{ID: claims.UserID, Name: claims.Name, Role: claims.Role, Department: claims.Department}
}
