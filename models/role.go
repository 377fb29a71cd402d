package models

import "strings"

// Role is the closed set of caller roles. Stored values may arrive in any
// case; ParseRole is the only place that normalizes them.
type Role string

const (
	RolePublic    Role = "public"
	RoleStaff     Role = "staff"
	RoleManager   Role = "manager"
	RoleLogistics Role = "logistics"
	RoleDriver    Role = "driver"
	RoleAdmin     Role = "admin"
	RoleITSupport Role = "it_support"
)

// ParseRole normalizes a raw role string to a known Role.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RolePublic:
		return RolePublic, true
	case RoleStaff:
		return RoleStaff, true
	case RoleManager:
		return RoleManager, true
	case RoleLogistics:
		return RoleLogistics, true
	case RoleDriver:
		return RoleDriver, true
	case RoleAdmin:
		return RoleAdmin, true
	case RoleITSupport:
		return RoleITSupport, true
	}
	return "", false
}

// IsAny reports whether r is one of the given roles.
func (r Role) IsAny(roles ...Role) bool {
	for _, candidate := range roles {
		if r == candidate {
			return true
		}
	}
	return false
}
