package domain

import (
	"strings"
)

type Role string

const (
	RoleCitizen    Role = "citizen"
	RoleStaff      Role = "staff"
	RoleSupervisor Role = "supervisor"
)

func AllRoles() []Role {
	return []Role{RoleCitizen, RoleStaff, RoleSupervisor}
}

// ParseRole normalizes a claimed role to lowercase and rejects anything
// outside the closed set.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleCitizen, RoleStaff, RoleSupervisor:
		return r, nil
	}
	return "", ErrInvalidRole.WithDetails(map[string]any{"allowedRoles": AllRoles()})
}

func (r Role) IsOfficial() bool {
	switch r {
	case RoleStaff, RoleSupervisor:
		return true
	case RoleCitizen:
		return false
	}
	return false
}

func (r Role) ActorKind() ActorKind {
	switch r {
	case RoleCitizen:
		return ActorCitizen
	case RoleStaff:
		return ActorStaff
	case RoleSupervisor:
		return ActorSupervisor
	}
	return ActorGuest
}

// ActorKind is who performed a recorded action. It extends Role with the
// unauthenticated guest and the background system.
type ActorKind string

const (
	ActorCitizen    ActorKind = "citizen"
	ActorStaff      ActorKind = "staff"
	ActorSupervisor ActorKind = "supervisor"
	ActorGuest      ActorKind = "guest"
	ActorSystem     ActorKind = "system"
)
