package model

import (
	"strconv"
	"strings"
)

// Role ids match the auth service's roleId values.
type Role int

const (
	RoleNone    Role = 0
	RoleAdmin   Role = 1
	RolePatient Role = 2
	RoleDoctor  Role = 3
)

func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RolePatient:
		return "Patient"
	case RoleDoctor:
		return "Doctor"
	default:
		return "None"
	}
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RolePatient || r == RoleDoctor
}

// ID is the string form persisted under the roleId key.
func (r Role) ID() string {
	return strconv.Itoa(int(r))
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	*r = ParseRole(string(text))
	return nil
}

// RoleFromID maps a numeric role id. Unknown ids yield RoleNone.
func RoleFromID(id string) Role {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return RoleNone
	}
	if r := Role(n); r.Valid() {
		return r
	}
	return RoleNone
}

// ParseRole accepts either a role name or a numeric id.
func ParseRole(s string) Role {
	switch strings.TrimSpace(s) {
	case "Admin":
		return RoleAdmin
	case "Patient":
		return RolePatient
	case "Doctor":
		return RoleDoctor
	}
	return RoleFromID(s)
}
