package model

import "strings"

// Role is the closed set of account roles.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ParseRole normalizes raw into a Role. The boolean is false for anything
// outside the closed set.
func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	return r, r.Valid()
}

// Valid reports whether r is teacher or student.
func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

func (r Role) String() string {
	return string(r)
}
