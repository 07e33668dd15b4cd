// Package access holds the assignment access rules as pure functions over
// (role, owner, caller). Nothing here touches storage.
package access

import (
	"github.com/google/uuid"
	"github.com/stemsi/stuteach-backend/internal/model"
)

// Caller is the identity resolved from a request credential.
type Caller struct {
	UserID uuid.UUID
	Role   model.Role
}

// IsTeacher reports whether the caller holds the teacher role.
func (c Caller) IsTeacher() bool {
	return c.Role == model.RoleTeacher
}

// CanCreate reports whether role may create assignments.
func CanCreate(role model.Role) bool {
	return role == model.RoleTeacher
}

// CanMutate is the role gate for update and delete. Ownership is checked
// separately with IsOwner once the assignment is known to exist.
func CanMutate(role model.Role) bool {
	return role == model.RoleTeacher
}

// IsOwner reports whether caller owns the assignment.
func IsOwner(ownerID, callerID uuid.UUID) bool {
	return ownerID != uuid.Nil && ownerID == callerID
}

// CanView reports whether role/callerID may read an assignment owned by
// ownerID. Students read everything; teachers read only their own.
func CanView(role model.Role, ownerID, callerID uuid.UUID) bool {
	switch role {
	case model.RoleStudent:
		return true
	case model.RoleTeacher:
		return IsOwner(ownerID, callerID)
	}
	return false
}

// VisibleOwner returns the owner filter for a List call. A nil result means
// the caller sees every assignment.
func VisibleOwner(c Caller) *uuid.UUID {
	if c.Role == model.RoleTeacher {
		id := c.UserID
		return &id
	}
	return nil
}
