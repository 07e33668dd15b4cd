package model

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentStatus enumerates the declared states of an assignment.
// Nothing transitions between them automatically.
type AssignmentStatus string

const (
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

// Valid reports whether s is one of the declared states.
func (s AssignmentStatus) Valid() bool {
	switch s {
	case AssignmentStatusActive, AssignmentStatusCompleted, AssignmentStatusCancelled:
		return true
	}
	return false
}

// TeacherSummary is the owner view populated on every returned assignment.
type TeacherSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Assignment is a piece of work published by exactly one teacher.
type Assignment struct {
	ID          uuid.UUID        `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Subject     string           `json:"subject"`
	Deadline    time.Time        `json:"deadline"`
	Status      AssignmentStatus `json:"status"`
	TeacherID   uuid.UUID        `json:"teacher_id"`
	Teacher     *TeacherSummary  `json:"teacher,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreateAssignmentRequest is the payload for creating an assignment.
// Deadline stays a string so every accepted ISO-8601 shape can be checked.
type CreateAssignmentRequest struct {
	Title       string `json:"title" binding:"notblank,max=255"`
	Description string `json:"description" binding:"notblank"`
	Subject     string `json:"subject" binding:"notblank,max=100"`
	Deadline    string `json:"deadline" binding:"required,isodate"`
}

// UpdateAssignmentRequest is the partial payload for updating an assignment.
// Nil and empty values mean "not provided".
type UpdateAssignmentRequest struct {
	Title       *string           `json:"title" binding:"omitempty,notblank,max=255"`
	Description *string           `json:"description" binding:"omitempty,notblank"`
	Subject     *string           `json:"subject" binding:"omitempty,notblank,max=100"`
	Deadline    *string           `json:"deadline" binding:"omitempty,isodate"`
	Status      *AssignmentStatus `json:"status" binding:"omitempty,oneof=active completed cancelled"`
}

// AssignmentPatch is a validated partial update handed to the store.
type AssignmentPatch struct {
	Title       *string
	Description *string
	Subject     *string
	Deadline    *time.Time
	Status      *AssignmentStatus
}

// Empty reports whether the patch changes nothing.
func (p AssignmentPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Subject == nil &&
		p.Deadline == nil && p.Status == nil
}

// Apply merges the patch into a.
func (p AssignmentPatch) Apply(a *Assignment) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Subject != nil {
		a.Subject = *p.Subject
	}
	if p.Deadline != nil {
		a.Deadline = *p.Deadline
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
}
