package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stemsi/stuteach-backend/internal/model"
)

// UserStore is implemented by repository.UserRepository and
// repository.MemoryUserRepository.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// AssignmentStore is implemented by repository.AssignmentRepository and
// repository.MemoryAssignmentRepository. A nil teacherID lists everything.
type AssignmentStore interface {
	Create(ctx context.Context, a *model.Assignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error)
	List(ctx context.Context, teacherID *uuid.UUID) ([]model.Assignment, error)
	Update(ctx context.Context, id uuid.UUID, p model.AssignmentPatch) (*model.Assignment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
