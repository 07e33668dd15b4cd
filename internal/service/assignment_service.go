package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/stuteach-backend/internal/access"
	"github.com/stemsi/stuteach-backend/internal/cache"
	"github.com/stemsi/stuteach-backend/internal/config"
	"github.com/stemsi/stuteach-backend/internal/model"
	"github.com/stemsi/stuteach-backend/internal/repository"
	"github.com/stemsi/stuteach-backend/internal/validator"
)

const msgDeadlineNotFuture = "deadline must be in the future"

// AssignmentService is the only place that decides who may create, view,
// update or delete an assignment, and which assignments a caller sees.
type AssignmentService struct {
	store AssignmentStore
	cache cache.AssignmentCache
	log   zerolog.Logger
	now   func() time.Time
}

// NewAssignmentService creates a new AssignmentService. A nil cache
// disables list caching.
func NewAssignmentService(store AssignmentStore, c cache.AssignmentCache, log zerolog.Logger) *AssignmentService {
	if c == nil {
		c = cache.Nop{}
	}
	return &AssignmentService{
		store: store,
		cache: c,
		log:   log.With().Str("component", "assignment_service").Logger(),
		now:   time.Now,
	}
}

// Create publishes a new active assignment owned by the caller.
func (s *AssignmentService) Create(ctx context.Context, caller access.Caller, req model.CreateAssignmentRequest) (*model.Assignment, error) {
	if !access.CanCreate(caller.Role) {
		return nil, ErrTeacherOnly
	}

	fields := validator.Struct(&req)
	var deadline time.Time
	if _, bad := fields["deadline"]; !bad {
		d, err := model.ParseDeadline(req.Deadline)
		if err != nil {
			fields = addField(fields, "deadline", "deadline must be a valid ISO-8601 date")
		} else if !d.After(s.now()) {
			fields = addField(fields, "deadline", msgDeadlineNotFuture)
		}
		deadline = d
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	a := &model.Assignment{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Subject:     strings.TrimSpace(req.Subject),
		Deadline:    deadline,
		Status:      model.AssignmentStatusActive,
		TeacherID:   caller.UserID,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}
	s.invalidate(ctx, a.TeacherID)

	s.log.Info().
		Str("assignment_id", a.ID.String()).
		Str("teacher_id", a.TeacherID.String()).
		Msg("Assignment created")

	created, err := s.store.GetByID(ctx, a.ID)
	if err != nil {
		return nil, fmt.Errorf("reload assignment: %w", err)
	}
	return created, nil
}

// List returns the caller's visible set, newest first. Teachers see only
// their own assignments; students see all of them.
func (s *AssignmentService) List(ctx context.Context, caller access.Caller) ([]model.Assignment, error) {
	if !caller.Role.Valid() {
		return nil, ErrForbidden
	}

	owner := access.VisibleOwner(caller)
	key := listKey(owner)

	if list, ok := s.cache.GetList(ctx, key); ok {
		return list, nil
	}

	// The generation must be read before the store so a mutation that
	// lands during the read prevents the write-back.
	gen, cacheable := s.cache.Generation(ctx, key)

	list, err := s.store.List(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	if list == nil {
		list = []model.Assignment{}
	}

	if cacheable {
		s.cache.SetList(ctx, key, gen, list)
	}
	return list, nil
}

// GetByID returns one assignment. Unknown ids are NotFound for every role;
// teachers may only read their own.
func (s *AssignmentService) GetByID(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.Assignment, error) {
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanView(caller.Role, a.TeacherID, caller.UserID) {
		return nil, ErrNotOwner
	}
	return a, nil
}

// Update applies the provided fields. The role gate runs first, then
// existence, then ownership, then validation of the supplied fields.
func (s *AssignmentService) Update(ctx context.Context, caller access.Caller, id uuid.UUID, req model.UpdateAssignmentRequest) (*model.Assignment, error) {
	existing, err := s.authorizeMutation(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	patch, err := s.buildPatch(req)
	if err != nil {
		return nil, err
	}
	if patch.Empty() {
		return existing, nil
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	s.invalidate(ctx, existing.TeacherID)

	s.log.Info().Str("assignment_id", id.String()).Msg("Assignment updated")
	return updated, nil
}

// Delete removes an assignment permanently. Same checks, same order as
// Update.
func (s *AssignmentService) Delete(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	existing, err := s.authorizeMutation(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("delete assignment: %w", err)
	}
	s.invalidate(ctx, existing.TeacherID)

	s.log.Info().Str("assignment_id", id.String()).Msg("Assignment deleted")
	return nil
}

func (s *AssignmentService) authorizeMutation(ctx context.Context, caller access.Caller, id uuid.UUID) (*model.Assignment, error) {
	if !access.CanMutate(caller.Role) {
		return nil, ErrTeacherOnly
	}
	a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.IsOwner(a.TeacherID, caller.UserID) {
		return nil, ErrNotOwner
	}
	return a, nil
}

func (s *AssignmentService) load(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	a, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("load assignment: %w", err)
	}
	return a, nil
}

// buildPatch validates the supplied fields and converts them into a patch.
// Empty strings count as absent.
func (s *AssignmentService) buildPatch(req model.UpdateAssignmentRequest) (model.AssignmentPatch, error) {
	req.Title = presentOrNil(req.Title)
	req.Description = presentOrNil(req.Description)
	req.Subject = presentOrNil(req.Subject)
	req.Deadline = presentOrNil(req.Deadline)
	if req.Status != nil && *req.Status == "" {
		req.Status = nil
	}

	fields := validator.Struct(&req)

	var patch model.AssignmentPatch
	if _, bad := fields["deadline"]; !bad && req.Deadline != nil {
		d, err := model.ParseDeadline(*req.Deadline)
		switch {
		case err != nil:
			fields = addField(fields, "deadline", "deadline must be a valid ISO-8601 date")
		case !d.After(s.now()):
			fields = addField(fields, "deadline", msgDeadlineNotFuture)
		default:
			patch.Deadline = &d
		}
	}
	if len(fields) > 0 {
		return model.AssignmentPatch{}, &ValidationError{Fields: fields}
	}

	patch.Title = trimmed(req.Title)
	patch.Description = trimmed(req.Description)
	patch.Subject = trimmed(req.Subject)
	patch.Status = req.Status
	return patch, nil
}

// invalidate drops the owner's list and the all-assignments list.
func (s *AssignmentService) invalidate(ctx context.Context, teacherID uuid.UUID) {
	s.cache.Invalidate(ctx,
		config.CacheKey.TeacherAssignmentsKey(teacherID.String()),
		config.CacheKey.AllAssignmentsKey(),
	)
}

func listKey(owner *uuid.UUID) string {
	if owner == nil {
		return config.CacheKey.AllAssignmentsKey()
	}
	return config.CacheKey.TeacherAssignmentsKey(owner.String())
}

func presentOrNil(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}

func trimmed(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
