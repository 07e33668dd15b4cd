package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/stuteach-backend/internal/model"
)

// MemoryDB is a process-local store used by the "memory" driver and tests.
type MemoryDB struct {
	mu          sync.RWMutex
	users       map[uuid.UUID]*model.User
	assignments map[uuid.UUID]*memAssignment
	seq         uint64
	now         func() time.Time
}

type memAssignment struct {
	model.Assignment
	seq uint64
}

// NewMemoryDB creates an empty MemoryDB.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users:       make(map[uuid.UUID]*model.User),
		assignments: make(map[uuid.UUID]*memAssignment),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// MemoryUserRepository is the in-memory counterpart of UserRepository.
type MemoryUserRepository struct {
	db *MemoryDB
}

// NewMemoryUserRepository creates a MemoryUserRepository over db.
func NewMemoryUserRepository(db *MemoryDB) *MemoryUserRepository {
	return &MemoryUserRepository{db: db}
}

func (r *MemoryUserRepository) Create(_ context.Context, u *model.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, existing := range r.db.users {
		if existing.Email == u.Email {
			return ErrDuplicateEmail
		}
	}

	now := r.db.now()
	u.ID = uuid.New()
	u.CreatedAt, u.UpdatedAt = now, now
	stored := *u
	r.db.users[u.ID] = &stored
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if u, ok := r.db.users[id]; ok {
		out := *u
		return &out, nil
	}
	return nil, ErrNotFound
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, u := range r.db.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// MemoryAssignmentRepository is the in-memory counterpart of AssignmentRepository.
type MemoryAssignmentRepository struct {
	db *MemoryDB
}

// NewMemoryAssignmentRepository creates a MemoryAssignmentRepository over db.
func NewMemoryAssignmentRepository(db *MemoryDB) *MemoryAssignmentRepository {
	return &MemoryAssignmentRepository{db: db}
}

func (r *MemoryAssignmentRepository) Create(_ context.Context, a *model.Assignment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	now := r.db.now()
	r.db.seq++
	a.ID = uuid.New()
	a.CreatedAt, a.UpdatedAt = now, now

	stored := *a
	stored.Teacher = nil
	r.db.assignments[a.ID] = &memAssignment{Assignment: stored, seq: r.db.seq}
	return nil
}

func (r *MemoryAssignmentRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Assignment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stored, ok := r.db.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.populate(stored), nil
}

func (r *MemoryAssignmentRepository) List(_ context.Context, teacherID *uuid.UUID) ([]model.Assignment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	matched := make([]*memAssignment, 0, len(r.db.assignments))
	for _, a := range r.db.assignments {
		if teacherID != nil && a.TeacherID != *teacherID {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].seq > matched[j].seq
	})

	out := make([]model.Assignment, 0, len(matched))
	for _, a := range matched {
		out = append(out, *r.populate(a))
	}
	return out, nil
}

func (r *MemoryAssignmentRepository) Update(_ context.Context, id uuid.UUID, p model.AssignmentPatch) (*model.Assignment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.assignments[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Apply(&stored.Assignment)
	stored.UpdatedAt = r.db.now()
	return r.populate(stored), nil
}

func (r *MemoryAssignmentRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.assignments[id]; !ok {
		return ErrNotFound
	}
	delete(r.db.assignments, id)
	return nil
}

// populate copies a stored assignment and joins the owner summary.
// Callers must hold db.mu.
func (r *MemoryAssignmentRepository) populate(stored *memAssignment) *model.Assignment {
	out := stored.Assignment
	if u, ok := r.db.users[out.TeacherID]; ok {
		out.Teacher = u.Summary()
	}
	return &out
}
