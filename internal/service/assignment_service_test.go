package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/stuteach-backend/internal/access"
	"github.com/stemsi/stuteach-backend/internal/cache"
	"github.com/stemsi/stuteach-backend/internal/config"
	"github.com/stemsi/stuteach-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate_StudentForbidden(t *testing.T) {
	f := newFixture(t, nil)
	student := f.user(t, "sam", model.RoleStudent)

	_, err := f.svc.Create(context.Background(), student, model.CreateAssignmentRequest{
		Title: "HW1", Description: "d", Subject: "Math", Deadline: futureDeadline,
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, err, ErrTeacherOnly)
}

func TestCreate_TeacherOwnsActiveAssignment(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.user(t, "tina", model.RoleTeacher)

	a, err := f.svc.Create(context.Background(), teacher, model.CreateAssignmentRequest{
		Title: "  HW1  ", Description: "Read chapter 3", Subject: "Math", Deadline: "2099-01-01",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, "HW1", a.Title)
	assert.Equal(t, model.AssignmentStatusActive, a.Status)
	assert.Equal(t, teacher.UserID, a.TeacherID)
	require.NotNil(t, a.Teacher)
	assert.Equal(t, "tina", a.Teacher.Name)
	assert.Equal(t, time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC), a.Deadline)
}

func TestCreate_ReportsEveryInvalidField(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.user(t, "tina", model.RoleTeacher)

	_, err := f.svc.Create(context.Background(), teacher, model.CreateAssignmentRequest{
		Title: "   ", Description: "", Subject: "Math", Deadline: "next tuesday",
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "title")
	assert.Contains(t, ve.Fields, "description")
	assert.Contains(t, ve.Fields, "deadline")
	assert.NotContains(t, ve.Fields, "subject")
}

func TestCreate_DeadlineMustBeFuture(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.user(t, "tina", model.RoleTeacher)

	_, err := f.svc.Create(context.Background(), teacher, model.CreateAssignmentRequest{
		Title: "HW1", Description: "d", Subject: "Math", Deadline: "2000-01-01T00:00:00Z",
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, msgDeadlineNotFuture, ve.Fields["deadline"])
}

func TestList_ScopedByRole(t *testing.T) {
	f := newFixture(t, nil)
	t1 := f.user(t, "t1", model.RoleTeacher)
	t2 := f.user(t, "t2", model.RoleTeacher)
	student := f.user(t, "s1", model.RoleStudent)

	a1 := f.create(t, t1, "HW1")
	a2 := f.create(t, t2, "HW2")

	own, err := f.svc.List(context.Background(), t1)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, a1.ID, own[0].ID)

	all, err := f.svc.List(context.Background(), student)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, a2.ID, all[0].ID, "newest first")
	assert.Equal(t, a1.ID, all[1].ID)
}

func TestList_EmptyIsNotNil(t *testing.T) {
	f := newFixture(t, nil)
	teacher := f.user(t, "tina", model.RoleTeacher)

	list, err := f.svc.List(context.Background(), teacher)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetByID(t *testing.T) {
	f := newFixture(t, nil)
	t1 := f.user(t, "t1", model.RoleTeacher)
	t2 := f.user(t, "t2", model.RoleTeacher)
	student := f.user(t, "s1", model.RoleStudent)
	a := f.create(t, t1, "HW1")
	ctx := context.Background()

	got, err := f.svc.GetByID(ctx, t1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.svc.GetByID(ctx, student, a.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetByID(ctx, t2, a.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	for _, caller := range []access.Caller{t1, t2, student} {
		_, err = f.svc.GetByID(ctx, caller, uuid.New())
		assert.ErrorIs(t, err, ErrAssignmentNotFound)
	}
}

func TestUpdate_ChecksInOrder(t *testing.T) {
	f := newFixture(t, nil)
	t1 := f.user(t, "t1", model.RoleTeacher)
	t2 := f.user(t, "t2", model.RoleTeacher)
	student := f.user(t, "s1", model.RoleStudent)
	a := f.create(t, t1, "HW1")
	ctx := context.Background()

	_, err := f.svc.Update(ctx, student, uuid.New(), model.UpdateAssignmentRequest{})
	assert.ErrorIs(t, err, ErrTeacherOnly, "role gate precedes existence")

	_, err = f.svc.Update(ctx, t1, uuid.New(), model.UpdateAssignmentRequest{})
	assert.ErrorIs(t, err, ErrAssignmentNotFound)

	_, err = f.svc.Update(ctx, t2, a.ID, model.UpdateAssignmentRequest{Title: strPtr("   ")})
	assert.ErrorIs(t, err, ErrNotOwner, "ownership precedes validation")
}

func TestUpdate_PartialFields(t *testing.T) {
	f := newFixture(t, nil)
	t1 := f.user(t, "t1", model.RoleTeacher)
	a := f.create(t, t1, "HW1")
	completed := model.AssignmentStatusCompleted

	got, err := f.svc.Update(context.Background(), t1, a.ID, model.UpdateAssignmentRequest{
		Title:       strPtr(" HW1 revised "),
		Description: strPtr(""),
		Status:      &completed,
	})
	require.NoError(t, err)

	assert.Equal(t, "HW1 revised", got.Title)
	assert.Equal(t, a.Description, got.Description, "empty string means not provided")
	assert.Equal(t, a.Subject, got.Subject)
	assert.Equal(t, model.AssignmentStatusCompleted, got.Status)
	require.NotNil(t, got.Teacher)
	assert.Equal(t, t1.UserID, got.Teacher.ID)
}

func TestUpdate_EmptyPatchReturnsRecord(t *testing.T) {
	f := newFixture(t, nil)
	t1 := f.user(t, "t1", model.RoleTeacher)
	a := f.create(t, t1, "HW1")

	got, err := f.svc.Update(context.Background(), t1, a.ID, model.UpdateAssignmentRequest{})
	require.NoError(t, err)
	assert.Equal(t, a.Title, got.Title)
	assert.Equal(t, a.UpdatedAt, got.UpdatedAt)
}

func TestUpdate_InvalidFields(t *testing.T) {
	f := newFixture(t, nil)
	t1 := f.user(t, "t1", model.RoleTeacher)
	a := f.create(t, t1, "HW1")
	bogus := model.AssignmentStatus("archived")

	_, err := f.svc.Update(context.Background(), t1, a.ID, model.UpdateAssignmentRequest{
		Subject:  strPtr("  "),
		Deadline: strPtr("1999-12-31"),
		Status:   &bogus,
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "subject")
	assert.Contains(t, ve.Fields, "status")
	assert.Equal(t, msgDeadlineNotFuture, ve.Fields["deadline"])

	unchanged, err := f.svc.GetByID(context.Background(), t1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Subject, unchanged.Subject)
}

func TestDelete(t *testing.T) {
	f := newFixture(t, nil)
	t1 := f.user(t, "t1", model.RoleTeacher)
	t2 := f.user(t, "t2", model.RoleTeacher)
	student := f.user(t, "s1", model.RoleStudent)
	a := f.create(t, t1, "HW1")
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.Delete(ctx, student, a.ID), ErrTeacherOnly)
	assert.ErrorIs(t, f.svc.Delete(ctx, t2, a.ID), ErrNotOwner)

	require.NoError(t, f.svc.Delete(ctx, t1, a.ID))
	assert.ErrorIs(t, f.svc.Delete(ctx, t1, a.ID), ErrAssignmentNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, t1, a.ID), ErrAssignmentNotFound)

	_, err := f.svc.GetByID(ctx, student, a.ID)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestList_CacheInvalidatedOnMutation(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	f := newFixture(t, cache.NewRedisAssignmentCache(rdb, time.Minute, nopLog))
	t1 := f.user(t, "t1", model.RoleTeacher)
	student := f.user(t, "s1", model.RoleStudent)
	ctx := context.Background()

	a := f.create(t, t1, "HW1")

	list, err := f.svc.List(ctx, student)
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = f.svc.List(ctx, t1)
	require.NoError(t, err)

	allKey := config.CacheKey.AllAssignmentsKey()
	ownKey := config.CacheKey.TeacherAssignmentsKey(t1.UserID.String())
	assert.True(t, mr.Exists(allKey))
	assert.True(t, mr.Exists(ownKey))

	require.NoError(t, f.svc.Delete(ctx, t1, a.ID))
	assert.False(t, mr.Exists(allKey))
	assert.False(t, mr.Exists(ownKey))

	list, err = f.svc.List(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// gatedStore pauses List after it has read from the store until release
// is closed.
type gatedStore struct {
	AssignmentStore
	reached chan struct{}
	release chan struct{}
}

func (g *gatedStore) List(ctx context.Context, teacherID *uuid.UUID) ([]model.Assignment, error) {
	list, err := g.AssignmentStore.List(ctx, teacherID)
	close(g.reached)
	<-g.release
	return list, err
}

func TestList_SlowReadDoesNotCacheStaleList(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := cache.NewRedisAssignmentCache(rdb, time.Minute, nopLog)
	f := newFixture(t, c)
	t1 := f.user(t, "t1", model.RoleTeacher)
	student := f.user(t, "s1", model.RoleStudent)
	ctx := context.Background()

	gated := &gatedStore{
		AssignmentStore: f.assignments,
		reached:         make(chan struct{}),
		release:         make(chan struct{}),
	}
	slow := NewAssignmentService(gated, c, nopLog)

	type result struct {
		list []model.Assignment
		err  error
	}
	done := make(chan result, 1)
	go func() {
		list, err := slow.List(ctx, student)
		done <- result{list, err}
	}()

	<-gated.reached
	a := f.create(t, t1, "HW1")
	close(gated.release)

	before := <-done
	require.NoError(t, before.err)
	assert.Empty(t, before.list, "read started before the create")

	list, err := f.svc.List(ctx, student)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	require.NoError(t, f.svc.Delete(ctx, t1, a.ID))
	list, err = f.svc.List(ctx, student)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestScenario_AssignmentLifecycle(t *testing.T) {
	f := newFixture(t, nil)
	t1 := f.user(t, "t1", model.RoleTeacher)
	t2 := f.user(t, "t2", model.RoleTeacher)
	s1 := f.user(t, "s1", model.RoleStudent)
	ctx := context.Background()

	hw1 := f.create(t, t1, "HW1")
	assert.Equal(t, model.AssignmentStatusActive, hw1.Status)
	assert.Equal(t, t1.UserID, hw1.TeacherID)

	own, err := f.svc.List(ctx, t1)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	all, err := f.svc.List(ctx, s1)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.svc.Update(ctx, t2, hw1.ID, model.UpdateAssignmentRequest{Title: strPtr("mine now")})
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, f.svc.Delete(ctx, t1, hw1.ID))

	_, err = f.svc.GetByID(ctx, t1, hw1.ID)
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}
