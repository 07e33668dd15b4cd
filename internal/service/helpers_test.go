package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/stuteach-backend/internal/access"
	"github.com/stemsi/stuteach-backend/internal/cache"
	"github.com/stemsi/stuteach-backend/internal/config"
	"github.com/stemsi/stuteach-backend/internal/model"
	"github.com/stemsi/stuteach-backend/internal/repository"
	"github.com/stretchr/testify/require"
)

const futureDeadline = "2099-01-01T00:00:00Z"

var nopLog = zerolog.New(io.Discard)

type fixture struct {
	db          *repository.MemoryDB
	users       *repository.MemoryUserRepository
	assignments *repository.MemoryAssignmentRepository
	svc         *AssignmentService
}

func newFixture(t *testing.T, c cache.AssignmentCache) *fixture {
	t.Helper()
	db := repository.NewMemoryDB()
	f := &fixture{
		db:          db,
		users:       repository.NewMemoryUserRepository(db),
		assignments: repository.NewMemoryAssignmentRepository(db),
	}
	f.svc = NewAssignmentService(f.assignments, c, nopLog)
	return f
}

func (f *fixture) user(t *testing.T, name string, role model.Role) access.Caller {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@school.test", PasswordHash: "x", Role: role}
	require.NoError(t, f.users.Create(context.Background(), u))
	return access.Caller{UserID: u.ID, Role: u.Role}
}

func (f *fixture) create(t *testing.T, caller access.Caller, title string) *model.Assignment {
	t.Helper()
	a, err := f.svc.Create(context.Background(), caller, model.CreateAssignmentRequest{
		Title:       title,
		Description: "Read chapter 3",
		Subject:     "Math",
		Deadline:    futureDeadline,
	})
	require.NoError(t, err)
	return a
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
}

func strPtr(s string) *string { return &s }
