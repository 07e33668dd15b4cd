package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDeadline(t *testing.T) {
	want := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, raw := range []string{
		"2099-01-01T00:00",
		"2099-01-01T00:00:00",
		"2099-01-01T00:00:00Z",
		"2099-01-01T00:00:00.000Z",
		"2099-01-01T07:00:00+07:00",
		"2099-01-01T00:00Z",
		"2099-01-01",
		"  2099-01-01T00:00 ",
	} {
		got, err := ParseDeadline(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), "%s parsed as %s", raw, got)
	}

	for _, raw := range []string{"", "tomorrow", "2099-13-01", "01/02/2099", "2099-01-01T25:00"} {
		_, err := ParseDeadline(raw)
		assert.ErrorIs(t, err, ErrInvalidDeadline, raw)
	}
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole(" Teacher ")
	assert.True(t, ok)
	assert.Equal(t, RoleTeacher, r)

	_, ok = ParseRole("admin")
	assert.False(t, ok)
}

func TestAssignmentPatchApply(t *testing.T) {
	title := "HW2"
	status := AssignmentStatusCompleted
	a := &Assignment{Title: "HW1", Subject: "Math", Status: AssignmentStatusActive}

	assert.True(t, AssignmentPatch{}.Empty())

	p := AssignmentPatch{Title: &title, Status: &status}
	assert.False(t, p.Empty())
	p.Apply(a)

	assert.Equal(t, "HW2", a.Title)
	assert.Equal(t, "Math", a.Subject)
	assert.Equal(t, AssignmentStatusCompleted, a.Status)
}

func TestAssignmentStatusValid(t *testing.T) {
	assert.True(t, AssignmentStatusCancelled.Valid())
	assert.False(t, AssignmentStatus("archived").Valid())
}
