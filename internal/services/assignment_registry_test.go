package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignUnassign(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "a@example.com")
	member := f.register(t, "b@example.com")
	taskID := f.createTask(t, admin, "Shared")

	created, err := f.assignments.Assign(ctx, admin, taskID, member.UserID)
	require.NoError(t, err)
	require.True(t, created)

	created, err = f.assignments.Assign(ctx, admin, taskID, member.UserID)
	require.NoError(t, err)
	require.False(t, created)

	ok, err := f.assignments.IsAssigned(ctx, taskID, member.UserID)
	require.NoError(t, err)
	require.True(t, ok)

	ids, err := f.assignments.Assignees(ctx, taskID)
	require.NoError(t, err)
	require.Equal(t, []string{member.UserID}, ids)

	removed, err := f.assignments.Unassign(ctx, admin, taskID, member.UserID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = f.assignments.Unassign(ctx, admin, taskID, member.UserID)
	require.NoError(t, err)
	require.False(t, removed)

	ok, err = f.assignments.IsAssigned(ctx, taskID, member.UserID)
	require.NoError(t, err)
	require.False(t, ok)

	require.EqualValues(t, 1, countEvents(t, f.store, taskID, ActionAssigned))
	require.EqualValues(t, 1, countEvents(t, f.store, taskID, ActionUnassigned))
}

func TestAssign_NotifiesAssignee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "a@example.com")
	member := f.register(t, "b@example.com")
	taskID := f.createTask(t, admin, "Shared")

	_, err := f.assignments.Assign(ctx, admin, taskID, member.UserID)
	require.NoError(t, err)
	require.Equal(t, 1, f.notifier.count(member.UserID))
}

func TestAssign_MissingEntities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, "a@example.com")
	taskID := f.createTask(t, admin, "Shared")

	_, err := f.assignments.Assign(ctx, admin, "missing", admin.UserID)
	require.ErrorIs(t, err, ErrTaskNotFound)

	_, err = f.assignments.Assign(ctx, admin, taskID, "ghost")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.assignments.Assignees(ctx, "missing")
	require.ErrorIs(t, err, ErrTaskNotFound)
}
