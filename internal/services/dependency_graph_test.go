package services

import (
	"context"
	"testing"

	"task-tracker-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestAddDependency_SelfRejected(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "a@example.com")
	x := f.createTask(t, owner, "X")

	err := f.deps.AddDependency(context.Background(), owner, x, x)
	require.ErrorIs(t, err, ErrSelfDependency)
	requireKind(t, err, KindValidation)

	var edges int64
	require.NoError(t, f.store.Model(&models.TaskDependency{}).Count(&edges).Error)
	require.Zero(t, edges)
}

func TestAddDependency_StoresEdgeAndEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "a@example.com")
	a := f.createTask(t, owner, "A")
	b := f.createTask(t, owner, "B")

	require.NoError(t, f.deps.AddDependency(ctx, owner, a, b))

	deps, err := f.deps.Dependencies(ctx, a)
	require.NoError(t, err)
	require.Equal(t, []string{b}, deps)
	require.EqualValues(t, 1, countEvents(t, f.store, a, ActionDependencyAdded))
}

func TestAddDependency_DuplicateIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "a@example.com")
	a := f.createTask(t, owner, "A")
	b := f.createTask(t, owner, "B")

	require.NoError(t, f.deps.AddDependency(ctx, owner, a, b))
	require.NoError(t, f.deps.AddDependency(ctx, owner, a, b))

	deps, err := f.deps.Dependencies(ctx, a)
	require.NoError(t, err)
	require.Len(t, deps, 1)
	require.EqualValues(t, 1, countEvents(t, f.store, a, ActionDependencyAdded))
}

func TestAddDependency_MissingTask(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "a@example.com")
	a := f.createTask(t, owner, "A")

	err := f.deps.AddDependency(context.Background(), owner, a, "missing")
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestAddDependency_CyclesAllowedByDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "a@example.com")
	a := f.createTask(t, owner, "A")
	b := f.createTask(t, owner, "B")

	require.NoError(t, f.deps.AddDependency(ctx, owner, a, b))
	require.NoError(t, f.deps.AddDependency(ctx, owner, b, a))
}

func TestAddDependency_CyclesRejectedWhenEnabled(t *testing.T) {
	f := newFixtureWithCycles(t, true)
	ctx := context.Background()
	owner := f.register(t, "a@example.com")
	a := f.createTask(t, owner, "A")
	b := f.createTask(t, owner, "B")
	c := f.createTask(t, owner, "C")

	require.NoError(t, f.deps.AddDependency(ctx, owner, a, b))
	require.NoError(t, f.deps.AddDependency(ctx, owner, b, c))

	err := f.deps.AddDependency(ctx, owner, c, a)
	require.ErrorIs(t, err, ErrDependencyCycle)
	requireKind(t, err, KindValidation)

	// A diamond is not a cycle.
	require.NoError(t, f.deps.AddDependency(ctx, owner, a, c))

	deps, err := f.deps.Dependencies(ctx, c)
	require.NoError(t, err)
	require.Empty(t, deps)
}
