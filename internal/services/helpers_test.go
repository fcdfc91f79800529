package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/database"
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages map[string][][]byte
}

func (n *recordingNotifier) Broadcast(userID string, message []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.messages == nil {
		n.messages = make(map[string][][]byte)
	}
	n.messages[userID] = append(n.messages[userID], message)
}

func (n *recordingNotifier) count(userID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.messages[userID])
}

type fixture struct {
	store       *database.Store
	notifier    *recordingNotifier
	auth        *AuthService
	events      *EventLog
	tasks       *TaskStore
	deps        *DependencyGraph
	assignments *AssignmentRegistry
	analytics   *AnalyticsEngine
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithCycles(t, false)
}

func newFixtureWithCycles(t *testing.T, rejectCycles bool) *fixture {
	t.Helper()
	store := testutil.NewStore(t)
	log := zerolog.Nop()
	notifier := &recordingNotifier{}
	signer := auth.NewTokenSigner("test-secret", "task-tracker-api", "task-tracker-clients", time.Hour)
	hasher := auth.MultiHasher{Primary: auth.BcryptHasher{Cost: bcrypt.MinCost}}

	events := NewEventLog(store, notifier, log)
	return &fixture{
		store:       store,
		notifier:    notifier,
		auth:        NewAuthService(store, hasher, signer, log),
		events:      events,
		tasks:       NewTaskStore(store, events, log),
		deps:        NewDependencyGraph(store, events, log, rejectCycles),
		assignments: NewAssignmentRegistry(store, events, log),
		analytics:   NewAnalyticsEngine(store, log),
	}
}

func (f *fixture) register(t *testing.T, email string) Identity {
	t.Helper()
	res, err := f.auth.Register(context.Background(), email, "password123", "Test User")
	require.NoError(t, err)
	return Identity{UserID: res.UserID, Role: res.Role}
}

func (f *fixture) createTask(t *testing.T, id Identity, title string) string {
	t.Helper()
	taskID, err := f.tasks.Create(context.Background(), id, CreateTaskInput{Title: title})
	require.NoError(t, err)
	return taskID
}

func ptr[T any](v T) *T {
	return &v
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	e, ok := AsError(err)
	require.True(t, ok, "expected core error, got %v", err)
	require.Equal(t, kind, e.Kind)
}

func countEvents(t *testing.T, store *database.Store, taskID, action string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, store.Model(&models.TaskEvent{}).Where("task_id = ? AND action = ?", taskID, action).Count(&n).Error)
	return n
}
