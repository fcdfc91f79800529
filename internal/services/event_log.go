package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"

	"task-tracker-api/internal/database"
	"task-tracker-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	ActionCreated         = "created"
	ActionUpdated         = "updated"
	ActionDependencyAdded = "dependency_added"
	ActionAssigned        = "assigned"
	ActionUnassigned      = "unassigned"

	DefaultEventWindowDays = 7
)

const maxWindowDays = int(math.MaxInt64 / int64(24*time.Hour))

// Notifier receives serialized events for a user. realtime.Hub implements it.
type Notifier interface {
	Broadcast(userID string, message []byte)
}

// EventMessage is the payload pushed to subscribers.
type EventMessage struct {
	Type  string           `json:"type"`
	Event models.TaskEvent `json:"event"`
}

// EventLog is the append-only audit trail of actions on tasks.
type EventLog struct {
	store    *database.Store
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewEventLog(store *database.Store, notifier Notifier, logger zerolog.Logger) *EventLog {
	return &EventLog{
		store:    store,
		notifier: notifier,
		logger:   logger.With().Str("component", "events").Logger(),
		now:      time.Now,
	}
}

// Append records an event for an existing task and user.
func (l *EventLog) Append(ctx context.Context, taskID, userID, action, details string) (*models.TaskEvent, error) {
	var evt *models.TaskEvent
	err := l.store.InTx(ctx, func(tx *gorm.DB) error {
		if err := requireTask(tx, taskID); err != nil {
			return err
		}
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		var err error
		evt, err = l.record(tx, taskID, userID, action, details)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.publish(ctx, evt)
	return evt, nil
}

// record inserts an event inside the caller's transaction.
func (l *EventLog) record(tx *gorm.DB, taskID, userID, action, details string) (*models.TaskEvent, error) {
	evt := &models.TaskEvent{
		ID:        uuid.NewString(),
		TaskID:    taskID,
		UserID:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: l.now().UTC(),
	}
	if err := tx.Create(evt).Error; err != nil {
		l.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("action", action).
			Msg("failed to insert task event")
		return nil, err
	}
	l.logger.Debug().
		Str("event_id", evt.ID).
		Str("task_id", taskID).
		Str("action", action).
		Msg("inserted task event")
	return evt, nil
}

// ListRecent returns the task's events from the trailing window, oldest first.
func (l *EventLog) ListRecent(ctx context.Context, taskID string, days int) ([]models.TaskEvent, error) {
	if days < 0 {
		return nil, ErrInvalidWindow
	}
	query := l.store.WithContext(ctx).Where("task_id = ?", taskID)
	// Windows wider than a time.Duration can express have no lower bound.
	if days <= maxWindowDays {
		since := l.now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
		query = query.Where("created_at >= ?", since)
	}

	events := make([]models.TaskEvent, 0)
	err := query.Order("created_at asc").Find(&events).Error
	if err != nil {
		l.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to list task events")
		return nil, err
	}
	return events, nil
}

// publish pushes committed events to the task owner, its assignees and the
// actor. Delivery is best effort.
func (l *EventLog) publish(ctx context.Context, events ...*models.TaskEvent) {
	if l.notifier == nil {
		return
	}
	for _, evt := range events {
		if evt == nil {
			continue
		}
		payload, err := json.Marshal(EventMessage{Type: "task_event", Event: *evt})
		if err != nil {
			continue
		}
		recipients, err := l.recipients(ctx, evt)
		if err != nil {
			l.logger.Warn().
				Err(err).
				Str("task_id", evt.TaskID).
				Msg("failed to resolve event recipients")
			continue
		}
		for _, userID := range recipients {
			l.notifier.Broadcast(userID, payload)
		}
	}
}

func (l *EventLog) recipients(ctx context.Context, evt *models.TaskEvent) ([]string, error) {
	db := l.store.WithContext(ctx)

	var owner []string
	if err := db.Model(&models.Task{}).Where("id = ?", evt.TaskID).Pluck("created_by", &owner).Error; err != nil {
		return nil, err
	}
	var assignees []string
	if err := db.Model(&models.TaskAssignee{}).Where("task_id = ?", evt.TaskID).Pluck("user_id", &assignees).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, len(owner)+len(assignees)+1)
	for _, ids := range [][]string{{evt.UserID}, owner, assignees} {
		for _, id := range ids {
			if _, ok := seen[id]; ok || id == "" {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}

func requireTask(tx *gorm.DB, taskID string) error {
	var task models.Task
	err := tx.Select("id").Where("id = ?", taskID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrTaskNotFound
	}
	return err
}

func requireUser(tx *gorm.DB, userID string) error {
	var user models.User
	err := tx.Select("id").Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return err
}
