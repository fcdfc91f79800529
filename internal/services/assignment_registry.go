package services

import (
	"context"

	"task-tracker-api/internal/database"
	"task-tracker-api/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AssignmentRegistry is the user<->task membership edge set.
type AssignmentRegistry struct {
	store  *database.Store
	events *EventLog
	logger zerolog.Logger
}

func NewAssignmentRegistry(store *database.Store, events *EventLog, logger zerolog.Logger) *AssignmentRegistry {
	return &AssignmentRegistry{
		store:  store,
		events: events,
		logger: logger.With().Str("component", "assignments").Logger(),
	}
}

// Assign adds userID to the task. It reports false when the edge already existed.
func (r *AssignmentRegistry) Assign(ctx context.Context, id Identity, taskID, userID string) (bool, error) {
	var evt *models.TaskEvent
	err := r.store.InTx(ctx, func(tx *gorm.DB) error {
		if err := requireTask(tx, taskID); err != nil {
			return err
		}
		if err := requireUser(tx, userID); err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.TaskAssignee{TaskID: taskID, UserID: userID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		var err error
		evt, err = r.events.record(tx, taskID, id.UserID, ActionAssigned, "user "+userID)
		return err
	})
	if err != nil {
		r.logFailure(err, "failed to assign user", taskID, userID)
		return false, err
	}
	if evt == nil {
		return false, nil
	}

	r.events.publish(ctx, evt)
	r.logger.Info().
		Str("task_id", taskID).
		Str("assignee", userID).
		Msg("assigned user")
	return true, nil
}

// Unassign removes userID from the task. It reports false when there was no edge.
func (r *AssignmentRegistry) Unassign(ctx context.Context, id Identity, taskID, userID string) (bool, error) {
	var evt *models.TaskEvent
	err := r.store.InTx(ctx, func(tx *gorm.DB) error {
		if err := requireTask(tx, taskID); err != nil {
			return err
		}
		res := tx.Where("task_id = ? AND user_id = ?", taskID, userID).Delete(&models.TaskAssignee{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		var err error
		evt, err = r.events.record(tx, taskID, id.UserID, ActionUnassigned, "user "+userID)
		return err
	})
	if err != nil {
		r.logFailure(err, "failed to unassign user", taskID, userID)
		return false, err
	}
	if evt == nil {
		return false, nil
	}

	r.events.publish(ctx, evt)
	r.logger.Info().
		Str("task_id", taskID).
		Str("assignee", userID).
		Msg("unassigned user")
	return true, nil
}

func (r *AssignmentRegistry) IsAssigned(ctx context.Context, taskID, userID string) (bool, error) {
	var count int64
	err := r.store.WithContext(ctx).
		Model(&models.TaskAssignee{}).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Count(&count).Error
	return count > 0, err
}

// Assignees lists the user ids assigned to the task.
func (r *AssignmentRegistry) Assignees(ctx context.Context, taskID string) ([]string, error) {
	db := r.store.WithContext(ctx)
	if err := requireTask(db, taskID); err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	err := db.Model(&models.TaskAssignee{}).
		Where("task_id = ?", taskID).
		Order("user_id asc").
		Pluck("user_id", &ids).Error
	return ids, err
}

func (r *AssignmentRegistry) logFailure(err error, msg, taskID, userID string) {
	if _, ok := AsError(err); ok {
		return
	}
	r.logger.Error().
		Err(err).
		Str("task_id", taskID).
		Str("assignee", userID).
		Msg(msg)
}
