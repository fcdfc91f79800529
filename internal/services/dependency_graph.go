package services

import (
	"context"
	"fmt"

	"task-tracker-api/internal/database"
	"task-tracker-api/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DependencyGraph stores directed depends-on edges between tasks. Cycle
// rejection is opt-in; a direct self-loop is always rejected.
type DependencyGraph struct {
	store        *database.Store
	events       *EventLog
	logger       zerolog.Logger
	rejectCycles bool
}

func NewDependencyGraph(store *database.Store, events *EventLog, logger zerolog.Logger, rejectCycles bool) *DependencyGraph {
	return &DependencyGraph{
		store:        store,
		events:       events,
		logger:       logger.With().Str("component", "dependencies").Logger(),
		rejectCycles: rejectCycles,
	}
}

// AddDependency records that taskID depends on dependsOnID. Adding an edge that
// already exists succeeds without writing anything.
func (g *DependencyGraph) AddDependency(ctx context.Context, id Identity, taskID, dependsOnID string) error {
	if taskID == dependsOnID {
		return ErrSelfDependency
	}

	var evt *models.TaskEvent
	err := g.store.InTx(ctx, func(tx *gorm.DB) error {
		for _, tid := range []string{taskID, dependsOnID} {
			if err := requireTask(tx, tid); err != nil {
				return err
			}
		}

		if g.rejectCycles {
			closes, err := reaches(tx, dependsOnID, taskID)
			if err != nil {
				return err
			}
			if closes {
				return fmt.Errorf("%w: %s -> %s", ErrDependencyCycle, taskID, dependsOnID)
			}
		}

		edge := models.TaskDependency{TaskID: taskID, DependsOnTaskID: dependsOnID}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var err error
		evt, err = g.events.record(tx, taskID, id.UserID, ActionDependencyAdded, "depends on "+dependsOnID)
		return err
	})
	if err != nil {
		if _, ok := AsError(err); !ok {
			g.logger.Error().
				Err(err).
				Str("task_id", taskID).
				Str("depends_on", dependsOnID).
				Msg("failed to add dependency")
		}
		return err
	}

	if evt != nil {
		g.events.publish(ctx, evt)
		g.logger.Info().
			Str("task_id", taskID).
			Str("depends_on", dependsOnID).
			Msg("added dependency")
	}
	return nil
}

// Dependencies lists the ids taskID directly depends on.
func (g *DependencyGraph) Dependencies(ctx context.Context, taskID string) ([]string, error) {
	db := g.store.WithContext(ctx)
	if err := requireTask(db, taskID); err != nil {
		return nil, err
	}
	ids := make([]string, 0)
	err := db.Model(&models.TaskDependency{}).
		Where("task_id = ?", taskID).
		Order("depends_on_task_id asc").
		Pluck("depends_on_task_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// reaches walks depends-on edges breadth first from start and reports whether
// target is reachable.
func reaches(tx *gorm.DB, start, target string) (bool, error) {
	visited := map[string]struct{}{start: {}}
	frontier := []string{start}
	for len(frontier) > 0 {
		var next []string
		err := tx.Model(&models.TaskDependency{}).
			Where("task_id IN ?", frontier).
			Pluck("depends_on_task_id", &next).Error
		if err != nil {
			return false, err
		}
		frontier = frontier[:0]
		for _, n := range next {
			if n == target {
				return true, nil
			}
			if _, seen := visited[n]; seen {
				continue
			}
			visited[n] = struct{}{}
			frontier = append(frontier, n)
		}
	}
	return false, nil
}
