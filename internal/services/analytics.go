package services

import (
	"context"
	"time"

	"task-tracker-api/internal/database"
	"task-tracker-api/internal/models"

	"github.com/rs/zerolog"
)

type StatusCount struct {
	Status models.TaskStatus `json:"status"`
	Count  int64             `json:"count"`
}

// AnalyticsEngine computes read-only aggregates over task state.
type AnalyticsEngine struct {
	store  *database.Store
	logger zerolog.Logger
	now    func() time.Time
}

func NewAnalyticsEngine(store *database.Store, logger zerolog.Logger) *AnalyticsEngine {
	return &AnalyticsEngine{
		store:  store,
		logger: logger.With().Str("component", "analytics").Logger(),
		now:    time.Now,
	}
}

// Overdue returns tasks whose due date has passed and whose status is not done.
func (a *AnalyticsEngine) Overdue(ctx context.Context) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	err := a.store.WithContext(ctx).
		Where("due_date IS NOT NULL AND due_date < ? AND status <> ?", a.now().UTC(), models.StatusDone).
		Order("due_date asc").
		Find(&tasks).Error
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to query overdue tasks")
		return nil, err
	}
	return tasks, nil
}

// StatusDistribution counts tasks per status. Statuses with no tasks are absent.
func (a *AnalyticsEngine) StatusDistribution(ctx context.Context) ([]StatusCount, error) {
	rows := make([]StatusCount, 0)
	err := a.store.WithContext(ctx).
		Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status asc").
		Scan(&rows).Error
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to compute status distribution")
		return nil, err
	}
	return rows, nil
}
