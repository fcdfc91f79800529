package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"task-tracker-api/internal/database"
	"task-tracker-api/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// CreateTaskInput carries already-typed create parameters. Empty Status and nil
// Priority fall back to the defaults.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    *int
	DueDate     string
	Tags        *string
	ParentID    *string
}

// TaskFilter fields are combined with AND; zero values are ignored.
type TaskFilter struct {
	Status   string
	Priority *int
	Assignee string
	Tag      string
}

// TaskUpdate is one entry of a bulk update: column values keyed by field name.
type TaskUpdate struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// TaskStore owns task creation, lookup, listing and batch edits.
type TaskStore struct {
	store  *database.Store
	events *EventLog
	logger zerolog.Logger
	now    func() time.Time
}

func NewTaskStore(store *database.Store, events *EventLog, logger zerolog.Logger) *TaskStore {
	return &TaskStore{
		store:  store,
		events: events,
		logger: logger.With().Str("component", "tasks").Logger(),
		now:    time.Now,
	}
}

// Create inserts the task and its "created" event in one transaction.
func (s *TaskStore) Create(ctx context.Context, id Identity, in CreateTaskInput) (string, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", ErrEmptyTitle
	}

	status := models.StatusTodo
	if in.Status != "" {
		status = models.TaskStatus(in.Status)
		if !status.Valid() {
			return "", ErrInvalidStatus
		}
	}

	priority := models.DefaultPriority
	if in.Priority != nil {
		priority = *in.Priority
		if !validPriority(priority) {
			return "", ErrInvalidPriority
		}
	}

	var dueDate *time.Time
	if in.DueDate != "" {
		parsed, err := ParseDueDate(in.DueDate)
		if err != nil {
			s.logger.Warn().
				Str("due_date", in.DueDate).
				Msg("rejected due date")
			return "", err
		}
		dueDate = &parsed
	}

	parentID := nonEmpty(in.ParentID)

	now := s.now().UTC()
	task := models.Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     dueDate,
		Tags:        in.Tags,
		ParentID:    parentID,
		CreatedBy:   id.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	var evt *models.TaskEvent
	err := s.store.InTx(ctx, func(tx *gorm.DB) error {
		if parentID != nil {
			if err := requireTask(tx, *parentID); err != nil {
				if errors.Is(err, ErrTaskNotFound) {
					return ErrInvalidParent
				}
				return err
			}
		}
		if err := tx.Create(&task).Error; err != nil {
			return err
		}
		var err error
		evt, err = s.events.record(tx, task.ID, id.UserID, ActionCreated, "Task created")
		return err
	})
	if err != nil {
		if _, ok := AsError(err); !ok {
			s.logger.Error().
				Err(err).
				Msg("failed to create task")
		}
		return "", err
	}

	s.events.publish(ctx, evt)
	s.logger.Info().
		Str("task_id", task.ID).
		Str("user_id", id.UserID).
		Msg("created task")
	return task.ID, nil
}

// Get returns a single task by id.
func (s *TaskStore) Get(ctx context.Context, taskID string) (*models.Task, error) {
	var task models.Task
	err := s.store.WithContext(ctx).Where("id = ?", taskID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to fetch task")
		return nil, err
	}
	return &task, nil
}

// List returns every task matching the filter, oldest first.
func (s *TaskStore) List(ctx context.Context, f TaskFilter) ([]models.Task, error) {
	query := s.store.WithContext(ctx).Model(&models.Task{})
	if f.Status != "" {
		query = query.Where("tasks.status = ?", f.Status)
	}
	if f.Priority != nil {
		query = query.Where("tasks.priority = ?", *f.Priority)
	}
	if f.Tag != "" {
		// LOWER folds ASCII only on SQLite.
		query = query.Where(`LOWER(tasks.tags) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Tag))+"%")
	}
	if f.Assignee != "" {
		query = query.
			Joins("JOIN task_assignees ON task_assignees.task_id = tasks.id").
			Where("task_assignees.user_id = ?", f.Assignee)
	}

	tasks := make([]models.Task, 0)
	if err := query.Order("tasks.created_at asc").Find(&tasks).Error; err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		return nil, err
	}
	return tasks, nil
}

// BulkUpdate validates every entry against the updatable field allow-list and
// applies them in one transaction. It returns the number of entries attempted,
// including ids that matched no task.
func (s *TaskStore) BulkUpdate(ctx context.Context, id Identity, updates []TaskUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	type change struct {
		taskID  string
		columns map[string]any
		fields  []string
	}
	changes := make([]change, 0, len(updates))
	for i, u := range updates {
		if strings.TrimSpace(u.ID) == "" {
			return 0, invalidFieldf("update %d has no task id", i)
		}
		columns, fields, err := updateColumns(u.ID, u.Fields)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("task_id", u.ID).
				Msg("rejected bulk update")
			return 0, err
		}
		changes = append(changes, change{taskID: u.ID, columns: columns, fields: fields})
	}

	var recorded []*models.TaskEvent
	err := s.store.InTx(ctx, func(tx *gorm.DB) error {
		for _, c := range changes {
			if parent, ok := c.columns["parent_id"].(string); ok {
				if err := requireTask(tx, parent); err != nil {
					if errors.Is(err, ErrTaskNotFound) {
						return ErrInvalidParent
					}
					return err
				}
			}
			c.columns["updated_at"] = s.now().UTC()

			res := tx.Model(&models.Task{}).Where("id = ?", c.taskID).Updates(c.columns)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				continue
			}
			evt, err := s.events.record(tx, c.taskID, id.UserID, ActionUpdated, "fields: "+strings.Join(c.fields, ", "))
			if err != nil {
				return err
			}
			recorded = append(recorded, evt)
		}
		return nil
	})
	if err != nil {
		if _, ok := AsError(err); !ok {
			s.logger.Error().
				Err(err).
				Msg("failed to apply bulk update")
		}
		return 0, err
	}

	s.events.publish(ctx, recorded...)
	s.logger.Info().
		Int("attempted", len(updates)).
		Int("applied", len(recorded)).
		Str("user_id", id.UserID).
		Msg("applied bulk update")
	return len(updates), nil
}

// updateColumns maps caller fields onto task columns, rejecting anything outside
// the allow-list or of the wrong type.
func updateColumns(taskID string, fields map[string]any) (map[string]any, []string, error) {
	if len(fields) == 0 {
		return nil, nil, invalidFieldf("update for task %s has no fields", taskID)
	}

	columns := make(map[string]any, len(fields)+1)
	names := make([]string, 0, len(fields))
	for name, raw := range fields {
		switch name {
		case "title":
			v, ok := raw.(string)
			if !ok || strings.TrimSpace(v) == "" {
				return nil, nil, invalidFieldf("title must be a non-empty string")
			}
			columns["title"] = strings.TrimSpace(v)
		case "description":
			v, ok := raw.(string)
			if !ok {
				return nil, nil, invalidFieldf("description must be a string")
			}
			columns["description"] = v
		case "status":
			v, ok := raw.(string)
			if !ok || !models.TaskStatus(v).Valid() {
				return nil, nil, fmt.Errorf("%w: %s", ErrInvalidField, ErrInvalidStatus.Msg)
			}
			columns["status"] = v
		case "priority":
			v, ok := toInt(raw)
			if !ok || !validPriority(v) {
				return nil, nil, fmt.Errorf("%w: %s", ErrInvalidField, ErrInvalidPriority.Msg)
			}
			columns["priority"] = v
		case "due_date":
			switch v := raw.(type) {
			case nil:
				columns["due_date"] = nil
			case string:
				parsed, err := ParseDueDate(v)
				if err != nil {
					return nil, nil, fmt.Errorf("%w: %s", ErrInvalidField, ErrInvalidDueDate.Msg)
				}
				columns["due_date"] = parsed
			case time.Time:
				columns["due_date"] = v.UTC()
			default:
				return nil, nil, invalidFieldf("due_date must be a date-time string or null")
			}
		case "tags":
			switch v := raw.(type) {
			case nil:
				columns["tags"] = nil
			case string:
				columns["tags"] = v
			default:
				return nil, nil, invalidFieldf("tags must be a string or null")
			}
		case "parent_id":
			switch v := raw.(type) {
			case nil:
				columns["parent_id"] = nil
			case string:
				if v == "" {
					columns["parent_id"] = nil
					break
				}
				if v == taskID {
					return nil, nil, invalidFieldf("task cannot be its own parent")
				}
				columns["parent_id"] = v
			default:
				return nil, nil, invalidFieldf("parent_id must be a string or null")
			}
		default:
			return nil, nil, invalidFieldf("field %q is not updatable", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return columns, names, nil
}

var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseDueDate accepts a full ISO 8601 date-time. Values without an offset are
// taken as UTC; date-only values are rejected.
func ParseDueDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, ErrInvalidDueDate
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func validPriority(p int) bool {
	return p >= models.MinPriority && p <= models.MaxPriority
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	}
	return 0, false
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
