package models

import "time"

// TaskStatus represents the status of a task
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in_progress"
	StatusBlocked    TaskStatus = "blocked"
	StatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusBlocked, StatusDone:
		return true
	}
	return false
}

const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = 3
)

// Task represents a task in the system
type Task struct {
	ID          string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status" gorm:"not null;default:'todo';index"`
	Priority    int        `json:"priority" gorm:"not null;default:3"`
	DueDate     *time.Time `json:"due_date" gorm:"column:due_date;index"`
	Tags        *string    `json:"tags"`
	ParentID    *string    `json:"parent_id" gorm:"column:parent_id;type:varchar(36);index"`
	CreatedBy   string     `json:"created_by" gorm:"column:created_by;type:varchar(36);not null;index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// TaskDependency is a directed edge: TaskID cannot complete before DependsOnTaskID.
type TaskDependency struct {
	TaskID          string `json:"task_id" gorm:"primaryKey;type:varchar(36)"`
	DependsOnTaskID string `json:"depends_on_task_id" gorm:"primaryKey;column:depends_on_task_id;type:varchar(36)"`
}

func (TaskDependency) TableName() string {
	return "task_dependencies"
}

// TaskAssignee marks membership of a user on a task; ownership stays with Task.CreatedBy.
type TaskAssignee struct {
	TaskID string `json:"task_id" gorm:"primaryKey;type:varchar(36)"`
	UserID string `json:"user_id" gorm:"primaryKey;type:varchar(36);index"`
}

func (TaskAssignee) TableName() string {
	return "task_assignees"
}

// TaskEvent is an immutable audit record.
type TaskEvent struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	TaskID    string    `json:"task_id" gorm:"type:varchar(36);not null;index"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);not null"`
	Action    string    `json:"action" gorm:"not null"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (TaskEvent) TableName() string {
	return "task_events"
}

// All lists every model managed by migrations.
func All() []any {
	return []any{
		&User{},
		&BootstrapClaim{},
		&Task{},
		&TaskDependency{},
		&TaskAssignee{},
		&TaskEvent{},
	}
}
