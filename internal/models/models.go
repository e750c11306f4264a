package models

import "time"

// Kind identifies an entity collection
type Kind string

const (
	KindProject Kind = "projects"
	KindTask    Kind = "tasks"
	KindComment Kind = "comments"
	KindMember  Kind = "members"
)

// Kinds lists every known entity kind
func Kinds() []Kind {
	return []Kind{KindProject, KindTask, KindComment, KindMember}
}

// TaskStatus is a closed enumeration of board columns
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "in-progress"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
)

// Statuses lists every status in board column order
func Statuses() []TaskStatus {
	return []TaskStatus{StatusTodo, StatusInProgress, StatusReview, StatusDone}
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusReview, StatusDone:
		return true
	}
	return false
}

// TaskPriority is a closed enumeration
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Role is a team member's single role
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleEmployee}
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// Entity is any uniquely identified domain record held by the entity store
type Entity interface {
	EntityID() string
	EntityKind() Kind
	// CloneEntity returns a deep copy, used for snapshots and rollback
	CloneEntity() Entity
}

// Project represents a task board project
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	CreatedBy   string    `json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *Project) EntityID() string { return p.ID }
func (p *Project) EntityKind() Kind { return KindProject }
func (p *Project) CloneEntity() Entity {
	out := *p
	return &out
}

// Task represents a single task on the board
type Task struct {
	ID           string       `json:"id"`
	ProjectID    string       `json:"project_id"`
	Title        string       `json:"title"`
	Description  string       `json:"description,omitempty"`
	Status       TaskStatus   `json:"status"`
	Priority     TaskPriority `json:"priority"`
	AssigneeID   string       `json:"assignee_id,omitempty"` // empty means unassigned
	DueDate      *time.Time   `json:"due_date,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	CommentCount int          `json:"comment_count"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (t *Task) EntityID() string { return t.ID }
func (t *Task) EntityKind() Kind { return KindTask }
func (t *Task) CloneEntity() Entity {
	out := *t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.Tags != nil {
		out.Tags = make([]string, len(t.Tags))
		copy(out.Tags, t.Tags)
	}
	return &out
}

// Comment represents a comment on a task
type Comment struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	AuthorID  string    `json:"author_id,omitempty"` // empty if the author was deleted
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Comment) EntityID() string { return c.ID }
func (c *Comment) EntityKind() Kind { return KindComment }
func (c *Comment) CloneEntity() Entity {
	out := *c
	return &out
}

// TeamMember represents a member of the workspace
type TeamMember struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	Role   Role   `json:"role"`
}

func (m *TeamMember) EntityID() string { return m.ID }
func (m *TeamMember) EntityKind() Kind { return KindMember }
func (m *TeamMember) CloneEntity() Entity {
	out := *m
	return &out
}
