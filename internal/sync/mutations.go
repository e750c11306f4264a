package sync

import (
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/armankhan8150/taskscape-front/internal/gateway"
	"github.com/armankhan8150/taskscape-front/internal/models"
)

// defaultProjectColor matches the board's fallback color tag
const defaultProjectColor = "#3b82f6"

// placeholderID generates a client-side id for an optimistic insert. The
// server-assigned id replaces it on commit.
func placeholderID() string {
	return "pending-" + ulid.Make().String()
}

// TaskDraft is the input for creating a task
type TaskDraft struct {
	ProjectID   string
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	AssigneeID  string
	DueDate     *time.Time
	Tags        []string
}

// TaskPatch is a partial update; nil fields are left unchanged
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	Priority    *models.TaskPriority
	AssigneeID  *string
	DueDate     *time.Time
	ClearDue    bool
	Tags        *[]string
}

func (p TaskPatch) apply(task *models.Task) {
	if p.Title != nil {
		task.Title = *p.Title
	}
	if p.Description != nil {
		task.Description = *p.Description
	}
	if p.Status != nil {
		task.Status = *p.Status
	}
	if p.Priority != nil {
		task.Priority = *p.Priority
	}
	if p.AssigneeID != nil {
		task.AssigneeID = *p.AssigneeID
	}
	if p.DueDate != nil {
		due := *p.DueDate
		task.DueDate = &due
	}
	if p.ClearDue {
		task.DueDate = nil
	}
	if p.Tags != nil {
		tags := make([]string, len(*p.Tags))
		copy(tags, *p.Tags)
		task.Tags = tags
	}
}

// CreateTask builds the mutation that inserts a task, visible on the board
// immediately under a placeholder id
func (c *Client) CreateTask(draft TaskDraft) Mutation {
	if draft.Status == "" {
		draft.Status = models.StatusTodo
	}
	if draft.Priority == "" {
		draft.Priority = models.PriorityMedium
	}

	tempID := placeholderID()
	optimistic := &models.Task{
		ID:          tempID,
		ProjectID:   draft.ProjectID,
		Title:       strings.TrimSpace(draft.Title),
		Description: strings.TrimSpace(draft.Description),
		Status:      draft.Status,
		Priority:    draft.Priority,
		AssigneeID:  draft.AssigneeID,
		DueDate:     draft.DueDate,
		Tags:        draft.Tags,
		CreatedAt:   time.Now(),
	}

	return Mutation{
		Name: "task.create",
		Op:   gateway.OpInsert,
		Payload: func() models.Entity {
			payload := optimistic.CloneEntity().(*models.Task)
			payload.ID = ""
			return payload
		},
		Target:  EntityRef{Kind: models.KindTask, ID: tempID},
		Validate: func() error {
			if optimistic.Title == "" {
				return &gateway.ValidationError{Field: "title", Reason: "required"}
			}
			if optimistic.ProjectID == "" {
				return &gateway.ValidationError{Field: "project_id", Reason: "required"}
			}
			if !optimistic.Status.Valid() {
				return &gateway.ValidationError{Field: "status", Reason: "unknown status"}
			}
			if !optimistic.Priority.Valid() {
				return &gateway.ValidationError{Field: "priority", Reason: "unknown priority"}
			}
			return nil
		},
		Apply: func(store *EntityStore) {
			store.Upsert(optimistic)
		},
		Invalidates: []QueryKey{TasksQuery()},
	}
}

// UpdateTask builds the mutation that patches a task. The change is visible
// immediately and rolled back to the exact prior record on failure.
func (c *Client) UpdateTask(id string, patch TaskPatch) Mutation {
	patched := func() *models.Task {
		task := c.Task(id)
		if task == nil {
			return nil
		}
		patch.apply(task)
		return task
	}

	return Mutation{
		Name: "task.update",
		Op:   gateway.OpUpdate,
		Payload: func() models.Entity {
			if task := patched(); task != nil {
				return task
			}
			return nil
		},
		Target: EntityRef{Kind: models.KindTask, ID: id},
		Validate: func() error {
			if patch.Status != nil && !patch.Status.Valid() {
				return &gateway.ValidationError{Field: "status", Reason: "unknown status"}
			}
			if patch.Priority != nil && !patch.Priority.Valid() {
				return &gateway.ValidationError{Field: "priority", Reason: "unknown priority"}
			}
			if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
				return &gateway.ValidationError{Field: "title", Reason: "required"}
			}
			return nil
		},
		Apply: func(store *EntityStore) {
			if task := patched(); task != nil {
				store.Upsert(task)
			}
		},
		Invalidates: []QueryKey{TasksQuery()},
	}
}

// CreateProject builds the mutation that inserts a project
func (c *Client) CreateProject(name, description string) Mutation {
	tempID := placeholderID()
	optimistic := &models.Project{
		ID:          tempID,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Color:       defaultProjectColor,
		CreatedBy:   c.gateway.SessionUserID(),
		CreatedAt:   time.Now(),
	}

	return Mutation{
		Name: "project.create",
		Op:   gateway.OpInsert,
		Payload: func() models.Entity {
			payload := optimistic.CloneEntity().(*models.Project)
			payload.ID = ""
			return payload
		},
		Target:  EntityRef{Kind: models.KindProject, ID: tempID},
		Validate: func() error {
			if optimistic.Name == "" {
				return &gateway.ValidationError{Field: "name", Reason: "required"}
			}
			return nil
		},
		Apply: func(store *EntityStore) {
			store.Upsert(optimistic)
		},
		Invalidates: []QueryKey{ProjectsQuery()},
	}
}

// ProjectPatch is a partial project update; nil fields are left unchanged
type ProjectPatch struct {
	Name        *string
	Description *string
	Color       *string
}

func (p ProjectPatch) apply(project *models.Project) {
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.Color != nil {
		project.Color = *p.Color
	}
}

// UpdateProject builds the mutation that patches a project
func (c *Client) UpdateProject(id string, patch ProjectPatch) Mutation {
	patched := func() *models.Project {
		project := c.Project(id)
		if project == nil {
			return nil
		}
		patch.apply(project)
		return project
	}

	return Mutation{
		Name: "project.update",
		Op:   gateway.OpUpdate,
		Payload: func() models.Entity {
			if project := patched(); project != nil {
				return project
			}
			return nil
		},
		Target: EntityRef{Kind: models.KindProject, ID: id},
		Validate: func() error {
			if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
				return &gateway.ValidationError{Field: "name", Reason: "required"}
			}
			return nil
		},
		Apply: func(store *EntityStore) {
			if project := patched(); project != nil {
				store.Upsert(project)
			}
		},
		Invalidates: []QueryKey{ProjectsQuery()},
	}
}

// CreateComment builds the mutation that adds a comment to a task. The
// owning task's comment count is optimistically bumped by exactly one,
// pending refetch confirmation.
func (c *Client) CreateComment(taskID, content string) Mutation {
	tempID := placeholderID()
	optimistic := &models.Comment{
		ID:        tempID,
		TaskID:    taskID,
		AuthorID:  c.gateway.SessionUserID(),
		Content:   strings.TrimSpace(content),
		CreatedAt: time.Now(),
	}

	return Mutation{
		Name: "comment.create",
		Op:   gateway.OpInsert,
		Payload: func() models.Entity {
			payload := optimistic.CloneEntity().(*models.Comment)
			payload.ID = ""
			return payload
		},
		Target:  EntityRef{Kind: models.KindComment, ID: tempID},
		Touched: []EntityRef{
			{Kind: models.KindComment, ID: tempID},
			{Kind: models.KindTask, ID: taskID},
		},
		Validate: func() error {
			if optimistic.Content == "" {
				return &gateway.ValidationError{Field: "content", Reason: "required"}
			}
			if taskID == "" {
				return &gateway.ValidationError{Field: "task_id", Reason: "required"}
			}
			return nil
		},
		Apply: func(store *EntityStore) {
			store.Upsert(optimistic)
			if task := c.Task(taskID); task != nil {
				task.CommentCount += 1
				store.Upsert(task)
			}
		},
		Invalidates: []QueryKey{CommentsQuery(taskID), TasksQuery()},
	}
}

// SetMemberRole builds the mutation that changes a member's single role
func (c *Client) SetMemberRole(id string, role models.Role) Mutation {
	patched := func() *models.TeamMember {
		member := c.Member(id)
		if member == nil {
			return nil
		}
		member.Role = role
		return member
	}

	return Mutation{
		Name: "member.role",
		Op:   gateway.OpUpdate,
		Payload: func() models.Entity {
			if member := patched(); member != nil {
				return member
			}
			return nil
		},
		Target: EntityRef{Kind: models.KindMember, ID: id},
		Validate: func() error {
			if !role.Valid() {
				return &gateway.ValidationError{Field: "role", Reason: "unknown role"}
			}
			return nil
		},
		Apply: func(store *EntityStore) {
			if member := patched(); member != nil {
				store.Upsert(member)
			}
		},
		Invalidates: []QueryKey{MembersQuery()},
	}
}

// DeleteMember builds the mutation that removes a member from the
// workspace. Tasks assigned to them read as unassigned once the server
// confirms and task queries refresh.
func (c *Client) DeleteMember(id string) Mutation {
	return Mutation{
		Name: "member.delete",
		Op:   gateway.OpDelete,
		Payload: func() models.Entity {
			return &models.TeamMember{ID: id}
		},
		Target:  EntityRef{Kind: models.KindMember, ID: id},
		Validate: func() error {
			if id == "" {
				return &gateway.ValidationError{Field: "id", Reason: "required"}
			}
			return nil
		},
		Apply: func(store *EntityStore) {
			store.Remove(models.KindMember, id)
		},
		Invalidates:     []QueryKey{MembersQuery()},
		InvalidateKinds: []models.Kind{models.KindTask},
	}
}
