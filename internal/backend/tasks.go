package backend

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/armankhan8150/taskscape-front/internal/models"
)

const taskColumns = `
	t.id, t.project_id, t.title, t.description, t.status, t.priority,
	COALESCE(t.assignee_id, ''), t.due_date, t.tags, t.created_at,
	(SELECT COUNT(*) FROM comments c WHERE c.task_id = t.id)
`

// CreateTask inserts a new task and returns it with its assigned id
func (db *DB) CreateTask(t *models.Task) (*models.Task, error) {
	id := uuid.NewString()
	var due any
	if t.DueDate != nil {
		due = *t.DueDate
	}
	_, err := db.Exec(`
		INSERT INTO tasks (id, project_id, title, description, status, priority, assignee_id, due_date, tags)
		VALUES (?, ?, ?, ?, ?, ?, NULLIF(?, ''), ?, ?)
	`, id, t.ProjectID, t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, due, encodeTags(t.Tags))
	if err != nil {
		return nil, err
	}

	return db.GetTask(id)
}

// GetTask retrieves a task by ID, with its denormalized comment count
func (db *DB) GetTask(id string) (*models.Task, error) {
	row := db.QueryRow(`SELECT `+taskColumns+` FROM tasks t WHERE t.id = ?`, id)
	return scanTask(row)
}

// ListTasks returns all tasks, oldest first
func (db *DB) ListTasks() ([]*models.Task, error) {
	rows, err := db.Query(`SELECT ` + taskColumns + ` FROM tasks t ORDER BY t.created_at ASC, t.rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTask replaces a task's mutable fields
func (db *DB) UpdateTask(t *models.Task) (*models.Task, error) {
	var due any
	if t.DueDate != nil {
		due = *t.DueDate
	}
	result, err := db.Exec(`
		UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?,
			assignee_id = NULLIF(?, ''), due_date = ?, tags = ?
		WHERE id = ?
	`, t.Title, t.Description, t.Status, t.Priority, t.AssigneeID, due, encodeTags(t.Tags), t.ID)
	if err != nil {
		return nil, err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, errRowMissing
	}
	return db.GetTask(t.ID)
}

// ClearAssignee unassigns every task assigned to the member
func (db *DB) ClearAssignee(memberID string) error {
	_, err := db.Exec("UPDATE tasks SET assignee_id = NULL WHERE assignee_id = ?", memberID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var due sql.NullTime
	var tags string
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.AssigneeID, &due, &tags, &t.CreatedAt, &t.CommentCount)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	t.Tags = decodeTags(tags)
	return t, nil
}

// tags persist as a comma-joined list; order is display-significant
func encodeTags(tags []string) string {
	return strings.Join(tags, ",")
}

func decodeTags(encoded string) []string {
	if encoded == "" {
		return nil
	}
	return strings.Split(encoded, ",")
}
