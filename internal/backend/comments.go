package backend

import (
	"github.com/google/uuid"

	"github.com/armankhan8150/taskscape-front/internal/models"
)

// CreateComment inserts a new comment and returns it with its assigned id
func (db *DB) CreateComment(c *models.Comment) (*models.Comment, error) {
	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO comments (id, task_id, author_id, content)
		VALUES (?, ?, NULLIF(?, ''), ?)
	`, id, c.TaskID, c.AuthorID, c.Content)
	if err != nil {
		return nil, err
	}
	return db.GetComment(id)
}

// GetComment retrieves a comment by ID
func (db *DB) GetComment(id string) (*models.Comment, error) {
	c := &models.Comment{}
	err := db.QueryRow(`
		SELECT id, task_id, COALESCE(author_id, ''), content, created_at
		FROM comments WHERE id = ?
	`, id).Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ListComments returns comments, oldest first. A non-empty taskID
// restricts the result to that task's thread.
func (db *DB) ListComments(taskID string) ([]*models.Comment, error) {
	query := `
		SELECT id, task_id, COALESCE(author_id, ''), content, created_at
		FROM comments
	`
	var args []any
	if taskID != "" {
		query += " WHERE task_id = ?"
		args = append(args, taskID)
	}
	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Content, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ClearAuthor detaches every comment written by the member
func (db *DB) ClearAuthor(memberID string) error {
	_, err := db.Exec("UPDATE comments SET author_id = NULL WHERE author_id = ?", memberID)
	return err
}
