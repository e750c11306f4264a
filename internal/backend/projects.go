package backend

import (
	"github.com/google/uuid"

	"github.com/armankhan8150/taskscape-front/internal/models"
)

// CreateProject inserts a new project and returns it with its assigned id
func (db *DB) CreateProject(p *models.Project) (*models.Project, error) {
	id := uuid.NewString()
	_, err := db.Exec(`
		INSERT INTO projects (id, name, description, color, created_by) VALUES (?, ?, ?, ?, ?)
	`, id, p.Name, p.Description, orDefault(p.Color, "#3b82f6"), p.CreatedBy)
	if err != nil {
		return nil, err
	}

	return db.GetProject(id)
}

// GetProject retrieves a project by ID
func (db *DB) GetProject(id string) (*models.Project, error) {
	p := &models.Project{}
	err := db.QueryRow(`
		SELECT id, name, description, color, COALESCE(created_by, ''), created_at
		FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjects returns all projects, newest first
func (db *DB) ListProjects() ([]*models.Project, error) {
	rows, err := db.Query(`
		SELECT id, name, description, color, COALESCE(created_by, ''), created_at
		FROM projects ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		p := &models.Project{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateProject updates a project's mutable fields
func (db *DB) UpdateProject(p *models.Project) (*models.Project, error) {
	result, err := db.Exec(`
		UPDATE projects SET name = ?, description = ?, color = ? WHERE id = ?
	`, p.Name, p.Description, p.Color, p.ID)
	if err != nil {
		return nil, err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, errRowMissing
	}
	return db.GetProject(p.ID)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
