package backend

import (
	"github.com/google/uuid"

	"github.com/armankhan8150/taskscape-front/internal/models"
)

// CreateMember inserts a new team member and returns it with its assigned id
func (db *DB) CreateMember(m *models.TeamMember) (*models.TeamMember, error) {
	id := uuid.NewString()
	role := m.Role
	if role == "" {
		role = models.RoleEmployee
	}
	_, err := db.Exec(`
		INSERT INTO members (id, name, email, avatar, role) VALUES (?, ?, ?, ?, ?)
	`, id, m.Name, m.Email, m.Avatar, role)
	if err != nil {
		return nil, err
	}
	return db.GetMember(id)
}

// GetMember retrieves a team member by ID
func (db *DB) GetMember(id string) (*models.TeamMember, error) {
	m := &models.TeamMember{}
	err := db.QueryRow(`
		SELECT id, name, email, avatar, role FROM members WHERE id = ?
	`, id).Scan(&m.ID, &m.Name, &m.Email, &m.Avatar, &m.Role)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListMembers returns all team members, alphabetically
func (db *DB) ListMembers() ([]*models.TeamMember, error) {
	rows, err := db.Query(`SELECT id, name, email, avatar, role FROM members ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.TeamMember
	for rows.Next() {
		m := &models.TeamMember{}
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Avatar, &m.Role); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// UpdateMember updates a member's mutable fields
func (db *DB) UpdateMember(m *models.TeamMember) (*models.TeamMember, error) {
	result, err := db.Exec(`
		UPDATE members SET name = ?, email = ?, avatar = ?, role = ? WHERE id = ?
	`, m.Name, m.Email, m.Avatar, m.Role, m.ID)
	if err != nil {
		return nil, err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, errRowMissing
	}
	return db.GetMember(m.ID)
}

// DeleteMember removes a member, detaching their task assignments and
// comment authorship first
func (db *DB) DeleteMember(id string) error {
	if err := db.ClearAssignee(id); err != nil {
		return err
	}
	if err := db.ClearAuthor(id); err != nil {
		return err
	}
	result, err := db.Exec("DELETE FROM members WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errRowMissing
	}
	return nil
}
