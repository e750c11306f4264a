package models

import (
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestTaskCloneIsDeep(t *testing.T) {
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	task := &Task{
		ID:      "t1",
		Title:   "Original",
		Status:  StatusTodo,
		DueDate: &due,
		Tags:    []string{"backend"},
	}

	clone := task.CloneEntity().(*Task)
	clone.Title = "Changed"
	*clone.DueDate = clone.DueDate.AddDate(0, 0, 7)
	clone.Tags[0] = "frontend"

	assert.Equal(t, "Original", task.Title)
	assert.Equal(t, due, *task.DueDate)
	assert.Equal(t, "backend", task.Tags[0])
}

func TestEnumValidation(t *testing.T) {
	for _, status := range Statuses() {
		assert.Equal(t, true, status.Valid())
	}
	assert.Equal(t, false, TaskStatus("blocked").Valid())

	assert.Equal(t, true, PriorityHigh.Valid())
	assert.Equal(t, false, TaskPriority("urgent").Valid())

	for _, role := range Roles() {
		assert.Equal(t, true, role.Valid())
	}
	assert.Equal(t, false, Role("owner").Valid())
}
