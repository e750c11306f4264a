package views

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/armankhan8150/taskscape-front/internal/gateway"
	"github.com/armankhan8150/taskscape-front/internal/sync"
)

// SyncChangedMsg is broadcast when the synchronization layer changed state
// and views should re-read their queries
type SyncChangedMsg struct{}

// MutationFailedMsg carries a user-facing description of a rejected write.
// The optimistic change has already been rolled back when it arrives.
type MutationFailedMsg struct {
	Message string
}

// RunMutation executes a mutation off the update loop. Success needs no
// message: the store change already triggers a re-render.
func RunMutation(client *sync.Client, mutation sync.Mutation) tea.Cmd {
	return func() tea.Msg {
		if _, err := client.Mutate(mutation); err != nil {
			return MutationFailedMsg{Message: describeError(err)}
		}
		return nil
	}
}

func describeError(err error) string {
	var validation *gateway.ValidationError
	if errors.As(err, &validation) {
		if validation.Field != "" {
			return validation.Field + ": " + validation.Reason
		}
		return validation.Reason
	}
	var auth *gateway.AuthError
	if errors.As(err, &auth) {
		return "session expired, changes were undone"
	}
	if gateway.IsConflict(err) {
		return "someone else changed this first, your change was undone"
	}
	if gateway.IsNotFound(err) {
		return "this no longer exists, refreshing"
	}
	return "could not save, your change was undone"
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
