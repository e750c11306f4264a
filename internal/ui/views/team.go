package views

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/armankhan8150/taskscape-front/internal/models"
	"github.com/armankhan8150/taskscape-front/internal/sync"
	"github.com/armankhan8150/taskscape-front/internal/ui/keys"
	"github.com/armankhan8150/taskscape-front/internal/ui/styles"
)

// TeamView lists the team members with their roles
type TeamView struct {
	client *sync.Client
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	unwatch func()
	errMsg  string

	members []*models.TeamMember
	cursor  int

	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string
}

func NewTeamView(client *sync.Client) *TeamView {
	return &TeamView{
		client: client,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

func (v *TeamView) Init() tea.Cmd {
	if v.unwatch == nil {
		v.unwatch = v.client.Watch(sync.MembersQuery())
	}
	v.refresh()
	return nil
}

// Release drops the view's query watch
func (v *TeamView) Release() {
	if v.unwatch != nil {
		v.unwatch()
		v.unwatch = nil
	}
}

func (v *TeamView) refresh() {
	result := v.client.Read(sync.MembersQuery())
	v.members = v.client.Members(result.IDs)
	if v.cursor >= len(v.members) {
		v.cursor = max(0, len(v.members)-1)
	}
}

func (v *TeamView) selectedMember() *models.TeamMember {
	if v.cursor < len(v.members) {
		return v.members[v.cursor]
	}
	return nil
}

func (v *TeamView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case SyncChangedMsg:
		v.refresh()
		return v, nil

	case MutationFailedMsg:
		v.errMsg = msg.Message
		return v, nil

	case tea.KeyMsg:
		v.errMsg = ""

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit

		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToProjects{} }

		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
			return v, nil

		case key.Matches(msg, v.keys.Down):
			if v.cursor < len(v.members)-1 {
				v.cursor++
			}
			return v, nil

		case msg.String() == "r":
			return v, v.cycleRole()

		case key.Matches(msg, v.keys.Delete):
			if member := v.selectedMember(); member != nil {
				if member.ID == v.client.SessionUserID() {
					v.errMsg = "cannot remove yourself"
					return v, nil
				}
				v.confirmingDelete = true
				v.deleteTargetID = member.ID
				v.deleteTargetName = member.Name
			}
			return v, nil
		}
	}

	return v, nil
}

// cycleRole advances the selected member's role through the role list
func (v *TeamView) cycleRole() tea.Cmd {
	member := v.selectedMember()
	if member == nil {
		return nil
	}
	roles := models.Roles()
	next := roles[0]
	for i, role := range roles {
		if role == member.Role {
			next = roles[(i+1)%len(roles)]
			break
		}
	}
	return RunMutation(v.client, v.client.SetMemberRole(member.ID, next))
}

func (v *TeamView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		return v, RunMutation(v.client, v.client.DeleteMember(v.deleteTargetID))
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *TeamView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	rows := []string{s.Title.Render("Team"), ""}

	if len(v.members) == 0 {
		rows = append(rows, s.TitleMuted.Render("Loading..."))
	}

	for i, member := range v.members {
		roleBadge := lipgloss.NewStyle().
			Foreground(styles.RoleColor(string(member.Role))).
			Render(string(member.Role))

		name := member.Name
		if member.ID == v.client.SessionUserID() {
			name += " (you)"
		}
		if v.client.Store().Pending(models.KindMember, member.ID) {
			name += " " + s.Pending.Render("(saving…)")
		}

		line := fmt.Sprintf("%-24s %s", name, roleBadge)
		if member.Email != "" {
			line += "  " + s.TitleMuted.Render(member.Email)
		}

		if i == v.cursor {
			rows = append(rows, s.ListSelected.Render(line))
		} else {
			rows = append(rows, s.ListItem.Render(line))
		}
	}

	rows = append(rows, "", v.renderFooter())

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TeamView) renderFooter() string {
	if v.errMsg != "" {
		return v.styles.ErrorBar.Render(v.errMsg)
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s change role • %s remove • %s back",
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("esc"),
		),
	)
}

func (v *TeamView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Remove Member?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Remove \"%s\" from the team?", v.deleteTargetName)),
		s.TitleMuted.Render("Their tasks become unassigned."),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
