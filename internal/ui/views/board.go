package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/armankhan8150/taskscape-front/internal/models"
	"github.com/armankhan8150/taskscape-front/internal/sync"
	"github.com/armankhan8150/taskscape-front/internal/ui/keys"
	"github.com/armankhan8150/taskscape-front/internal/ui/styles"
)

// BackToProjects signals to go back to the project list
type BackToProjects struct{}

const dueDateLayout = "2006-01-02"

// editField enumerates the task form inputs in focus order
type editField int

const (
	fieldTitle editField = iota
	fieldDesc
	fieldStatus
	fieldPriority
	fieldAssignee
	fieldDue
	fieldTags
	fieldSave
	fieldCount
)

// BoardView shows one project's tasks as status columns
type BoardView struct {
	client  *sync.Client
	project *models.Project
	styles  *styles.Styles
	keys    keys.KeyMap

	width  int
	height int

	unwatch func()
	errMsg  string

	// columns mirrors models.Statuses() order
	columns [][]*models.Task
	column  int
	cursor  int
	scrollY int

	searching   bool
	searchInput textinput.Model

	// Task creation/editing
	editing      bool
	editingNew   bool
	editTaskID   string
	editTitle    textinput.Model
	editDesc     textarea.Model
	editDue      textinput.Model
	editTags     textinput.Model
	editStatus   int // index into models.Statuses()
	editPriority int // index into priorities
	editAssignee int // 0 = unassigned, i+1 = members[i]
	editMembers  []*models.TeamMember
	editFocus    editField

	// Task detail view
	viewingTaskID   string
	unwatchComments func()
	commentInput    textarea.Model
	commentFocused  bool

	showHelpPopup bool
}

var priorities = []models.TaskPriority{
	models.PriorityLow,
	models.PriorityMedium,
	models.PriorityHigh,
}

func NewBoardView(client *sync.Client, project *models.Project) *BoardView {
	s := styles.NewStyles()

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	editDue := textinput.New()
	editDue.Placeholder = "YYYY-MM-DD"
	editDue.CharLimit = 10

	editTags := textinput.New()
	editTags.Placeholder = "tags, comma, separated"
	editTags.CharLimit = 200

	commentInput := textarea.New()
	commentInput.Placeholder = "Add a comment..."
	commentInput.CharLimit = 2000
	commentInput.SetWidth(50)
	commentInput.SetHeight(3)
	commentInput.ShowLineNumbers = false

	return &BoardView{
		client:       client,
		project:      project,
		styles:       s,
		keys:         keys.DefaultKeyMap(),
		searchInput:  search,
		editTitle:    editTitle,
		editDesc:     editDesc,
		editDue:      editDue,
		editTags:     editTags,
		commentInput: commentInput,
	}
}

func (v *BoardView) Init() tea.Cmd {
	if v.unwatch == nil {
		releaseTasks := v.client.Watch(sync.TasksQuery())
		releaseMembers := v.client.Watch(sync.MembersQuery())
		v.unwatch = func() {
			releaseTasks()
			releaseMembers()
		}
	}
	v.refresh()
	return nil
}

// Release drops the view's query watches
func (v *BoardView) Release() {
	if v.unwatch != nil {
		v.unwatch()
		v.unwatch = nil
	}
	v.closeDetail()
}

// refresh regroups the project's tasks into status columns
func (v *BoardView) refresh() {
	v.client.Read(sync.TasksQuery())
	v.client.Read(sync.MembersQuery())

	search := strings.ToLower(strings.TrimSpace(v.searchInput.Value()))
	tasks := v.client.Aggregator().FilterTasks(sync.TaskFilter{ProjectID: v.project.ID})

	statuses := models.Statuses()
	v.columns = make([][]*models.Task, len(statuses))
	index := map[models.TaskStatus]int{}
	for i, status := range statuses {
		index[status] = i
	}
	for _, task := range tasks {
		if search != "" && !strings.Contains(strings.ToLower(task.Title), search) {
			continue
		}
		if i, ok := index[task.Status]; ok {
			v.columns[i] = append(v.columns[i], task)
		}
	}

	if v.cursor >= len(v.columns[v.column]) {
		v.cursor = max(0, len(v.columns[v.column])-1)
	}

	// the viewed task can disappear under us (deleted remotely)
	if v.viewingTaskID != "" && v.client.Task(v.viewingTaskID) == nil {
		v.closeDetail()
	}
}

func (v *BoardView) selectedTask() *models.Task {
	col := v.columns[v.column]
	if v.cursor < len(col) {
		return col[v.cursor]
	}
	return nil
}

func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		inputWidth := clamp(contentWidth-10, 20, 50)
		v.editDesc.SetWidth(inputWidth)
		v.commentInput.SetWidth(inputWidth)
		return v, nil

	case SyncChangedMsg:
		v.refresh()
		return v, nil

	case MutationFailedMsg:
		v.errMsg = msg.Message
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		if v.viewingTaskID != "" {
			return v.updateDetail(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.searching {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.searching = false
			v.searchInput.Blur()
			v.searchInput.Reset()
			v.refresh()
			return v, nil
		case key.Matches(msg, v.keys.Enter):
			v.searching = false
			v.searchInput.Blur()
			return v, nil
		default:
			var cmd tea.Cmd
			v.searchInput, cmd = v.searchInput.Update(msg)
			v.refresh()
			return v, cmd
		}
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return BackToProjects{} }

	case key.Matches(msg, v.keys.Left):
		if v.column > 0 {
			v.column--
			v.clampCursor()
		}
		return v, nil

	case key.Matches(msg, v.keys.Right), key.Matches(msg, v.keys.Tab):
		if v.column < len(v.columns)-1 {
			v.column++
		} else if key.Matches(msg, v.keys.Tab) {
			v.column = 0
		}
		v.clampCursor()
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.columns[v.column])-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if task := v.selectedTask(); task != nil {
			v.openDetail(task.ID)
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if task := v.selectedTask(); task != nil {
			v.startEditTask(task)
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Move), msg.String() == "]":
		return v, v.moveTask(1)

	case msg.String() == "[":
		return v, v.moveTask(-1)

	case key.Matches(msg, v.keys.Search):
		v.searching = true
		v.searchInput.Focus()
		return v, textinput.Blink

	case msg.String() == "?":
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *BoardView) clampCursor() {
	if v.cursor >= len(v.columns[v.column]) {
		v.cursor = max(0, len(v.columns[v.column])-1)
	}
	v.ensureVisible()
}

func (v *BoardView) ensureVisible() {
	visible := max(v.height-12, 3)
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

// moveTask shifts the selected task's status one column over
func (v *BoardView) moveTask(delta int) tea.Cmd {
	task := v.selectedTask()
	if task == nil {
		return nil
	}
	statuses := models.Statuses()
	current := 0
	for i, status := range statuses {
		if status == task.Status {
			current = i
			break
		}
	}
	next := current + delta
	if next < 0 || next >= len(statuses) {
		return nil
	}
	status := statuses[next]
	v.errMsg = ""
	return RunMutation(v.client, v.client.UpdateTask(task.ID, sync.TaskPatch{Status: &status}))
}

func (v *BoardView) startNewTask() {
	v.editing = true
	v.editingNew = true
	v.editTaskID = ""
	v.editFocus = fieldTitle
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editDue.Reset()
	v.editTags.Reset()
	v.editStatus = v.column
	v.editPriority = 1 // medium
	v.editAssignee = 0
	v.loadEditMembers()
	v.editTitle.Focus()
}

func (v *BoardView) startEditTask(task *models.Task) {
	v.editing = true
	v.editingNew = false
	v.editTaskID = task.ID
	v.editFocus = fieldTitle
	v.editTitle.SetValue(task.Title)
	v.editDesc.SetValue(task.Description)
	if task.DueDate != nil {
		v.editDue.SetValue(task.DueDate.Format(dueDateLayout))
	} else {
		v.editDue.Reset()
	}
	v.editTags.SetValue(strings.Join(task.Tags, ", "))
	for i, status := range models.Statuses() {
		if status == task.Status {
			v.editStatus = i
		}
	}
	v.editPriority = 1
	for i, priority := range priorities {
		if priority == task.Priority {
			v.editPriority = i
		}
	}
	v.loadEditMembers()
	v.editAssignee = 0
	for i, member := range v.editMembers {
		if member.ID == task.AssigneeID {
			v.editAssignee = i + 1
		}
	}
	v.editTitle.Focus()
}

func (v *BoardView) loadEditMembers() {
	result := v.client.Read(sync.MembersQuery())
	v.editMembers = v.client.Members(result.IDs)
}

func (v *BoardView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v.submitEdit()

	case msg.String() == "shift+tab":
		v.editFocus = (v.editFocus + fieldCount - 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.editFocus = (v.editFocus + 1) % fieldCount
		v.updateEditFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter) && v.editFocus == fieldSave:
		return v.submitEdit()

	case key.Matches(msg, v.keys.Enter) && v.editFocus != fieldDesc:
		v.editFocus++
		v.updateEditFocus()
		return v, nil
	}

	// selector fields cycle with left/right
	switch v.editFocus {
	case fieldStatus:
		v.editStatus = cycleOption(msg, v.editStatus, len(models.Statuses()))
		return v, nil
	case fieldPriority:
		v.editPriority = cycleOption(msg, v.editPriority, len(priorities))
		return v, nil
	case fieldAssignee:
		v.editAssignee = cycleOption(msg, v.editAssignee, len(v.editMembers)+1)
		return v, nil
	}

	var cmd tea.Cmd
	switch v.editFocus {
	case fieldTitle:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case fieldDesc:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case fieldDue:
		v.editDue, cmd = v.editDue.Update(msg)
	case fieldTags:
		v.editTags, cmd = v.editTags.Update(msg)
	}
	return v, cmd
}

func cycleOption(msg tea.KeyMsg, current, count int) int {
	switch msg.String() {
	case "left", "h":
		return (current + count - 1) % count
	case "right", "l", " ":
		return (current + 1) % count
	}
	return current
}

func (v *BoardView) submitEdit() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(v.editTitle.Value())
	if title == "" {
		v.errMsg = "title is required"
		return v, nil
	}

	var due *time.Time
	if raw := strings.TrimSpace(v.editDue.Value()); raw != "" {
		parsed, err := time.Parse(dueDateLayout, raw)
		if err != nil {
			v.errMsg = "due date must be YYYY-MM-DD"
			return v, nil
		}
		due = &parsed
	}

	tags := parseTags(v.editTags.Value())
	status := models.Statuses()[v.editStatus]
	priority := priorities[v.editPriority]
	assigneeID := ""
	if v.editAssignee > 0 && v.editAssignee <= len(v.editMembers) {
		assigneeID = v.editMembers[v.editAssignee-1].ID
	}

	var mutation sync.Mutation
	if v.editingNew {
		mutation = v.client.CreateTask(sync.TaskDraft{
			ProjectID:   v.project.ID,
			Title:       title,
			Description: v.editDesc.Value(),
			Status:      status,
			Priority:    priority,
			AssigneeID:  assigneeID,
			DueDate:     due,
			Tags:        tags,
		})
	} else {
		description := v.editDesc.Value()
		mutation = v.client.UpdateTask(v.editTaskID, sync.TaskPatch{
			Title:       &title,
			Description: &description,
			Status:      &status,
			Priority:    &priority,
			AssigneeID:  &assigneeID,
			DueDate:     due,
			ClearDue:    due == nil,
			Tags:        &tags,
		})
	}

	v.editing = false
	v.errMsg = ""
	return v, RunMutation(v.client, mutation)
}

func parseTags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (v *BoardView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()
	v.editTags.Blur()
	switch v.editFocus {
	case fieldTitle:
		v.editTitle.Focus()
	case fieldDesc:
		v.editDesc.Focus()
	case fieldDue:
		v.editDue.Focus()
	case fieldTags:
		v.editTags.Focus()
	}
}

func (v *BoardView) openDetail(taskID string) {
	v.viewingTaskID = taskID
	v.commentFocused = false
	v.commentInput.Reset()
	v.unwatchComments = v.client.Watch(sync.CommentsQuery(taskID))
	v.client.Read(sync.CommentsQuery(taskID))
}

func (v *BoardView) closeDetail() {
	v.viewingTaskID = ""
	if v.unwatchComments != nil {
		v.unwatchComments()
		v.unwatchComments = nil
	}
}

func (v *BoardView) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.commentFocused {
		switch {
		case key.Matches(msg, v.keys.Back):
			v.commentFocused = false
			v.commentInput.Blur()
			return v, nil
		case msg.String() == "ctrl+s":
			content := strings.TrimSpace(v.commentInput.Value())
			if content == "" {
				return v, nil
			}
			taskID := v.viewingTaskID
			v.commentInput.Reset()
			v.commentFocused = false
			v.commentInput.Blur()
			return v, RunMutation(v.client, v.client.CreateComment(taskID, content))
		}
		var cmd tea.Cmd
		v.commentInput, cmd = v.commentInput.Update(msg)
		return v, cmd
	}

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit
	case key.Matches(msg, v.keys.Back):
		v.closeDetail()
		return v, nil
	case msg.String() == "c":
		v.commentFocused = true
		v.commentInput.Focus()
		return v, textinput.Blink
	case key.Matches(msg, v.keys.Edit):
		if task := v.client.Task(v.viewingTaskID); task != nil {
			v.closeDetail()
			v.startEditTask(task)
			return v, textinput.Blink
		}
		return v, nil
	}
	return v, nil
}

func (v *BoardView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.editing {
		return v.renderEditForm()
	}
	if v.viewingTaskID != "" {
		return v.renderDetail()
	}
	return v.renderBoard()
}

func (v *BoardView) renderBoard() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	header := s.Title.Render(v.project.Name)
	if v.searching || v.searchInput.Value() != "" {
		header += "  " + s.FilterInput.Render(v.searchInput.View())
	}

	statuses := models.Statuses()
	columnWidth := max(contentWidth/len(statuses)-2, 16)
	columnHeight := max(v.height-10, 5)

	rendered := make([]string, len(statuses))
	for i, status := range statuses {
		rendered[i] = v.renderColumn(i, status, columnWidth, columnHeight)
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		board,
		v.renderFooter(),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *BoardView) renderColumn(index int, status models.TaskStatus, width, height int) string {
	s := v.styles
	tasks := v.columns[index]
	focused := index == v.column

	headerStyle := s.ColumnHeader.Foreground(styles.StatusColor(string(status)))
	header := headerStyle.Render(fmt.Sprintf("%s (%d)", status, len(tasks)))

	rows := []string{header}
	start := 0
	if focused {
		start = min(v.scrollY, max(0, len(tasks)-1))
	}
	visible := max(height/2, 3)
	for i := start; i < len(tasks) && i < start+visible; i++ {
		rows = append(rows, v.renderCard(tasks[i], width-2, focused && i == v.cursor))
	}
	if len(tasks) == 0 {
		rows = append(rows, s.TitleMuted.Render("  empty"))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	columnStyle := s.Column
	if focused {
		columnStyle = s.ColumnFocused
	}
	return columnStyle.Width(width).Height(height).Render(body)
}

func (v *BoardView) renderCard(task *models.Task, width int, selected bool) string {
	s := v.styles

	titleStyle := s.TaskTitle
	if selected {
		titleStyle = s.ListSelected
	}
	if v.client.Store().Pending(models.KindTask, task.ID) {
		titleStyle = titleStyle.Italic(true)
	}

	marker := lipgloss.NewStyle().
		Foreground(styles.PriorityColor(string(task.Priority))).
		Render("●")

	meta := []string{}
	if task.AssigneeID != "" {
		if member := v.client.Member(task.AssigneeID); member != nil {
			meta = append(meta, initials(member.Name))
		}
	}
	if task.DueDate != nil {
		meta = append(meta, humanize.Time(*task.DueDate))
	}
	if task.CommentCount > 0 {
		meta = append(meta, fmt.Sprintf("%d comments", task.CommentCount))
	}

	title := truncate(task.Title, max(width-3, 5))
	line := marker + " " + titleStyle.Render(title)
	if len(meta) > 0 {
		line += "\n  " + s.TitleMuted.Render(truncate(strings.Join(meta, " · "), max(width-3, 5)))
	}
	return line
}

func initials(name string) string {
	var out string
	for _, part := range strings.Fields(name) {
		out += strings.ToUpper(string([]rune(part)[0]))
		if len(out) >= 2 {
			break
		}
	}
	return out
}

func truncate(text string, width int) string {
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:width-1]) + "…"
}

func (v *BoardView) renderFooter() string {
	if v.errMsg != "" {
		return v.styles.ErrorBar.Render(v.errMsg)
	}
	return v.styles.Help.Render(
		fmt.Sprintf("%s open • %s new • %s edit • %s move • %s search • %s back",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("n"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("m"),
			v.styles.HelpKey.Render("/"),
			v.styles.HelpKey.Render("esc"),
		),
	)
}

func (v *BoardView) renderEditForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-10, 20, 50)

	fieldStyle := func(field editField) lipgloss.Style {
		if v.editFocus == field {
			return s.InputFocused
		}
		return s.Input
	}
	selectorStyle := func(field editField) lipgloss.Style {
		if v.editFocus == field {
			return s.ButtonFocused
		}
		return s.Button
	}

	title := "New Task"
	if !v.editingNew {
		title = "Edit Task"
	}

	assignee := "unassigned"
	if v.editAssignee > 0 && v.editAssignee <= len(v.editMembers) {
		assignee = v.editMembers[v.editAssignee-1].Name
	}

	saveStyle := s.Button
	if v.editFocus == fieldSave {
		saveStyle = s.ButtonFocused
	}

	rows := []string{
		s.Title.Render(title),
		"",
		"Title:",
		fieldStyle(fieldTitle).Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Description:",
		fieldStyle(fieldDesc).Width(inputWidth).Render(v.editDesc.View()),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			selectorStyle(fieldStatus).Render(" "+string(models.Statuses()[v.editStatus])+" "),
			" ",
			selectorStyle(fieldPriority).Render(" "+string(priorities[v.editPriority])+" "),
			" ",
			selectorStyle(fieldAssignee).Render(" "+assignee+" "),
		),
		"",
		"Due:",
		fieldStyle(fieldDue).Width(inputWidth).Render(v.editDue.View()),
		"",
		"Tags:",
		fieldStyle(fieldTags).Width(inputWidth).Render(v.editTags.View()),
		"",
		saveStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • ←/→: change option • Ctrl+S: save • Esc: cancel"),
	}
	if v.errMsg != "" {
		rows = append(rows, "", s.ErrorBar.Render(v.errMsg))
	}
	form := lipgloss.JoinVertical(lipgloss.Left, rows...)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *BoardView) renderDetail() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	task := v.client.Task(v.viewingTaskID)
	if task == nil {
		return s.TitleMuted.Render("Loading...")
	}

	statusBadge := lipgloss.NewStyle().
		Foreground(styles.StatusColor(string(task.Status))).
		Render(string(task.Status))
	priorityBadge := lipgloss.NewStyle().
		Foreground(styles.PriorityColor(string(task.Priority))).
		Render(string(task.Priority))

	rows := []string{
		s.Title.Render(task.Title),
		s.TitleMuted.Render(statusBadge + " · " + priorityBadge),
		"",
	}

	if task.AssigneeID != "" {
		if member := v.client.Member(task.AssigneeID); member != nil {
			rows = append(rows, "Assignee: "+member.Name)
		}
	}
	if task.DueDate != nil {
		rows = append(rows, "Due: "+task.DueDate.Format(dueDateLayout)+" ("+humanize.Time(*task.DueDate)+")")
	}
	if len(task.Tags) > 0 {
		var tags []string
		for _, tag := range task.Tags {
			tags = append(tags, s.Tag.Foreground(styles.Current.Accent).Render(tag))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center, tags...))
	}
	if task.Description != "" {
		rows = append(rows, "", task.Description)
	}

	rows = append(rows, "", s.Title.Render("Comments"))

	result := v.client.Read(sync.CommentsQuery(task.ID))
	comments := v.client.Comments(result.IDs)
	if len(comments) == 0 && !result.Loading {
		rows = append(rows, s.TitleMuted.Render("No comments yet"))
	}
	for _, comment := range comments {
		author := "someone"
		if member := v.client.Member(comment.AuthorID); member != nil {
			author = member.Name
		}
		when := humanize.Time(comment.CreatedAt)
		if v.client.Store().Pending(models.KindComment, comment.ID) {
			when = "sending…"
		}
		rows = append(rows,
			s.HelpKey.Render(author)+" "+s.TitleMuted.Render(when),
			comment.Content,
			"",
		)
	}

	if v.commentFocused {
		rows = append(rows,
			s.InputFocused.Render(v.commentInput.View()),
			s.TitleMuted.Render("Ctrl+S: post • Esc: cancel"),
		)
	} else {
		footer := fmt.Sprintf("%s comment • %s edit • %s back",
			s.HelpKey.Render("c"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("esc"),
		)
		if v.errMsg != "" {
			footer = s.ErrorBar.Render(v.errMsg)
		}
		rows = append(rows, s.Help.Render(footer))
	}

	content := lipgloss.NewStyle().
		Width(clamp(contentWidth-4, 30, 70)).
		Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return styles.CenterView(content, v.width, v.height)
}

func (v *BoardView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "      open task",
		s.HelpKey.Render("n") + "      new task",
		s.HelpKey.Render("e") + "      edit task",
		s.HelpKey.Render("m ]") + "    move to next status",
		s.HelpKey.Render("[") + "      move to previous status",
		s.HelpKey.Render("/") + "      search",
		s.HelpKey.Render("←/→") + "    switch column",
		s.HelpKey.Render("esc") + "    back to projects",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.FilterBar.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
