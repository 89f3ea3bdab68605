package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/palette/internal/catalog"
	"github.com/abelbrown/palette/internal/logging"
	"github.com/abelbrown/palette/internal/ui/command"
)

// AppConfig holds the commands the App runs. Each returns a tea.Cmd so the
// App never touches storage directly.
type AppConfig struct {
	LoadConversations  func() tea.Cmd
	CreateConversation func(cwd string) tea.Cmd
	SelectConversation func(id string) tea.Cmd
	OpenDiffViewer     func(cwd string) tea.Cmd

	// Actions defaults to catalog.DefaultActions.
	Actions []catalog.Action

	// WorkspaceCwd is used when the active conversation has no cwd.
	WorkspaceCwd string
	MaxVisible   int
}

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold *store.Store. It receives conversations via messages.
type App struct {
	cfg     AppConfig
	palette command.Palette

	conversations []catalog.Conversation
	activeID      string

	status string
	err    error
	width  int
	height int
	ready  bool
}

// NewApp creates an App with the given config.
func NewApp(cfg AppConfig) App {
	if cfg.Actions == nil {
		cfg.Actions = catalog.DefaultActions()
	}
	a := App{cfg: cfg}
	a.palette = command.New(nil, cfg.MaxVisible)
	a.palette.SetOrigin(1) // below the header line
	a.rebuild()
	return a
}

// Init loads the conversation list.
func (a App) Init() tea.Cmd {
	return a.load()
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.MouseMsg:
		if a.palette.IsActive() {
			var cmd tea.Cmd
			a.palette, cmd = a.palette.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.palette.SetWidth(msg.Width)
		return a, nil

	case ConversationsLoaded:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.conversations = msg.Conversations
		a.rebuild()
		return a, nil

	case ConversationsChanged:
		return a, a.load()

	case WatchStopped:
		a.err = fmt.Errorf("watching stopped: %w", msg.Err)
		return a, nil

	case command.Invoked:
		logging.Debug("Invoked", "item", msg.Item.ID, "op", msg.Invocation.Op)
		return a, a.dispatch(msg.Invocation)

	case ConversationCreated:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		a.activeID = msg.Conversation.ID
		a.status = "Created " + msg.Conversation.Label()
		return a, a.load()

	case ConversationSelected:
		if msg.Err != nil {
			a.err = msg.Err
			return a, nil
		}
		return a, a.load()

	case DiffViewerClosed:
		if msg.Err != nil {
			a.err = fmt.Errorf("diff viewer: %w", msg.Err)
		}
		return a, nil
	}

	if a.palette.IsActive() {
		var cmd tea.Cmd
		a.palette, cmd = a.palette.Update(msg)
		return a, cmd
	}
	return a, nil
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.palette.IsActive() {
		var cmd tea.Cmd
		a.palette, cmd = a.palette.Update(msg)
		return a, cmd
	}

	// Clear any existing error on key press
	a.err = nil

	switch msg.String() {
	case "q":
		return a, tea.Quit

	case "ctrl+k", "/":
		a.status = ""
		return a, a.palette.Activate()

	case "r":
		return a, a.load()
	}

	return a, nil
}

// dispatch runs a confirmed invocation. It is the palette's Dispatcher.
func (a *App) dispatch(inv catalog.Invocation) tea.Cmd {
	switch inv.Op {
	case catalog.OpNewConversation:
		if a.cfg.CreateConversation != nil {
			return a.cfg.CreateConversation(a.cwd())
		}

	case catalog.OpOpenDiffViewer:
		cwd := a.cwd()
		if cwd == "" {
			a.err = errors.New("no working directory for diff viewer")
			return nil
		}
		if a.cfg.OpenDiffViewer != nil {
			return a.cfg.OpenDiffViewer(cwd)
		}

	case catalog.OpSelectConversation:
		a.activeID = inv.ConversationID
		if c, ok := a.active(); ok {
			a.status = "Switched to " + c.Label()
		}
		a.rebuild()
		if a.cfg.SelectConversation != nil {
			return a.cfg.SelectConversation(inv.ConversationID)
		}

	default:
		logging.Warn("Unknown invocation", "op", inv.Op)
	}
	return nil
}

func (a App) load() tea.Cmd {
	if a.cfg.LoadConversations == nil {
		return nil
	}
	return a.cfg.LoadConversations()
}

func (a App) active() (catalog.Conversation, bool) {
	for _, c := range a.conversations {
		if c.ID == a.activeID {
			return c, true
		}
	}
	return catalog.Conversation{}, false
}

// cwd is the active conversation's directory, falling back to the workspace.
func (a App) cwd() string {
	if c, ok := a.active(); ok && c.Cwd != "" {
		return c.Cwd
	}
	return a.cfg.WorkspaceCwd
}

// rebuild regenerates the palette catalog from the current state.
func (a *App) rebuild() {
	caps := catalog.Capabilities{HasCwd: a.cwd() != ""}
	a.palette.SetItems(catalog.Build(a.cfg.Actions, a.conversations, caps))
}

// View renders the App.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(HeaderStyle.Render("palette"))
	b.WriteString("\n")
	used := 1

	if a.palette.IsActive() {
		pv := a.palette.View()
		b.WriteString(pv)
		b.WriteString("\n")
		used += lipgloss.Height(pv)
	}

	if a.err != nil {
		b.WriteString(ErrorStyle.Render("Error: " + a.err.Error()))
		b.WriteString("\n")
		used++
	}

	listHeight := a.height - used - 1
	b.WriteString(a.renderConversations(listHeight))

	content := b.String()
	if gap := a.height - lipgloss.Height(content) - 1; gap > 0 {
		content += strings.Repeat("\n", gap)
	}
	return content + "\n" + a.renderStatusBar()
}

func (a App) renderConversations(height int) string {
	if len(a.conversations) == 0 {
		return HelpStyle.Render("No conversations yet. Press ctrl+k to start one.")
	}
	if height <= 0 {
		return ""
	}

	var b strings.Builder
	for i, c := range a.conversations {
		if i >= height {
			break
		}
		style := NormalItem
		if c.ID == a.activeID {
			style = ActiveItem
		}
		line := style.Render(c.Label())
		if c.Cwd != "" {
			line += CwdStyle.Render(" " + c.Cwd)
		}
		if !c.UpdatedAt.IsZero() {
			line += CwdStyle.Render("  " + relativeTime(c.UpdatedAt))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (a App) renderStatusBar() string {
	keys := []struct{ key, desc string }{
		{"ctrl+k", "palette"},
		{"r", "reload"},
		{"q", "quit"},
	}
	var parts []string
	for _, k := range keys {
		parts = append(parts, StatusBarKey.Render(k.key)+" "+StatusBarText.Render(k.desc))
	}
	left := strings.Join(parts, "  ")

	right := fmt.Sprintf("%d conversations", len(a.conversations))
	if c, ok := a.active(); ok {
		right = c.Label() + " · " + right
	}
	if a.status != "" {
		right = a.status + " · " + right
	}
	right = StatusBarText.Render(right)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	return StatusBar.Width(max(a.width, 0)).Render(left + strings.Repeat(" ", gap) + right)
}

func relativeTime(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// Conversations returns the loaded conversations (for testing).
func (a App) Conversations() []catalog.Conversation {
	return a.conversations
}

// ActiveID returns the active conversation id (for testing).
func (a App) ActiveID() string {
	return a.activeID
}

// Palette returns the command palette (for testing).
func (a App) Palette() command.Palette {
	return a.palette
}
