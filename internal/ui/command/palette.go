package command

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/abelbrown/palette/internal/catalog"
	"github.com/abelbrown/palette/internal/selection"
)

// Invoked is emitted when the user confirms an item.
type Invoked struct {
	Item       catalog.Item
	Invocation catalog.Invocation
}

// KeyMap defines the palette key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Confirm  key.Binding
	Dismiss  key.Binding
	Complete key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:       key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "navigate")),
		Down:     key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "navigate")),
		Confirm:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("↵", "select")),
		Dismiss:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		Complete: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "complete")),
	}
}

// Palette is a command palette over conversations and actions
type Palette struct {
	input      textinput.Model
	ctrl       *selection.Controller
	keys       KeyMap
	width      int
	maxVisible int
	offset     int // first visible row
	originY    int // screen row of the palette's top border
}

// New creates a new command palette
func New(items []catalog.Item, maxVisible int) Palette {
	ti := textinput.New()
	ti.Placeholder = "Search conversations or actions..."
	ti.Prompt = "/ "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9"))
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))
	ti.CharLimit = 128

	if maxVisible <= 0 {
		maxVisible = 8
	}

	return Palette{
		input:      ti,
		ctrl:       selection.New(items, nil),
		keys:       DefaultKeyMap(),
		width:      80,
		maxVisible: maxVisible,
	}
}

// Activate shows the palette with an empty query
func (p *Palette) Activate() tea.Cmd {
	p.ctrl.Open()
	p.input.SetValue("")
	p.input.Focus()
	p.offset = 0
	return textinput.Blink
}

// Deactivate hides the palette without invoking anything
func (p *Palette) Deactivate() {
	p.ctrl.Dismiss()
	p.input.Blur()
	p.offset = 0
}

// IsActive returns whether palette is showing
func (p Palette) IsActive() bool {
	return p.ctrl.IsOpen()
}

// SetWidth sets the palette width
func (p *Palette) SetWidth(w int) {
	p.width = w
	p.input.Width = max(w-10, 0)
}

// SetOrigin records the screen row the palette is drawn at, for mouse hit testing.
func (p *Palette) SetOrigin(y int) {
	p.originY = y
}

// SetItems replaces the catalog. An open palette keeps its query and
// jumps back to the top match.
func (p *Palette) SetItems(items []catalog.Item) {
	p.ctrl.SetCatalog(items)
	p.offset = 0
}

// Controller exposes the selection state.
func (p Palette) Controller() *selection.Controller {
	return p.ctrl
}

// Update handles input
func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.IsActive() {
		return p, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Dismiss):
			p.Deactivate()
			return p, nil

		case key.Matches(msg, p.keys.Confirm):
			return p.confirm()

		case key.Matches(msg, p.keys.Up):
			p.ctrl.MovePrevious()
			p.scrollToCursor()
			return p, nil

		case key.Matches(msg, p.keys.Down):
			p.ctrl.MoveNext()
			p.scrollToCursor()
			return p, nil

		case key.Matches(msg, p.keys.Complete):
			if sel, ok := p.ctrl.Selected(); ok {
				p.input.SetValue(sel.Title)
				p.input.CursorEnd()
				p.setQuery(sel.Title)
			}
			return p, nil
		}

	case tea.MouseMsg:
		return p.handleMouse(msg)
	}

	oldValue := p.input.Value()

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)

	// Only re-rank when input actually changes
	if v := p.input.Value(); v != oldValue {
		p.setQuery(v)
	}

	return p, cmd
}

func (p Palette) handleMouse(msg tea.MouseMsg) (Palette, tea.Cmd) {
	row, ok := p.rowAt(msg.Y)
	if !ok {
		return p, nil
	}
	switch {
	case msg.Action == tea.MouseActionMotion:
		p.ctrl.SetCursor(row)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if p.ctrl.SetCursor(row) {
			return p.confirm()
		}
	}
	return p, nil
}

func (p Palette) confirm() (Palette, tea.Cmd) {
	item, ok := p.ctrl.Selected()
	if !ok {
		return p, nil
	}
	inv, ok := p.ctrl.Confirm()
	if !ok {
		return p, nil
	}
	p.input.Blur()
	p.offset = 0
	return p, func() tea.Msg {
		return Invoked{Item: item, Invocation: inv}
	}
}

func (p *Palette) setQuery(q string) {
	p.ctrl.SetQuery(q)
	p.offset = 0
}

func (p *Palette) visibleRows() int {
	return min(p.maxVisible, p.ctrl.Len())
}

// scrollToCursor keeps the cursor inside the visible window.
func (p *Palette) scrollToCursor() {
	cur := p.ctrl.Cursor()
	if cur < 0 {
		p.offset = 0
		return
	}
	visible := p.visibleRows()
	if cur < p.offset {
		p.offset = cur
	} else if cur >= p.offset+visible {
		p.offset = cur - visible + 1
	}
}

// contentWidth is the usable width inside the border and padding.
func (p Palette) contentWidth() int {
	return max(p.width-6, 1)
}

// headerLines counts rendered lines above the first item row: border,
// input, divider and the optional "more above" marker.
func (p Palette) headerLines() int {
	n := 3
	if p.offset > 0 {
		n++
	}
	return n
}

// rowAt maps a screen row to a ranked list position.
func (p Palette) rowAt(y int) (int, bool) {
	rel := y - p.originY - p.headerLines()
	if rel < 0 || rel >= p.visibleRows() {
		return 0, false
	}
	idx := p.offset + rel
	if idx >= p.ctrl.Len() {
		return 0, false
	}
	return idx, true
}

// Suggest returns the catalog title closest to query by edit distance, for
// the empty-results hint. Distant titles are not suggested.
func Suggest(query string, items []catalog.Item) (string, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return "", false
	}
	limit := max(1, len([]rune(q))/3)

	best, bestDist := "", limit+1
	for _, it := range items {
		d := levenshtein.ComputeDistance(q, strings.ToLower(it.Title))
		if d < bestDist {
			best, bestDist = it.Title, d
		}
	}
	return best, best != ""
}

// matchedPositions returns the byte offsets in title to highlight for query.
func matchedPositions(query, title string) map[int]bool {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	matches := fuzzy.Find(query, []string{title})
	if len(matches) == 0 {
		return nil
	}
	pos := make(map[int]bool, len(matches[0].MatchedIndexes))
	for _, i := range matches[0].MatchedIndexes {
		pos[i] = true
	}
	return pos
}

// View renders the palette
func (p Palette) View() string {
	if !p.IsActive() {
		return ""
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#30363d")).
		Background(lipgloss.Color("#161b22")).
		Padding(0, 1).
		Width(max(p.width-4, 0))

	itemStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#c9d1d9")).
		Padding(0, 1)

	selectedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#58a6ff")).
		Background(lipgloss.Color("#21262d")).
		Bold(true).
		Padding(0, 1)

	matchStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f0883e")).
		Bold(true)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#8b949e"))

	badgeStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#484f58")).
		Background(lipgloss.Color("#21262d")).
		Padding(0, 1)

	// Rows are clipped to the content width so each item stays on one
	// line; rowAt depends on it.
	clip := lipgloss.NewStyle().MaxWidth(p.contentWidth())

	var b strings.Builder

	b.WriteString(p.input.View())
	b.WriteString("\n")

	dividerWidth := max(p.width-8, 0)
	b.WriteString(lipgloss.NewStyle().
		Foreground(lipgloss.Color("#30363d")).
		Render(strings.Repeat("─", dividerWidth)))
	b.WriteString("\n")

	items := p.ctrl.Items()
	cursor := p.ctrl.Cursor()
	query := p.ctrl.Query()

	start := p.offset
	end := min(start+p.visibleRows(), len(items))

	if start > 0 {
		b.WriteString(descStyle.Render("  ↑ more above"))
		b.WriteString("\n")
	}

	for i := start; i < end; i++ {
		item := items[i]

		style := itemStyle
		marker := "  "
		if i == cursor {
			style = selectedStyle
			marker = "› "
		}

		title := highlight(item.Title, matchedPositions(query, item.Title), matchStyle)
		line := style.Render(marker + item.Icon + " " + title)
		if item.Subtitle != "" {
			line += descStyle.Render(" " + item.Subtitle)
		}

		if item.Kind == catalog.KindAction {
			badge := badgeStyle.Render("Action")
			padding := p.width - 10 - lipgloss.Width(line) - lipgloss.Width(badge)
			if padding > 0 {
				line += strings.Repeat(" ", padding) + badge
			}
		}

		b.WriteString(clip.Render(line))
		b.WriteString("\n")
	}

	if end < len(items) {
		b.WriteString(descStyle.Render("  ↓ more below"))
		b.WriteString("\n")
	}

	if len(items) == 0 {
		b.WriteString(descStyle.Render("  No results found"))
		b.WriteString("\n")
		if s, ok := Suggest(query, p.ctrl.CatalogItems()); ok {
			b.WriteString(descStyle.Render("  Did you mean \"" + s + "\"?"))
			b.WriteString("\n")
		}
	}

	help := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#484f58")).
		Render("↑↓ to navigate  ↵ to select  tab complete  esc to close")
	b.WriteString(clip.Render(help))

	return containerStyle.Render(b.String())
}

// highlight renders the runes at the given byte offsets with style.
func highlight(s string, pos map[int]bool, style lipgloss.Style) string {
	if len(pos) == 0 {
		return s
	}
	var b strings.Builder
	for i, r := range s {
		if pos[i] {
			b.WriteString(style.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
