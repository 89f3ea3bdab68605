package catalog

// Action is an entry in the fixed action registry.
type Action struct {
	ID         string
	Title      string
	Subtitle   string
	Icon       string
	Keywords   []string
	Invocation Invocation

	// RequiresCwd hides the action unless a working directory is known.
	RequiresCwd bool
}

// Capabilities gates conditional actions.
type Capabilities struct {
	HasCwd bool
}

// ConversationIDPrefix is prepended to conversation ids to form item ids.
const ConversationIDPrefix = "conv-"

// DefaultActions returns the built-in actions in display order.
func DefaultActions() []Action {
	return []Action{
		{
			ID:         "new-conversation",
			Title:      "New Conversation",
			Subtitle:   "Start a new conversation",
			Icon:       "+",
			Keywords:   []string{"new", "create", "start", "conversation", "chat"},
			Invocation: NewConversation(),
		},
		{
			ID:          "open-diffs",
			Title:       "View Diffs",
			Subtitle:    "Open the git diff viewer",
			Icon:        "±",
			Keywords:    []string{"diff", "git", "changes", "view", "compare"},
			Invocation:  OpenDiffViewer(),
			RequiresCwd: true,
		},
	}
}

// Build projects actions and conversations into a single ordered item list.
// Actions come first in registry order, followed by conversations in the
// order given. Build has no side effects and does not deduplicate ids.
func Build(actions []Action, convs []Conversation, caps Capabilities) []Item {
	items := make([]Item, 0, len(actions)+len(convs))

	for _, a := range actions {
		if a.RequiresCwd && !caps.HasCwd {
			continue
		}
		items = append(items, Item{
			ID:         a.ID,
			Kind:       KindAction,
			Title:      a.Title,
			Subtitle:   a.Subtitle,
			Icon:       a.Icon,
			Keywords:   append([]string(nil), a.Keywords...),
			Invocation: a.Invocation,
		})
	}

	for _, c := range convs {
		items = append(items, conversationItem(c))
	}

	return items
}

func conversationItem(c Conversation) Item {
	var keywords []string
	for _, k := range []string{c.Slug, c.Cwd} {
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	return Item{
		ID:         ConversationIDPrefix + c.ID,
		Kind:       KindConversation,
		Title:      c.Label(),
		Subtitle:   c.Cwd,
		Icon:       "›",
		Keywords:   keywords,
		Invocation: SelectConversation(c.ID),
	}
}
