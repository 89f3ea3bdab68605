// Package catalog defines the searchable items shown in the palette and
// assembles them from the action registry and the conversation list.
package catalog

import (
	"context"
	"time"
)

// Kind tags where an item came from. It only affects display.
type Kind int

const (
	KindAction Kind = iota
	KindConversation
)

func (k Kind) String() string {
	switch k {
	case KindAction:
		return "action"
	case KindConversation:
		return "conversation"
	default:
		return "unknown"
	}
}

// Op identifies what happens when an item is confirmed.
type Op int

const (
	OpNone Op = iota
	OpNewConversation
	OpOpenDiffViewer
	OpSelectConversation
)

func (o Op) String() string {
	switch o {
	case OpNewConversation:
		return "new-conversation"
	case OpOpenDiffViewer:
		return "open-diff-viewer"
	case OpSelectConversation:
		return "select-conversation"
	default:
		return "none"
	}
}

// Invocation is the effect an item requests when confirmed.
// ConversationID is only set for OpSelectConversation.
type Invocation struct {
	Op             Op
	ConversationID string
}

// NewConversation requests a fresh conversation.
func NewConversation() Invocation { return Invocation{Op: OpNewConversation} }

// OpenDiffViewer requests the diff viewer for the current working directory.
func OpenDiffViewer() Invocation { return Invocation{Op: OpOpenDiffViewer} }

// SelectConversation requests switching to the conversation with the given id.
func SelectConversation(id string) Invocation {
	return Invocation{Op: OpSelectConversation, ConversationID: id}
}

// Dispatcher executes invocations on behalf of the palette.
type Dispatcher func(Invocation)

// Item is one searchable, invokable row. Items are immutable once built;
// a catalog rebuild produces new values.
type Item struct {
	ID         string
	Kind       Kind
	Title      string
	Subtitle   string // empty means absent
	Icon       string // display only
	Keywords   []string
	Invocation Invocation
}

// Conversation is the subset of a stored conversation the palette needs.
type Conversation struct {
	ID        string    `yaml:"id"`
	Slug      string    `yaml:"slug,omitempty"`
	Cwd       string    `yaml:"cwd,omitempty"`
	UpdatedAt time.Time `yaml:"updated_at,omitempty"`
}

// Label returns the slug, or the id when no slug is set.
func (c Conversation) Label() string {
	if c.Slug != "" {
		return c.Slug
	}
	return c.ID
}

// ConversationSource supplies the ordered conversation list.
type ConversationSource interface {
	Conversations(ctx context.Context) ([]Conversation, error)
}
