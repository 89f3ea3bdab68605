// Package ui provides the Bubble Tea TUI for the palette.
package ui

import "github.com/abelbrown/palette/internal/catalog"

// ConversationsLoaded is sent when the conversation list has been read.
type ConversationsLoaded struct {
	Conversations []catalog.Conversation
	Err           error
}

// ConversationsChanged is sent by the file watcher when the source changes.
type ConversationsChanged struct{}

// WatchStopped is sent when the file watcher fails. The list is no longer
// refreshed automatically.
type WatchStopped struct {
	Err error
}

// ConversationCreated is sent after the New Conversation action completes.
type ConversationCreated struct {
	Conversation catalog.Conversation
	Err          error
}

// ConversationSelected is sent after a conversation has been activated.
type ConversationSelected struct {
	ID  string
	Err error
}

// DiffViewerClosed is sent when the external diff viewer exits.
type DiffViewerClosed struct {
	Err error
}
