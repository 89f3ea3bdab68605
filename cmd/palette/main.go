// Command palette is a keyboard-driven command palette over conversations
// and workspace actions.
//
// Usage:
//
//	palette                              Run the TUI
//	palette rank <query> [--scores]      Print the ranked catalog for a query
//	palette conversations list           List stored conversations
//	palette conversations new            Create a conversation
//	palette conversations import <file>  Import conversations from YAML
package main

func main() {
	Execute()
}
