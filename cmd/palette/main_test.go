package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abelbrown/palette/internal/source"
	"github.com/abelbrown/palette/internal/ui"
)

// setupCLITest points config and data at a temp home.
func setupCLITest(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("PALETTE_CONFIG", filepath.Join(home, "config.yaml"))
	return home
}

// run executes the CLI with args and returns stdout. Flag values persist on
// the package-level commands, so they are reset first.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, c := range []struct {
		flags map[string]string
		set   func(name, value string) error
	}{
		{map[string]string{"scores": "false", "cwd": ""}, rankCmd.Flags().Set},
		{map[string]string{"slug": "", "cwd": ""}, conversationsNewCmd.Flags().Set},
		{map[string]string{"force": "false"}, configInitCmd.Flags().Set},
	} {
		for name, value := range c.flags {
			require.NoError(t, c.set(name, value))
		}
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNewSlug(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC)

	assert.Equal(t, "proj-0314-0926", newSlug("/home/u/proj", now))
	assert.Equal(t, "conversation-0314-0926", newSlug("", now))
	assert.Equal(t, "conversation-0314-0926", newSlug("/", now))
}

func TestConversationsNewAndList(t *testing.T) {
	setupCLITest(t)

	out, err := run(t, "conversations", "new", "--slug", "bugfix-123", "--cwd", "/p/a")
	require.NoError(t, err)
	assert.Contains(t, out, "Created bugfix-123")

	out, err = run(t, "conversations", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "bugfix-123")
	assert.Contains(t, out, "/p/a")
}

func TestConversationsListEmpty(t *testing.T) {
	setupCLITest(t)

	out, err := run(t, "conversations", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No conversations.")
}

func TestConversationsImport(t *testing.T) {
	home := setupCLITest(t)
	file := filepath.Join(home, "convs.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`conversations:
  - id: c1
    slug: bugfix-123
    cwd: /p/a
  - id: c2
    slug: refactor-auth
`), 0o644))

	out, err := run(t, "conversations", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 new")

	out, err = run(t, "conversations", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 new")

	out, err = run(t, "rank", "auth")
	require.NoError(t, err)
	assert.Contains(t, out, "conv-c2")
	assert.NotContains(t, out, "conv-c1")
}

func TestRank(t *testing.T) {
	setupCLITest(t)

	_, err := run(t, "conversations", "new", "--slug", "bugfix-123", "--cwd", "/p/a")
	require.NoError(t, err)

	out, err := run(t, "rank", "new")
	require.NoError(t, err)
	assert.Contains(t, out, "new-conversation")
	assert.NotContains(t, out, "bugfix-123")

	out, err = run(t, "rank", "bug", "--scores")
	require.NoError(t, err)
	assert.Contains(t, out, "530.00")
	assert.Contains(t, out, "bugfix-123")

	out, err = run(t, "rank", "zzzz")
	require.NoError(t, err)
	assert.Contains(t, out, "No results found")
}

func TestRankDiffActionNeedsCwd(t *testing.T) {
	setupCLITest(t)

	out, err := run(t, "rank")
	require.NoError(t, err)
	assert.Contains(t, out, "new-conversation")
	assert.NotContains(t, out, "open-diffs")

	out, err = run(t, "rank", "--cwd", "/work")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "open-diffs")
}

func TestRankFromFile(t *testing.T) {
	home := setupCLITest(t)
	file := filepath.Join(home, "convs.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`conversations:
  - id: f1
    slug: from-file
`), 0o644))
	t.Setenv("PALETTE_CONVERSATIONS_FILE", file)

	out, err := run(t, "rank", "file")
	require.NoError(t, err)
	assert.Contains(t, out, "conv-f1")
}

func TestRankFromFileIncludesStoredConversations(t *testing.T) {
	home := setupCLITest(t)

	_, err := run(t, "conversations", "new", "--slug", "stored-notes", "--cwd", "/p/a")
	require.NoError(t, err)

	file := filepath.Join(home, "convs.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`conversations:
  - id: f1
    slug: from-file
`), 0o644))
	t.Setenv("PALETTE_CONVERSATIONS_FILE", file)

	out, err := run(t, "rank")
	require.NoError(t, err)
	assert.Contains(t, out, "stored-notes")
	assert.Contains(t, out, "conv-f1")

	out, err = run(t, "conversations", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "stored-notes")
	assert.Contains(t, out, "from-file")
}

func TestConversationsShow(t *testing.T) {
	home := setupCLITest(t)
	file := filepath.Join(home, "convs.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`conversations:
  - id: c1
    slug: bugfix-123
    cwd: /p/a
`), 0o644))
	_, err := run(t, "conversations", "import", file)
	require.NoError(t, err)

	out, err := run(t, "conversations", "show", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "bugfix-123")
	assert.Contains(t, out, "/p/a")

	_, err = run(t, "conversations", "show", "missing")
	assert.ErrorContains(t, err, "not found")
}

func TestConversationsExportRoundTrip(t *testing.T) {
	home := setupCLITest(t)

	_, err := run(t, "conversations", "new", "--slug", "bugfix-123", "--cwd", "/p/a")
	require.NoError(t, err)

	file := filepath.Join(home, "out", "convs.yaml")
	out, err := run(t, "conversations", "export", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 conversation(s)")

	convs, err := source.NewFile(file).Conversations(context.Background())
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "bugfix-123", convs[0].Slug)
	assert.Equal(t, "/p/a", convs[0].Cwd)
}

func TestConfigInit(t *testing.T) {
	home := setupCLITest(t)
	t.Setenv("PALETTE_WORKSPACE_CWD", "/from/env")

	out, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.yaml"), strings.TrimSpace(out))

	_, err = run(t, "config", "init")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "/from/env")

	_, err = run(t, "config", "init")
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestWatchConversationsReportsFailure(t *testing.T) {
	// The watcher cannot watch a directory that does not exist.
	w := source.NewWatcher(filepath.Join(t.TempDir(), "missing", "convs.yaml"), 0, nil)

	var sent []any
	err := watchConversations(context.Background(), w, func(msg tea.Msg) { sent = append(sent, msg) })
	require.NoError(t, err, "a failed watcher must not stop the program")

	require.Len(t, sent, 1)
	stopped, ok := sent[0].(ui.WatchStopped)
	require.True(t, ok)
	assert.Error(t, stopped.Err)
}
