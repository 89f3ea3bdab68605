package catalog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestBuildActionsBeforeConversations(t *testing.T) {
	convs := []Conversation{
		{ID: "b", Slug: "second"},
		{ID: "a", Slug: "first"},
	}

	items := Build(DefaultActions(), convs, Capabilities{HasCwd: true})

	want := []string{"new-conversation", "open-diffs", "conv-b", "conv-a"}
	if diff := cmp.Diff(want, ids(items)); diff != "" {
		t.Errorf("item order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildConditionalAction(t *testing.T) {
	tests := []struct {
		name string
		caps Capabilities
		want []string
	}{
		{name: "without cwd", caps: Capabilities{}, want: []string{"new-conversation"}},
		{name: "with cwd", caps: Capabilities{HasCwd: true}, want: []string{"new-conversation", "open-diffs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Build(DefaultActions(), nil, tt.caps)
			assert.Equal(t, tt.want, ids(items))
		})
	}
}

func TestBuildConversationFields(t *testing.T) {
	t.Run("slug and cwd", func(t *testing.T) {
		items := Build(nil, []Conversation{{ID: "c1", Slug: "bugfix-123", Cwd: "/home/u/proj"}}, Capabilities{})
		require.Len(t, items, 1)

		it := items[0]
		assert.Equal(t, "conv-c1", it.ID)
		assert.Equal(t, KindConversation, it.Kind)
		assert.Equal(t, "bugfix-123", it.Title)
		assert.Equal(t, "/home/u/proj", it.Subtitle)
		assert.Equal(t, []string{"bugfix-123", "/home/u/proj"}, it.Keywords)
		assert.Equal(t, SelectConversation("c1"), it.Invocation)
	})

	t.Run("falls back to id", func(t *testing.T) {
		items := Build(nil, []Conversation{{ID: "c2"}}, Capabilities{})
		require.Len(t, items, 1)

		it := items[0]
		assert.Equal(t, "c2", it.Title)
		assert.Empty(t, it.Subtitle)
		assert.Empty(t, it.Keywords)
	})

	t.Run("keywords skip empty cwd", func(t *testing.T) {
		items := Build(nil, []Conversation{{ID: "c3", Slug: "notes"}}, Capabilities{})
		require.Len(t, items, 1)
		assert.Equal(t, []string{"notes"}, items[0].Keywords)
	})
}

func TestBuildDoesNotShareKeywordSlices(t *testing.T) {
	actions := DefaultActions()
	items := Build(actions, nil, Capabilities{})
	require.NotEmpty(t, items)

	items[0].Keywords[0] = "mutated"
	assert.Equal(t, "new", actions[0].Keywords[0])
}

func TestBuildKeepsDuplicates(t *testing.T) {
	convs := []Conversation{{ID: "x"}, {ID: "x"}}
	items := Build(nil, convs, Capabilities{})
	assert.Equal(t, []string{"conv-x", "conv-x"}, ids(items))
}

func TestInvocationString(t *testing.T) {
	assert.Equal(t, "new-conversation", OpNewConversation.String())
	assert.Equal(t, "open-diff-viewer", OpOpenDiffViewer.String())
	assert.Equal(t, "select-conversation", OpSelectConversation.String())
	assert.Equal(t, "action", KindAction.String())
	assert.Equal(t, "conversation", KindConversation.String())
}
