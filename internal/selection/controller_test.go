package selection

import (
	"testing"

	"github.com/abelbrown/palette/internal/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []catalog.Invocation
}

func (r *recorder) dispatch(inv catalog.Invocation) {
	r.calls = append(r.calls, inv)
}

func twoItems() []catalog.Item {
	convs := []catalog.Conversation{{ID: "c1", Slug: "bugfix-123", Cwd: "/home/u/proj"}}
	return catalog.Build(catalog.DefaultActions(), convs, catalog.Capabilities{})
}

func TestOpenStartsAtTop(t *testing.T) {
	c := New(twoItems(), nil)
	assert.False(t, c.IsOpen())
	assert.Equal(t, NoCursor, c.Cursor())

	c.Open()
	assert.True(t, c.IsOpen())
	assert.Equal(t, "", c.Query())
	assert.Equal(t, 0, c.Cursor())
	assert.Equal(t, 2, c.Len())
}

func TestOpenEmptyCatalog(t *testing.T) {
	c := New(nil, nil)
	c.Open()

	assert.True(t, c.IsOpen())
	assert.Equal(t, NoCursor, c.Cursor())
	_, ok := c.Selected()
	assert.False(t, ok)
}

func TestMoveNextClamps(t *testing.T) {
	c := New(twoItems(), nil)
	c.Open()

	assert.True(t, c.MoveNext())
	assert.False(t, c.MoveNext())
	assert.False(t, c.MoveNext())
	assert.Equal(t, 1, c.Cursor())
}

func TestMovePreviousClamps(t *testing.T) {
	c := New(twoItems(), nil)
	c.Open()

	assert.False(t, c.MovePrevious())
	assert.Equal(t, 0, c.Cursor())

	c.MoveNext()
	assert.True(t, c.MovePrevious())
	assert.False(t, c.MovePrevious())
	assert.Equal(t, 0, c.Cursor())
}

func TestQueryChangeResetsCursor(t *testing.T) {
	c := New(twoItems(), nil)
	c.Open()
	c.MoveNext()
	require.Equal(t, 1, c.Cursor())

	c.SetQuery("e")
	assert.Equal(t, "e", c.Query())
	assert.Equal(t, 0, c.Cursor())

	c.SetQuery("bug")
	require.Equal(t, 1, c.Len())
	assert.Equal(t, 0, c.Cursor())
	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "conv-c1", sel.ID)

	c.SetQuery("qqq")
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, NoCursor, c.Cursor())

	c.SetQuery("")
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 0, c.Cursor())
}

func TestNavigationOnEmptyListIsNoop(t *testing.T) {
	c := New(twoItems(), nil)
	c.Open()
	c.SetQuery("qqq")

	assert.False(t, c.MoveNext())
	assert.False(t, c.MovePrevious())
	assert.False(t, c.SetCursor(0))
	assert.Equal(t, NoCursor, c.Cursor())
}

func TestConfirmInvokesOnceAndCloses(t *testing.T) {
	rec := &recorder{}
	c := New(twoItems(), rec.dispatch)
	c.Open()
	c.MoveNext()

	inv, ok := c.Confirm()
	require.True(t, ok)
	assert.Equal(t, catalog.SelectConversation("c1"), inv)
	assert.Equal(t, []catalog.Invocation{catalog.SelectConversation("c1")}, rec.calls)
	assert.False(t, c.IsOpen())
	assert.Equal(t, NoCursor, c.Cursor())

	// a second confirm after close does nothing
	_, ok = c.Confirm()
	assert.False(t, ok)
	assert.Len(t, rec.calls, 1)
}

func TestConfirmEmptyListLeavesState(t *testing.T) {
	rec := &recorder{}
	c := New(twoItems(), rec.dispatch)
	c.Open()
	c.SetQuery("qqq")

	_, ok := c.Confirm()
	assert.False(t, ok)
	assert.Empty(t, rec.calls)
	assert.True(t, c.IsOpen())
	assert.Equal(t, "qqq", c.Query())
	assert.Equal(t, NoCursor, c.Cursor())
}

func TestDismissDiscardsSession(t *testing.T) {
	rec := &recorder{}
	c := New(twoItems(), rec.dispatch)
	c.Open()
	c.SetQuery("bug")

	c.Dismiss()
	assert.False(t, c.IsOpen())
	assert.Empty(t, rec.calls)
	assert.Equal(t, "", c.Query())
	assert.Equal(t, 0, c.Len())

	c.Open()
	assert.Equal(t, "", c.Query())
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 0, c.Cursor())
}

func TestSetQueryWhileClosedIsIgnored(t *testing.T) {
	c := New(twoItems(), nil)
	c.SetQuery("bug")
	assert.Equal(t, "", c.Query())
	assert.Equal(t, 0, c.Len())
}

func TestSetCatalogWhileOpenReranks(t *testing.T) {
	c := New(twoItems(), nil)
	c.Open()
	c.SetQuery("b")
	c.MoveNext()

	convs := []catalog.Conversation{
		{ID: "c1", Slug: "bugfix-123"},
		{ID: "c2", Slug: "build-cache"},
		{ID: "c3", Slug: "zzz"},
	}
	c.SetCatalog(catalog.Build(catalog.DefaultActions(), convs, catalog.Capabilities{}))

	assert.Equal(t, "b", c.Query())
	assert.Equal(t, 0, c.Cursor())
	ids := make([]string, 0, c.Len())
	for _, it := range c.Items() {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"conv-c1", "conv-c2"}, ids)
}

func TestSetCatalogWhileClosed(t *testing.T) {
	c := New(nil, nil)
	c.SetCatalog(twoItems())
	assert.False(t, c.IsOpen())
	assert.Len(t, c.CatalogItems(), 2)

	c.Open()
	assert.Equal(t, 2, c.Len())
}

func TestPointerHoverAndClick(t *testing.T) {
	rec := &recorder{}
	c := New(twoItems(), rec.dispatch)
	c.Open()

	assert.True(t, c.SetCursor(1))
	assert.Equal(t, 1, c.Cursor())
	assert.False(t, c.SetCursor(5))
	assert.False(t, c.SetCursor(-1))
	assert.Equal(t, 1, c.Cursor())

	_, ok := c.ConfirmAt(7)
	assert.False(t, ok)
	assert.True(t, c.IsOpen())

	inv, ok := c.ConfirmAt(0)
	require.True(t, ok)
	assert.Equal(t, catalog.NewConversation(), inv)
	assert.Equal(t, []catalog.Invocation{catalog.NewConversation()}, rec.calls)
	assert.False(t, c.IsOpen())
}

func TestItemsReturnsCopy(t *testing.T) {
	c := New(twoItems(), nil)
	c.Open()

	items := c.Items()
	items[0].Title = "changed"

	sel, ok := c.Selected()
	require.True(t, ok)
	assert.Equal(t, "New Conversation", sel.Title)
}
