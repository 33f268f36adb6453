package fetch_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rlch/wincond/atoms"
	"github.com/rlch/wincond/condition"
	"github.com/rlch/wincond/fetch"
	"github.com/rlch/wincond/track"
	"github.com/rlch/wincond/xconn"
)

func TestUpdateDecodesStringProperty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	conn := xconn.NewMock()
	cat, err := atoms.New(ctx, conn, zaptest.NewLogger(t))
	require.NoError(t, err)
	idx := track.New(cat, zaptest.NewLogger(t))

	cond, err := condition.Parse(`WM_NAME = "xterm"`)
	require.NoError(t, err)
	require.NoError(t, idx.Postprocess(ctx, cond))

	win := xconn.WindowID(42)
	conn.SetProperty(win, "WM_NAME", xconn.MockProperty{
		Type:     xconn.TypeString,
		Format:   8,
		ValueStr: append([]byte("xterm"), 0),
	})

	fetcher := fetch.New(conn, cat, idx, zaptest.NewLogger(t))
	state, err := fetcher.Update(ctx, win, win)
	require.NoError(t, err)

	leaf := cond.Root.(*condition.Leaf)
	cell := state.Cells[leaf.TargetID]
	require.True(t, cell.Valid)
	s, ok := cell.StringAt(0)
	require.True(t, ok)
	assert.Equal(t, "xterm", s)
}

func TestUpdateMissingPropertyIsInvalid(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	conn := xconn.NewMock()
	cat, err := atoms.New(ctx, conn, zaptest.NewLogger(t))
	require.NoError(t, err)
	idx := track.New(cat, zaptest.NewLogger(t))

	cond, err := condition.Parse(`_NET_WM_PID = 1`)
	require.NoError(t, err)
	require.NoError(t, idx.Postprocess(ctx, cond))

	fetcher := fetch.New(conn, cat, idx, zaptest.NewLogger(t))
	win := xconn.WindowID(7)
	state, err := fetcher.Update(ctx, win, win)
	require.NoError(t, err)

	leaf := cond.Root.(*condition.Leaf)
	assert.False(t, state.Cells[leaf.TargetID].Valid)
}

func TestUpdateRefetchesTruncatedProperty(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	conn := xconn.NewMock()
	conn.MaxChunk = 4 // force phase 1 to under-fetch by one 4-byte unit
	cat, err := atoms.New(ctx, conn, zaptest.NewLogger(t))
	require.NoError(t, err)
	idx := track.New(cat, zaptest.NewLogger(t))

	cond, err := condition.Parse(`_NET_WM_STATE[*] = "_NET_WM_STATE_HIDDEN"`)
	require.NoError(t, err)
	require.NoError(t, idx.Postprocess(ctx, cond))

	win := xconn.WindowID(9)
	hidden, err := cat.Intern(ctx, "_NET_WM_STATE_HIDDEN")
	require.NoError(t, err)
	fullscreen, err := cat.Intern(ctx, "_NET_WM_STATE_FULLSCREEN")
	require.NoError(t, err)
	conn.SetProperty(win, "_NET_WM_STATE", xconn.MockProperty{
		Type:       xconn.TypeAtom,
		Format:     32,
		ValueAtoms: []xconn.Atom{fullscreen, hidden},
	})

	fetcher := fetch.New(conn, cat, idx, zaptest.NewLogger(t))
	state, err := fetcher.Update(ctx, win, win)
	require.NoError(t, err)

	leaf := cond.Root.(*condition.Leaf)
	cell := state.Cells[leaf.TargetID]
	require.True(t, cell.Valid)
	assert.Len(t, cell.Atoms, 2)
	assert.True(t, len(conn.Calls) >= 2, "expected a refetch after a truncated first reply")
}

func TestUpdateOnlyRefetchesDirtyCells(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	conn := xconn.NewMock()
	cat, err := atoms.New(ctx, conn, zaptest.NewLogger(t))
	require.NoError(t, err)
	idx := track.New(cat, zaptest.NewLogger(t))

	cond, err := condition.Parse(`WM_NAME = "xterm"`)
	require.NoError(t, err)
	require.NoError(t, idx.Postprocess(ctx, cond))

	nameAtom, ok := cat.Cached("WM_NAME")
	require.True(t, ok)

	win := xconn.WindowID(5)
	conn.SetProperty(win, "WM_NAME", xconn.MockProperty{
		Type:     xconn.TypeString,
		Format:   8,
		ValueStr: append([]byte("xterm"), 0),
	})

	fetcher := fetch.New(conn, cat, idx, zaptest.NewLogger(t))

	_, err = fetcher.Update(ctx, win, win)
	require.NoError(t, err)
	firstCalls := len(conn.Calls)
	assert.Equal(t, 1, firstCalls, "first Update should fetch the only tracked property")

	// A second Update with nothing marked dirty should not re-fetch.
	_, err = fetcher.Update(ctx, win, win)
	require.NoError(t, err)
	assert.Equal(t, firstCalls, len(conn.Calls), "clean cells should not be re-fetched")

	// Changing the underlying value and marking it dirty should pick it
	// up on the next Update.
	conn.SetProperty(win, "WM_NAME", xconn.MockProperty{
		Type:     xconn.TypeString,
		Format:   8,
		ValueStr: append([]byte("renamed"), 0),
	})
	fetcher.MarkDirty(win, nameAtom, false)

	state, err := fetcher.Update(ctx, win, win)
	require.NoError(t, err)
	assert.Greater(t, len(conn.Calls), firstCalls, "dirtied cell should be re-fetched")

	leaf := cond.Root.(*condition.Leaf)
	s, ok := state.Cells[leaf.TargetID].StringAt(0)
	require.True(t, ok)
	assert.Equal(t, "renamed", s)
}

func TestMarkDirtyOnUntrackedPropertyIsNoop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	conn := xconn.NewMock()
	cat, err := atoms.New(ctx, conn, zaptest.NewLogger(t))
	require.NoError(t, err)
	idx := track.New(cat, zaptest.NewLogger(t))

	fetcher := fetch.New(conn, cat, idx, zaptest.NewLogger(t))
	// No rule ever tracked this atom; MarkDirty must not panic or
	// fabricate a tracked slot.
	fetcher.MarkDirty(xconn.WindowID(1), xconn.Atom(999), false)

	state, err := fetcher.Update(ctx, xconn.WindowID(1), xconn.WindowID(1))
	require.NoError(t, err)
	assert.Empty(t, state.Cells)
}
