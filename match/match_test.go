package match_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rlch/wincond/atoms"
	"github.com/rlch/wincond/condition"
	"github.com/rlch/wincond/fetch"
	"github.com/rlch/wincond/match"
	"github.com/rlch/wincond/track"
	"github.com/rlch/wincond/xconn"
)

func TestEvalPredefinedAttrs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cond, err := condition.Parse(`fullscreen && width > 100`)
	require.NoError(t, err)

	st := &match.State{Attrs: match.WindowAttrs{Fullscreen: true, Width: 200}}
	assert.True(t, match.Eval(ctx, cond.Root, st))

	st.Attrs.Width = 50
	assert.False(t, match.Eval(ctx, cond.Root, st))
}

func TestEvalDeprecatedPredefinedAlwaysFalse(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cond, err := condition.Parse(`id = 5`)
	require.NoError(t, err)
	assert.False(t, match.Eval(ctx, cond.Root, &match.State{}))
}

func TestEvalOverrideRedirectWithoutWMFrame(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	bareExists, err := condition.Parse(`override_redirect`)
	require.NoError(t, err)

	// A window with no WM frame is always treated as override-redirect,
	// regardless of the stored attribute.
	st := &match.State{Attrs: match.WindowAttrs{HasWMFrame: false, OverrideRedirect: false}}
	assert.True(t, match.Eval(ctx, bareExists.Root, st))

	compare, err := condition.Parse(`override_redirect = false`)
	require.NoError(t, err)

	st = &match.State{Attrs: match.WindowAttrs{HasWMFrame: true, OverrideRedirect: false}}
	assert.True(t, match.Eval(ctx, compare.Root, st))

	st.Attrs.OverrideRedirect = true
	assert.False(t, match.Eval(ctx, compare.Root, st))
}

func TestEvalStringPropertyMatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	conn := xconn.NewMock()
	cat, err := atoms.New(ctx, conn, zaptest.NewLogger(t))
	require.NoError(t, err)
	idx := track.New(cat, zaptest.NewLogger(t))

	cond, err := condition.Parse(`WM_CLASS[1] %= "XTerm*"`)
	require.NoError(t, err)
	require.NoError(t, idx.Postprocess(ctx, cond))

	win := xconn.WindowID(3)
	conn.SetProperty(win, "WM_CLASS", xconn.MockProperty{
		Type:     xconn.TypeString,
		Format:   8,
		ValueStr: append(append([]byte("xterm\x00"), []byte("XTerm")...), 0),
	})

	fetcher := fetch.New(conn, cat, idx, zaptest.NewLogger(t))
	state, err := fetcher.Update(ctx, win, win)
	require.NoError(t, err)

	st := &match.State{Props: state, Index: idx, Catalogue: cat}
	assert.True(t, match.Eval(ctx, cond.Root, st))
}

func TestEvalUnresolvedLeafNeverMatches(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	leaf := &condition.Leaf{
		Target:   condition.Target{Name: "_NEVER_TRACKED"},
		Op:       condition.Exists,
		TargetID: condition.InvalidTargetID,
	}
	assert.False(t, match.Eval(ctx, leaf, &match.State{}))
}

// TestEvalAtomPropertyMatchWithoutPriorIntern exercises an ATOM property
// whose values were never independently interned by the test, unlike
// TestUpdateRefetchesTruncatedProperty in fetch_test.go — proving that
// fetch's decode step, not a test's own Intern call, is what warms the
// catalogue cache that Eval relies on.
func TestEvalAtomPropertyMatchWithoutPriorIntern(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	conn := xconn.NewMock()
	cat, err := atoms.New(ctx, conn, zaptest.NewLogger(t))
	require.NoError(t, err)
	idx := track.New(cat, zaptest.NewLogger(t))

	cond, err := condition.Parse(`_NET_WM_STATE[*] = "_NET_WM_STATE_HIDDEN"`)
	require.NoError(t, err)
	require.NoError(t, idx.Postprocess(ctx, cond))

	win := xconn.WindowID(11)
	// Intern the value atom directly on the connection, bypassing
	// cat.Intern entirely — the catalogue must never have seen this name
	// before fetch runs, so the only way Eval can resolve it is via
	// fetch's own prefetch during decode.
	hidden, err := conn.InternAtom(ctx, "_NET_WM_STATE_HIDDEN", false)
	require.NoError(t, err)
	conn.SetProperty(win, "_NET_WM_STATE", xconn.MockProperty{
		Type:       xconn.TypeAtom,
		Format:     32,
		ValueAtoms: []xconn.Atom{hidden},
	})

	fetcher := fetch.New(conn, cat, idx, zaptest.NewLogger(t))
	state, err := fetcher.Update(ctx, win, win)
	require.NoError(t, err)

	st := &match.State{Props: state, Index: idx, Catalogue: cat}
	assert.True(t, match.Eval(ctx, cond.Root, st))
}

func TestEvalXorBranch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	left := &condition.Leaf{Target: condition.Target{Predef: condition.PredefFocused}, Op: condition.Eq, PatternType: condition.IntPattern, PatternInt: 1}
	right := &condition.Leaf{Target: condition.Target{Predef: condition.PredefFullscreen}, Op: condition.Eq, PatternType: condition.IntPattern, PatternInt: 1}
	node := condition.Combine(condition.Xor, left, right)

	assert.False(t, match.Eval(ctx, node, &match.State{Attrs: match.WindowAttrs{Focused: true, Fullscreen: true}}))
	assert.True(t, match.Eval(ctx, node, &match.State{Attrs: match.WindowAttrs{Focused: true, Fullscreen: false}}))
}
