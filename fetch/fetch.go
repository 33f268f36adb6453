// Package fetch drives the two-phase GetProperty pipeline that keeps each
// window's tracked property values current: a cheap first request sized
// from what earlier rules are known to need, and a second request only
// when the server reports more data than fit.
//
// A window's cells persist across calls instead of being rebuilt from
// scratch. Update only re-fetches a cell whose needs_update flag is set —
// true for every cell the first time a window is seen, and true again for
// any cell MarkDirty names, the way a compositor's PropertyNotify stream
// drives re-fetching in the original implementation.
package fetch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rlch/wincond/atoms"
	"github.com/rlch/wincond/condition"
	"github.com/rlch/wincond/track"
	"github.com/rlch/wincond/xconn"
)

// Cell holds one tracked property's decoded value for one window.
type Cell struct {
	Valid bool
	Type  xconn.PropertyType

	Ints  []int64
	Atoms []xconn.Atom

	// Str is a run of NUL-separated string values, the shape
	// _NET_WM_NAME-style multi-valued string properties take on the
	// wire. Index 0 means "before the first NUL".
	Str []byte

	// needsUpdate is true until the next Update call refreshes this cell.
	// A freshly-seen cell starts dirty; MarkDirty sets it again.
	needsUpdate bool
}

// StringAt returns the index'th NUL-delimited substring of Str, or ("",
// false) if there aren't that many. index == track.AnyIndex scans every
// substring via the yield callback instead of returning one.
func (c *Cell) StringAt(index int) (string, bool) {
	if index < 0 {
		return "", false
	}
	start := 0
	n := 0
	for i := 0; i <= len(c.Str); i++ {
		if i == len(c.Str) || c.Str[i] == 0 {
			if n == index {
				return string(c.Str[start:i]), true
			}
			n++
			start = i + 1
		}
	}
	return "", false
}

// EachString calls yield with every NUL-delimited substring of Str,
// stopping early if yield returns true.
func (c *Cell) EachString(yield func(s string) bool) {
	start := 0
	for i := 0; i <= len(c.Str); i++ {
		if i == len(c.Str) || c.Str[i] == 0 {
			if yield(string(c.Str[start:i])) {
				return
			}
			start = i + 1
		}
	}
}

// WindowState is the full set of tracked property cells for one window,
// keyed by track.Index id.
type WindowState struct {
	Cells map[int]*Cell
}

func newWindowState() *WindowState {
	return &WindowState{Cells: make(map[int]*Cell)}
}

// Fetcher refreshes WindowState values from a live connection, persisting
// one WindowState per window it has ever been asked to update.
type Fetcher struct {
	conn      xconn.Conn
	catalogue *atoms.Catalogue
	index     *track.Index
	log       *zap.Logger

	mu     sync.Mutex
	states map[xconn.WindowID]*WindowState
}

// New builds a Fetcher over conn, driven by index's tracked-property table.
func New(conn xconn.Conn, catalogue *atoms.Catalogue, index *track.Index, log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fetcher{
		conn:      conn,
		catalogue: catalogue,
		index:     index,
		log:       log,
		states:    make(map[xconn.WindowID]*WindowState),
	}
}

// MarkDirty flags win's cell for property as needing a re-fetch on the
// next Update call — the entry point a compositor's PropertyNotify
// handler calls. A property this Fetcher's index never saw any rule
// reference is a no-op: there's no cell to mark.
func (f *Fetcher) MarkDirty(win xconn.WindowID, property xconn.Atom, onClient bool) {
	id, ok := f.index.IDOf(track.Key{Atom: property, OnClient: onClient})
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	state, ok := f.states[win]
	if !ok {
		state = newWindowState()
		f.states[win] = state
	}
	cell, ok := state.Cells[id]
	if !ok {
		cell = &Cell{}
		state.Cells[id] = cell
	}
	cell.needsUpdate = true
}

// Update refreshes every dirty tracked property for win (and, where a key
// asks for it, clientWin) and returns the resulting WindowState. Every
// cell is dirty the first time win is seen; afterwards only cells MarkDirty
// has touched since the last Update are re-fetched, the rest are returned
// as they last stood. A failure to fetch one property invalidates only
// that property's cell; the rest of the state is still usable.
func (f *Fetcher) Update(ctx context.Context, win, clientWin xconn.WindowID) (*WindowState, error) {
	f.mu.Lock()
	state, ok := f.states[win]
	if !ok {
		state = newWindowState()
		f.states[win] = state
	}
	f.mu.Unlock()

	for id, key := range f.index.Keys() {
		cell, ok := state.Cells[id]
		if !ok {
			cell = &Cell{needsUpdate: true}
			state.Cells[id] = cell
		}
		if !cell.needsUpdate {
			continue
		}

		target := win
		if key.OnClient {
			target = clientWin
		}
		fresh, err := f.updateOne(ctx, target, id, key)
		if err != nil {
			f.log.Debug("property fetch failed", zap.Int("id", id), zap.Error(err))
			fresh = &Cell{Valid: false}
		}
		fresh.needsUpdate = false
		state.Cells[id] = fresh
	}
	return state, nil
}

// updateOne runs the two-phase fetch for a single tracked property.
func (f *Fetcher) updateOne(ctx context.Context, win xconn.WindowID, id int, key track.Key) (*Cell, error) {
	maxIndex := f.index.MaxIndex(id)
	length := uint32(maxIndex + 1) // maxIndex == AnyIndex(-1) collapses to 0: "fetch whatever fits".

	reply, err := f.conn.GetProperty(ctx, win, key.Atom, 0, length)
	if err != nil {
		return nil, &condition.FetchError{Property: f.propertyLabel(key.Atom), Cause: err}
	}

	if reply.Empty() {
		return &Cell{Valid: false, Type: xconn.TypeNone}, nil
	}

	if reply.BytesAfter == 0 {
		return f.decode(ctx, reply), nil
	}

	// Phase 2a: the reply was truncated. Re-request with the exact
	// remaining length the server told us about.
	extra := elementsFor(reply, reply.BytesAfter)
	refetched, err := f.conn.GetProperty(ctx, win, key.Atom, lengthInUnits(reply), extra)
	if err != nil {
		return nil, &condition.FetchError{Property: f.propertyLabel(key.Atom), Cause: err}
	}

	merged := mergeReplies(reply, refetched)

	// Phase 2b: if the property grew again between the two requests,
	// give up rather than retry a third time — logged and invalidated,
	// matching the one-retry budget a compositor frame loop can afford.
	if refetched.BytesAfter != 0 {
		f.log.Warn("property grew during refetch, giving up", zap.Uint32("atom", uint32(key.Atom)))
		return &Cell{Valid: false}, nil
	}

	return f.decode(ctx, merged), nil
}

// propertyLabel names atom for error messages without risking a network
// round-trip: a cache hit gives the real name, a miss falls back to the
// numeric id.
func (f *Fetcher) propertyLabel(atom xconn.Atom) string {
	if name, ok := f.catalogue.NameCached(atom); ok {
		return name
	}
	return fmt.Sprintf("atom(%d)", atom)
}

// lengthInUnits reports how many 4-byte units the first reply already
// consumed, so the refetch starts where phase 1 left off.
func lengthInUnits(reply *xconn.PropertyReply) uint32 {
	switch reply.Type {
	case xconn.TypeInteger, xconn.TypeAtom:
		return uint32(len(reply.ValueInts) + len(reply.ValueAtoms))
	default:
		return uint32(len(reply.ValueStr) / 4)
	}
}

// elementsFor converts a BytesAfter count into the unit the property's
// format uses (4-byte units for everything; string data still rounds up
// to a whole unit count since GetProperty's length is always in units).
func elementsFor(reply *xconn.PropertyReply, bytesAfter uint32) uint32 {
	unit := uint32(4)
	if reply.Format == 8 {
		unit = 1
	}
	return (bytesAfter + unit - 1) / unit
}

func mergeReplies(first, second *xconn.PropertyReply) *xconn.PropertyReply {
	merged := &xconn.PropertyReply{Type: first.Type, Format: first.Format, BytesAfter: second.BytesAfter}
	merged.ValueInts = append(append([]int64(nil), first.ValueInts...), second.ValueInts...)
	merged.ValueAtoms = append(append([]xconn.Atom(nil), first.ValueAtoms...), second.ValueAtoms...)
	merged.ValueStr = append(append([]byte(nil), first.ValueStr...), second.ValueStr...)
	return merged
}

// decode turns a GetProperty reply into a Cell. For an ATOM-typed reply it
// also prefetches every value's name into the catalogue synchronously, so
// match.Eval never needs a live GetAtomName round-trip to compare an ATOM
// cell against a string pattern — matching stays a pure, network-free
// function the way its doc comment promises.
func (f *Fetcher) decode(ctx context.Context, reply *xconn.PropertyReply) *Cell {
	cell := &Cell{Valid: true, Type: reply.Type}
	switch reply.Type {
	case xconn.TypeInteger:
		cell.Ints = reply.ValueInts
	case xconn.TypeAtom:
		cell.Atoms = reply.ValueAtoms
		for _, a := range reply.ValueAtoms {
			if _, err := f.catalogue.Name(ctx, a); err != nil {
				f.log.Debug("failed to prefetch atom name", zap.Uint32("atom", uint32(a)), zap.Error(err))
			}
		}
	case xconn.TypeString:
		cell.Str = ensureTrailingNUL(reply.ValueStr)
	}
	return cell
}

// ensureTrailingNUL guards against a misbehaving server omitting the final
// NUL terminator a string property is supposed to end with.
func ensureTrailingNUL(b []byte) []byte {
	if len(b) == 0 || b[len(b)-1] != 0 {
		return append(append([]byte(nil), b...), 0)
	}
	return b
}
