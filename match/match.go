// Package match evaluates a parsed condition tree against one window's
// attributes and fetched properties. Eval is a pure function: it never
// touches the network, so the same WindowAttrs+WindowState pair always
// produces the same verdict.
package match

import (
	"context"
	"strings"

	"github.com/danwakefield/fnmatch"

	"github.com/rlch/wincond/atoms"
	"github.com/rlch/wincond/condition"
	"github.com/rlch/wincond/fetch"
	"github.com/rlch/wincond/track"
	"github.com/rlch/wincond/xconn"
)

// WindowAttrs carries the predefined, in-memory attributes of a window —
// the ones a compositor already tracks for its own bookkeeping and never
// needs an X11 round-trip to read.
type WindowAttrs struct {
	X, Y, X2, Y2          int64
	Width, Height         int64
	WidthB, HeightB       int64
	BorderWidth           int64
	Fullscreen            bool
	OverrideRedirect      bool
	HasWMFrame            bool // used to special-case override_redirect, see Eval
	ARGB                  bool
	Focused               bool
	GroupFocused          bool
	WMWin                 bool
	BoundingShaped        bool
	RoundedCorners        bool
	WindowType            string // one of the win_defs.h type names, e.g. "dialog"
	Name, ClassG, ClassI  string
	Role                  string
}

// State bundles everything a match needs beyond the rule tree itself.
type State struct {
	Attrs     WindowAttrs
	Props     *fetch.WindowState
	Index     *track.Index
	Catalogue *atoms.Catalogue
}

// Eval reports whether node matches st. It never returns an error: atom
// resolution and regex compilation failures are already baked into the
// tree by track.Index.Postprocess (a leaf with an unresolved target or
// uncompiled regex simply never matches). ctx is accepted for symmetry
// with the rest of the pipeline's calls but is never used: every value
// Eval reads was already resolved by fetch and track before Eval runs.
func Eval(ctx context.Context, node condition.Node, st *State) bool {
	switch n := node.(type) {
	case condition.True:
		return true
	case *condition.Branch:
		return evalBranch(ctx, n, st)
	case *condition.Leaf:
		return evalLeaf(n, st) != n.Neg
	default:
		return false
	}
}

func evalBranch(ctx context.Context, n *condition.Branch, st *State) bool {
	left := Eval(ctx, n.Left, st)
	right := Eval(ctx, n.Right, st)
	var result bool
	switch n.Op {
	case condition.And:
		result = left && right
	case condition.Or:
		result = left || right
	case condition.Xor:
		result = left != right
	}
	return result != n.Neg
}

// evalLeaf returns the leaf's raw (pre-negation) verdict; Eval applies Neg.
func evalLeaf(n *condition.Leaf, st *State) bool {
	if n.Target.IsPredefined() {
		if condition.Predefs[n.Target.Predef].Deprecated {
			return false
		}
		return evalPredefined(n, st)
	}
	return evalProperty(n, st)
}

func evalPredefined(n *condition.Leaf, st *State) bool {
	a := st.Attrs
	switch n.Target.Predef {
	case condition.PredefOverrideRedirect:
		// A window with no WM-managed frame is treated as
		// override-redirect even if the attribute says otherwise: an
		// unmanaged window by definition has no frame to check.
		if !a.HasWMFrame {
			return n.Op == condition.Exists || compareInt(1, n)
		}
		return boolLeaf(a.OverrideRedirect, n)
	case condition.PredefX:
		return intLeaf(a.X, n)
	case condition.PredefY:
		return intLeaf(a.Y, n)
	case condition.PredefX2:
		return intLeaf(a.X2, n)
	case condition.PredefY2:
		return intLeaf(a.Y2, n)
	case condition.PredefWidth:
		return intLeaf(a.Width, n)
	case condition.PredefHeight:
		return intLeaf(a.Height, n)
	case condition.PredefWidthB:
		return intLeaf(a.WidthB, n)
	case condition.PredefHeightB:
		return intLeaf(a.HeightB, n)
	case condition.PredefBorderWidth:
		return intLeaf(a.BorderWidth, n)
	case condition.PredefFullscreen:
		return boolLeaf(a.Fullscreen, n)
	case condition.PredefARGB:
		return boolLeaf(a.ARGB, n)
	case condition.PredefFocused:
		return boolLeaf(a.Focused, n)
	case condition.PredefGroupFocused:
		return boolLeaf(a.GroupFocused, n)
	case condition.PredefWMWin:
		return boolLeaf(a.WMWin, n)
	case condition.PredefBoundingShaped:
		return boolLeaf(a.BoundingShaped, n)
	case condition.PredefRoundedCorners:
		return boolLeaf(a.RoundedCorners, n)
	case condition.PredefWindowType:
		if n.Op == condition.Exists {
			return true
		}
		return matchString(n, a.WindowType)
	case condition.PredefName:
		if n.Op == condition.Exists {
			return a.Name != ""
		}
		return matchString(n, a.Name)
	case condition.PredefClassG:
		if n.Op == condition.Exists {
			return a.ClassG != ""
		}
		return matchString(n, a.ClassG)
	case condition.PredefClassI:
		if n.Op == condition.Exists {
			return a.ClassI != ""
		}
		return matchString(n, a.ClassI)
	case condition.PredefRole:
		if n.Op == condition.Exists {
			return a.Role != ""
		}
		return matchString(n, a.Role)
	default:
		return false
	}
}

func boolLeaf(v bool, n *condition.Leaf) bool {
	if n.Op == condition.Exists {
		return true
	}
	i := int64(0)
	if v {
		i = 1
	}
	return compareInt(i, n)
}

func intLeaf(v int64, n *condition.Leaf) bool {
	if n.Op == condition.Exists {
		return true
	}
	return compareInt(v, n)
}

func compareInt(v int64, n *condition.Leaf) bool {
	switch n.Op {
	case condition.Eq:
		return v == n.PatternInt
	case condition.Gt:
		return v > n.PatternInt
	case condition.Ge:
		return v >= n.PatternInt
	case condition.Lt:
		return v < n.PatternInt
	case condition.Le:
		return v <= n.PatternInt
	default:
		return false
	}
}

func evalProperty(n *condition.Leaf, st *State) bool {
	if n.TargetID == condition.InvalidTargetID || st.Props == nil {
		return false
	}
	cell, ok := st.Props.Cells[n.TargetID]
	if !ok || !cell.Valid {
		return false
	}

	if n.Op == condition.Exists {
		return true
	}

	switch n.PatternType {
	case condition.IntPattern:
		return matchIntCell(cell, n)
	default:
		return matchStringCell(cell, n, st)
	}
}

func matchIntCell(cell *fetch.Cell, n *condition.Leaf) bool {
	vals := cell.Ints
	if n.Index == condition.AnyIndex {
		for _, v := range vals {
			if compareInt(v, n) {
				return true
			}
		}
		return false
	}
	if n.Index < 0 || n.Index >= len(vals) {
		return false
	}
	return compareInt(vals[n.Index], n)
}

func matchStringCell(cell *fetch.Cell, n *condition.Leaf, st *State) bool {
	if cell.Type == xconn.TypeAtom {
		return matchAtomCell(cell, n, st)
	}
	return matchByteStringCell(cell, n)
}

func matchByteStringCell(cell *fetch.Cell, n *condition.Leaf) bool {
	if n.Index == condition.AnyIndex {
		found := false
		cell.EachString(func(s string) bool {
			if matchString(n, s) {
				found = true
				return true
			}
			return false
		})
		return found
	}
	s, ok := cell.StringAt(n.Index)
	if !ok {
		return false
	}
	return matchString(n, s)
}

// matchAtomCell only ever reads the catalogue's cache: fetch.decode
// prefetches every ATOM value's name while it's fetching the property, so
// by the time a cell reaches Eval its atoms' names are already warm. An
// atom that somehow isn't cached never matches rather than falling back
// to a live GetAtomName round-trip — Eval stays pure.
func matchAtomCell(cell *fetch.Cell, n *condition.Leaf, st *State) bool {
	resolve := func(a xconn.Atom) bool {
		name, ok := st.Catalogue.NameCached(a)
		if !ok {
			return false
		}
		return matchString(n, name)
	}
	if n.Index == condition.AnyIndex {
		for _, a := range cell.Atoms {
			if resolve(a) {
				return true
			}
		}
		return false
	}
	if n.Index < 0 || n.Index >= len(cell.Atoms) {
		return false
	}
	return resolve(cell.Atoms[n.Index])
}

func matchString(n *condition.Leaf, s string) bool {
	pattern := n.PatternStr

	switch n.Match {
	case condition.PCRE:
		if n.Regex == nil {
			return false
		}
		ok, err := (*n.Regex).MatchString(s)
		return err == nil && ok
	case condition.Wildcard:
		flags := fnmatch.FNM_NOESCAPE
		if n.IgnoreCase {
			flags |= fnmatch.FNM_CASEFOLD
		}
		return fnmatch.Match(pattern, s, flags)
	case condition.Contains:
		return containsFold(s, pattern, n.IgnoreCase)
	case condition.StartsWith:
		return startsWithFold(s, pattern, n.IgnoreCase)
	default:
		return equalFold(s, pattern, n.IgnoreCase)
	}
}

func containsFold(s, sub string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}
	return strings.Contains(s, sub)
}

func startsWithFold(s, prefix string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.HasPrefix(strings.ToLower(s), strings.ToLower(prefix))
	}
	return strings.HasPrefix(s, prefix)
}

func equalFold(s, want string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(s, want)
	}
	return s == want
}
