// Package track assigns dense ids to the distinct (atom, on_client) pairs
// a rule set actually reads, so fetch can keep one small property-value
// slot per id instead of re-resolving atoms on every window update.
//
// Index plays the role the teacher's analysis.Analyzer plays for scaf
// files: it owns the walk over a parsed tree, collects diagnostics, and
// leaves the tree itself untouched except for the few fields (TargetID,
// Regex) postprocess is responsible for filling in.
package track

import (
	"context"
	"fmt"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"

	"github.com/rlch/wincond/atoms"
	"github.com/rlch/wincond/condition"
	"github.com/rlch/wincond/xconn"
)

// Key identifies one tracked property slot.
type Key struct {
	Atom     xconn.Atom
	OnClient bool
}

// AnyIndex mirrors condition.AnyIndex; kept local so fetch doesn't need to
// import condition just for this constant.
const AnyIndex = -1

// Index maps (atom, on_client) pairs to dense ids and records, per id, the
// highest element index any leaf reads (or AnyIndex if any leaf asked for
// "any element").
type Index struct {
	catalogue *atoms.Catalogue
	log       *zap.Logger

	keys       []Key          // id -> key, in first-seen order
	ids        map[Key]int    // key -> id
	maxIndices map[int]int    // id -> highest index seen, or AnyIndex
}

// New builds an empty Index over catalogue.
func New(catalogue *atoms.Catalogue, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{
		catalogue:  catalogue,
		log:        log,
		ids:        make(map[Key]int),
		maxIndices: make(map[int]int),
	}
}

// lowercaseAtomName reports whether s starts with a lowercase letter, the
// original's heuristic for "this is probably a typo'd predefined name"
// since every real X11 atom convention is upper-snake-case.
func lowercaseAtomName(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c >= 'a' && c <= 'z'
}

// Postprocess walks cond's tree, resolving every non-predefined leaf's
// target to a tracked property id, compiling PCRE patterns, and warning
// about deprecated predefined targets and suspicious-looking atom names.
// It is idempotent: leaves already carrying a valid TargetID are left
// alone, so re-running Postprocess after loading more rule files only
// does work for the new leaves.
//
// A leaf that fails to resolve or compile is invalidated in place — the
// rest of the tree is still usable — but its failure is also collected
// and returned wrapping a *condition.ResolveError or
// *condition.RegexCompileError, so a caller that cares can errors.As
// into the specific cause instead of just losing it to a log line.
func (idx *Index) Postprocess(ctx context.Context, cond *condition.Condition) error {
	if cond == nil || cond.Root == nil {
		return nil
	}
	var errs []error
	idx.walk(ctx, cond.Root, &errs)
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("track: %d leaf(s) failed postprocessing: %w", len(errs), errs[0])
}

func (idx *Index) walk(ctx context.Context, node condition.Node, errs *[]error) {
	switch n := node.(type) {
	case *condition.Branch:
		idx.walk(ctx, n.Left, errs)
		idx.walk(ctx, n.Right, errs)
	case *condition.Leaf:
		idx.processLeaf(ctx, n, errs)
	}
}

func (idx *Index) processLeaf(ctx context.Context, leaf *condition.Leaf, errs *[]error) {
	if leaf.Target.IsPredefined() {
		if condition.Predefs[leaf.Target.Predef].Deprecated {
			idx.log.Warn("rule uses a deprecated predefined target",
				zap.String("target", condition.Predefs[leaf.Target.Predef].Name))
		}
		idx.compileRegex(leaf, errs)
		return
	}

	if leaf.TargetID == condition.InvalidTargetID {
		if lowercaseAtomName(leaf.Target.Name) {
			idx.log.Warn("target name looks like a typo'd predefined attribute",
				zap.String("target", leaf.Target.Name))
		}

		atom, err := idx.catalogue.Intern(ctx, leaf.Target.Name)
		if err != nil {
			resolveErr := &condition.ResolveError{AtomName: leaf.Target.Name, Cause: err}
			idx.log.Warn("failed to resolve atom, leaf will never match",
				zap.String("target", leaf.Target.Name), zap.Error(resolveErr))
			*errs = append(*errs, resolveErr)
			return // leaf stays InvalidTargetID; tree is still usable.
		}

		key := Key{Atom: atom, OnClient: leaf.Target.OnClient}
		id, ok := idx.ids[key]
		if !ok {
			id = len(idx.keys)
			idx.ids[key] = id
			idx.keys = append(idx.keys, key)
			idx.maxIndices[id] = 0
		}
		leaf.TargetID = id
	}

	idx.bumpMaxIndex(leaf.TargetID, leaf.Index)
	idx.compileRegex(leaf, errs)
}

// bumpMaxIndex raises id's recorded max index, with AnyIndex sticky: once
// any leaf asks for [*], the slot is marked as needing every element and
// later narrower requests never undo that.
func (idx *Index) bumpMaxIndex(id, index int) {
	cur := idx.maxIndices[id]
	if cur == AnyIndex {
		return
	}
	if index == AnyIndex {
		idx.maxIndices[id] = AnyIndex
		return
	}
	if index > cur {
		idx.maxIndices[id] = index
	}
}

func (idx *Index) compileRegex(leaf *condition.Leaf, errs *[]error) {
	if leaf.Match != condition.PCRE || leaf.Regex != nil {
		return
	}
	opts := regexp2.RE2
	if leaf.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	re, err := regexp2.Compile(leaf.PatternStr, opts)
	if err != nil {
		compileErr := &condition.RegexCompileError{Pattern: leaf.PatternStr, Cause: err}
		idx.log.Warn("failed to compile PCRE pattern, leaf will never match",
			zap.String("pattern", leaf.PatternStr), zap.Error(compileErr))
		*errs = append(*errs, compileErr)
		return
	}
	var compiled condition.CompiledRegex = &regex2Adapter{re: re}
	leaf.Regex = &compiled
}

// regex2Adapter satisfies condition.CompiledRegex with a regexp2.Regexp.
type regex2Adapter struct {
	re *regexp2.Regexp
}

func (a *regex2Adapter) MatchString(s string) (bool, error) {
	return a.re.MatchString(s)
}

// Key returns the (atom, on_client) pair tracked under id.
func (idx *Index) Key(id int) (Key, bool) {
	if id < 0 || id >= len(idx.keys) {
		return Key{}, false
	}
	return idx.keys[id], true
}

// IDOf returns the dense id registered for key, if any.
func (idx *Index) IDOf(key Key) (int, bool) {
	id, ok := idx.ids[key]
	return id, ok
}

// MaxIndex returns the highest element index any leaf requests for id, or
// AnyIndex if some leaf asked for every element.
func (idx *Index) MaxIndex(id int) int {
	return idx.maxIndices[id]
}

// Len reports how many distinct tracked properties have been registered.
func (idx *Index) Len() int {
	return len(idx.keys)
}

// Keys returns every tracked key in id order, for fetch to iterate.
func (idx *Index) Keys() []Key {
	return append([]Key(nil), idx.keys...)
}
