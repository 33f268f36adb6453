// Package condition implements the window-matching rule language: a small
// boolean expression grammar over window attributes and X11 properties.
//
// A rule such as
//
//	name = "xterm" && class_g *= "XTerm"
//
// parses into a tree of [Node] values. [Parse] builds the tree; [Print]
// renders it back to text; [Postprocess] resolves atom names and PCRE
// patterns once the tree is attached to a live connection.
package condition

import "fmt"

// BranchOp is a logical operator joining two subtrees.
type BranchOp int

const (
	And BranchOp = iota
	Or
	Xor
)

func (op BranchOp) String() string {
	switch op {
	case And:
		return "&&"
	case Or:
		return "||"
	case Xor:
		return "XOR"
	default:
		return "?"
	}
}

// CompareOp is the comparison a leaf performs between a target value and its
// pattern.
type CompareOp int

const (
	Exists CompareOp = iota
	Eq
	Gt
	Ge
	Lt
	Le
)

// MatchMode selects how string comparisons are performed. Only meaningful
// when Op == Eq.
type MatchMode int

const (
	Exact MatchMode = iota
	Contains
	StartsWith
	Wildcard
	PCRE
)

// PatternType is the type of a leaf's literal pattern.
type PatternType int

const (
	// Undetermined patterns are only legal with Exists: the cell's own
	// discriminant decides string-vs-integer comparison at match time.
	Undetermined PatternType = iota
	StringPattern
	IntPattern
)

// PredefinedAttr names a window attribute resolved from the compositor's
// in-memory window record instead of an X11 property round-trip.
type PredefinedAttr int

// NoPredef marks a Target that names an X11 property atom rather than a
// predefined attribute.
const NoPredef PredefinedAttr = -1

const (
	PredefID PredefinedAttr = iota
	PredefX
	PredefY
	PredefX2
	PredefY2
	PredefWidth
	PredefHeight
	PredefWidthB
	PredefHeightB
	PredefBorderWidth
	PredefFullscreen
	PredefOverrideRedirect
	PredefARGB
	PredefFocused
	PredefGroupFocused
	PredefWMWin
	PredefBoundingShaped
	PredefRoundedCorners
	PredefClient
	PredefWindowType
	PredefLeader
	PredefName
	PredefClassG
	PredefClassI
	PredefRole
	numPredefs
)

// PredefInfo describes a predefined attribute's name and type.
type PredefInfo struct {
	Name       string
	IsString   bool
	Deprecated bool
}

// Predefs is the fixed table of reserved predefined-attribute identifiers.
// Index is the PredefinedAttr value. Deprecated entries (id, client,
// leader) are kept parseable so existing rule files still load, but always
// evaluate to false — see match.Eval.
var Predefs = [numPredefs]PredefInfo{
	PredefID:               {Name: "id", Deprecated: true},
	PredefX:                {Name: "x"},
	PredefY:                {Name: "y"},
	PredefX2:               {Name: "x2"},
	PredefY2:               {Name: "y2"},
	PredefWidth:            {Name: "width"},
	PredefHeight:           {Name: "height"},
	PredefWidthB:           {Name: "widthb"},
	PredefHeightB:          {Name: "heightb"},
	PredefBorderWidth:      {Name: "border_width"},
	PredefFullscreen:       {Name: "fullscreen"},
	PredefOverrideRedirect: {Name: "override_redirect"},
	PredefARGB:             {Name: "argb"},
	PredefFocused:          {Name: "focused"},
	PredefGroupFocused:     {Name: "group_focused"},
	PredefWMWin:            {Name: "wmwin"},
	PredefBoundingShaped:   {Name: "bounding_shaped"},
	PredefRoundedCorners:   {Name: "rounded_corners"},
	PredefClient:           {Name: "client", Deprecated: true},
	PredefWindowType:       {Name: "window_type", IsString: true},
	PredefLeader:           {Name: "leader", Deprecated: true},
	PredefName:             {Name: "name", IsString: true},
	PredefClassG:           {Name: "class_g", IsString: true},
	PredefClassI:           {Name: "class_i", IsString: true},
	PredefRole:             {Name: "role", IsString: true},
}

// LookupPredef returns the predefined attribute named name, or NoPredef if
// name isn't reserved.
func LookupPredef(name string) PredefinedAttr {
	for i, info := range Predefs {
		if info.Name == name {
			return PredefinedAttr(i)
		}
	}
	return NoPredef
}

// InvalidTargetID marks a leaf whose atom could not be resolved to a
// tracked property during postprocess.
const InvalidTargetID = -1

// AnyIndex is the index value meaning "any element of a multi-valued
// property matches" ([*] in rule text).
const AnyIndex = -1

// Target identifies what a leaf reads: either a predefined attribute or a
// named X11 property atom, on the client or frame window.
type Target struct {
	Predef   PredefinedAttr // NoPredef if this names an X11 atom instead
	Name     string         // atom name, meaningful only if Predef == NoPredef
	OnClient bool
}

func (t Target) IsPredefined() bool { return t.Predef != NoPredef }

// Node is a node of a parsed condition tree: [True], [Branch] or [Leaf].
type Node interface {
	isNode()
}

// True unconditionally matches. It prints as "(default)".
type True struct{}

func (True) isNode() {}

// Branch joins two subtrees with a logical operator, optionally negated.
type Branch struct {
	Op          BranchOp
	Neg         bool
	Left, Right Node
}

func (*Branch) isNode() {}

// Leaf is a single predicate against one target.
type Leaf struct {
	Neg        bool
	Target     Target
	Index      int // AnyIndex for [*], else the element index (brackets default to 0)
	Op         CompareOp
	Match      MatchMode
	IgnoreCase bool

	PatternType PatternType
	PatternStr  string
	PatternInt  int64

	// TargetID is assigned by Postprocess: the dense id of the tracked
	// property this leaf reads, or InvalidTargetID before postprocess
	// runs or if atom resolution failed. Predefined leaves never get a
	// TargetID.
	TargetID int

	// Regex is the compiled PCRE pattern, set by Postprocess for
	// Match == PCRE leaves. nil if compilation failed or hasn't run yet.
	Regex *CompiledRegex
}

func (*Leaf) isNode() {}

// CompiledRegex is implemented by the regex engine wired into postprocess;
// kept as an interface here so the AST package doesn't need to import the
// regex library directly.
type CompiledRegex interface {
	MatchString(s string) (bool, error)
}

// Combine builds a Branch joining left and right under op. It is the one
// place branch nodes are constructed, mirroring the original's
// c2h_comb_tree helper.
func Combine(op BranchOp, left, right Node) Node {
	return &Branch{Op: op, Left: left, Right: right}
}

// Condition pairs a parsed tree with caller-supplied, opaque data (e.g. a
// rule name or style payload). Conditions are kept in priority order by
// whatever owns the slice — the tree itself carries no list linkage.
type Condition struct {
	Root Node
	Data any
}

func (c *Condition) String() string {
	if c == nil || c.Root == nil {
		return ""
	}
	return Print(c.Root)
}

// GoString supports %#v debugging output.
func (c *Condition) GoString() string {
	return fmt.Sprintf("condition.Condition{Root: %s}", Print(c.Root))
}
