package condition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rlch/wincond/condition"
)

func TestPrintTrue(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "(default)", condition.Print(condition.True{}))
}

func TestPrintNegatedExistsLeaf(t *testing.T) {
	t.Parallel()
	leaf := &condition.Leaf{
		Neg:    true,
		Target: condition.Target{Name: "_NET_WM_PID"},
		Op:     condition.Exists,
	}
	assert.Equal(t, "!_NET_WM_PID", condition.Print(leaf))
}

func TestPrintNegatedComparisonLeaf(t *testing.T) {
	t.Parallel()
	leaf := &condition.Leaf{
		Neg:         true,
		Target:      condition.Target{Predef: condition.PredefName, Name: "name"},
		Op:          condition.Eq,
		Match:       condition.Wildcard,
		PatternType: condition.StringPattern,
		PatternStr:  "xterm*",
	}
	assert.Equal(t, `name !%= "xterm*"`, condition.Print(leaf))
}

func TestPrintEscapesNonPrintable(t *testing.T) {
	t.Parallel()
	leaf := &condition.Leaf{
		Target:      condition.Target{Predef: condition.PredefName, Name: "name"},
		Op:          condition.Eq,
		PatternType: condition.StringPattern,
		PatternStr:  "a\x01b",
	}
	assert.Equal(t, `name = "a\x01b"`, condition.Print(leaf))
}

func TestPrintBranchNegation(t *testing.T) {
	t.Parallel()
	branch := &condition.Branch{
		Op:  condition.Or,
		Neg: true,
		Left: &condition.Leaf{
			Target: condition.Target{Predef: condition.PredefFocused},
			Op:     condition.Exists,
		},
		Right: &condition.Leaf{
			Target: condition.Target{Predef: condition.PredefFullscreen},
			Op:     condition.Exists,
		},
	}
	assert.Equal(t, "!(focused || fullscreen)", condition.Print(branch))
}
