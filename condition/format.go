package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders node back to rule syntax. Print(node) fed back through
// Parse always reproduces a tree that Print renders identically again
// (the round-trip law); it need not reproduce the original source text
// byte for byte, since parsing discards whitespace and resolves aliases.
func Print(node Node) string {
	var b strings.Builder
	printNode(&b, node)
	return b.String()
}

func printNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case True:
		b.WriteString("(default)")
	case *Branch:
		// Negation prints as a '!' prefix right before the group's own
		// '(', never as a post-hoc rewrite of the shared builder — b
		// already holds whatever a sibling wrote before this call, and
		// mutating that would corrupt it for any non-root negated branch.
		if n.Neg {
			b.WriteByte('!')
		}
		b.WriteByte('(')
		printNode(b, n.Left)
		switch n.Op {
		case And:
			b.WriteString(" && ")
		case Or:
			b.WriteString(" || ")
		case Xor:
			b.WriteString(" XOR ")
		}
		printNode(b, n.Right)
		b.WriteByte(')')
	case *Leaf:
		printLeaf(b, n)
	default:
		b.WriteString("?")
	}
}

func printLeaf(b *strings.Builder, n *Leaf) {
	// EXISTS prints '!' right before the target name; every other
	// operator prints it right before the qualifier char instead.
	if n.Neg && n.Op == Exists {
		b.WriteByte('!')
	}
	if n.Target.IsPredefined() {
		b.WriteString(Predefs[n.Target.Predef].Name)
	} else {
		b.WriteString(n.Target.Name)
	}

	if n.Target.OnClient {
		b.WriteByte('@')
	}

	if !n.Target.IsPredefined() {
		if n.Index == AnyIndex {
			b.WriteString("[*]")
		} else if n.Index != 0 {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(n.Index))
			b.WriteByte(']')
		}
	}

	if n.Op == Exists {
		return
	}

	b.WriteByte(' ')
	if n.Neg {
		b.WriteByte('!')
	}

	switch n.Match {
	case Contains:
		b.WriteByte('*')
	case StartsWith:
		b.WriteByte('^')
	case Wildcard:
		b.WriteByte('%')
	case PCRE:
		b.WriteByte('~')
	}
	if n.IgnoreCase {
		b.WriteByte('?')
	}

	switch n.Op {
	case Eq:
		b.WriteByte('=')
	case Gt:
		b.WriteByte('>')
	case Ge:
		b.WriteString(">=")
	case Lt:
		b.WriteByte('<')
	case Le:
		b.WriteString("<=")
	}
	b.WriteByte(' ')

	switch n.PatternType {
	case IntPattern:
		b.WriteString(strconv.FormatInt(n.PatternInt, 10))
	default:
		b.WriteString(quoteString(n.PatternStr))
	}
}

// quoteString renders s as a double-quoted pattern literal with the same
// escape set the original printer uses.
func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\a':
			b.WriteString(`\a`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		case '\v':
			b.WriteString(`\v`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		default:
			if c < 0x20 || c >= 0x7f {
				fmt.Fprintf(&b, `\x%02x`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
