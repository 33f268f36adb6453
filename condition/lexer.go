package condition

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// scanner walks a rule string byte by byte, tracking line/column the way
// participle's lexer.Position does. The condition grammar mixes
// character-level decisions (skip spaces, peek "!", peek a digit) deeply
// enough into its structure that a hand-rolled scanner driven directly by
// the recursive-descent parser is a better fit than a token stream — the
// same judgment call the teacher's DSL lexer makes with its own
// lexerState type, just without an intermediate token channel.
type scanner struct {
	filename string
	input    string
	offset   int
	line     int
	col      int
}

func newScanner(filename, input string) *scanner {
	return &scanner{filename: filename, input: input, line: 1, col: 1}
}

func (s *scanner) eof() bool { return s.offset >= len(s.input) }

func (s *scanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.input[s.offset]
}

func (s *scanner) peekAt(n int) byte {
	if s.offset+n >= len(s.input) {
		return 0
	}
	return s.input[s.offset+n]
}

func (s *scanner) advance() byte {
	c := s.peek()
	if c == 0 {
		return 0
	}
	s.offset++
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return c
}

func (s *scanner) skipSpaces() {
	for !s.eof() && isSpace(s.peek()) {
		s.advance()
	}
}

func (s *scanner) pos() lexer.Position {
	return lexer.Position{Filename: s.filename, Offset: s.offset, Line: s.line, Column: s.col}
}

// rest returns the unconsumed remainder of the input, used by error
// messages and by the leaf/string scanners that need to look ahead by hand.
func (s *scanner) rest() string { return s.input[s.offset:] }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isTargetChar(c byte) bool {
	return isAlnum(c) || c == '_' || c == '.'
}
