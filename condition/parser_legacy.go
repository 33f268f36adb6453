package condition

// parseLegacy parses the deprecated "TARGET:MATCH[i]:PATTERN" form
// (detected by parseTop when the rule's second byte is ':'). Only four
// predefined targets and five match kinds were ever supported this way;
// everything else is unreachable through this path.
func (ps *parser) parseLegacy(text string) (Node, error) {
	s := newScanner(ps.filename, text)

	leaf := &Leaf{TargetID: InvalidTargetID}

	targetChar := s.advance()
	var predef PredefinedAttr
	switch targetChar {
	case 'n':
		predef = PredefName
	case 'i':
		predef = PredefClassI
	case 'g':
		predef = PredefClassG
	case 'r':
		predef = PredefRole
	default:
		return nil, parseErrorf(text, 0, "invalid legacy target character %q", targetChar)
	}
	leaf.Target.Predef = predef
	leaf.Target.Name = Predefs[predef].Name

	if s.peek() != ':' {
		return nil, parseErrorf(text, s.offset, "expected ':' after legacy target character")
	}
	s.advance()

	matchChar := s.advance()
	switch matchChar {
	case 'e':
		leaf.Match = Exact
	case 'a':
		leaf.Match = Contains
	case 's':
		leaf.Match = StartsWith
	case 'w':
		leaf.Match = Wildcard
	case 'p':
		leaf.Match = PCRE
	default:
		return nil, parseErrorf(text, s.offset-1, "invalid legacy match character %q", matchChar)
	}
	leaf.Op = Eq

	for s.peek() == 'i' {
		leaf.IgnoreCase = true
		s.advance()
	}

	if s.peek() != ':' {
		return nil, parseErrorf(text, s.offset, "expected ':' after legacy match character")
	}
	s.advance()

	if err := ps.parsePattern(s, leaf); err != nil {
		return nil, err
	}
	if leaf.PatternType != StringPattern {
		return nil, parseErrorf(text, s.offset, "legacy rules only support string patterns")
	}

	s.skipSpaces()
	if !s.eof() {
		return nil, parseErrorf(text, s.offset, "trailing characters after legacy rule")
	}

	return leaf, nil
}
