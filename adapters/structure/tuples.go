package structure

import (
	"fmt"
	"strings"
	"unicode"

	"bayesview/domain/core"
)

// tupleScanner reads a bracketed list of string tuples such as
// [('ex', 'gr'), ("su", "gr")]. Inner groups may use () or [].
type tupleScanner struct {
	src string
	pos int
}

func parseTuples(src string) ([][]string, error) {
	s := &tupleScanner{src: src}
	s.skipSpace()
	if s.eof() {
		return nil, core.NewMalformedStructureError("empty structure file")
	}
	if err := s.expect('['); err != nil {
		return nil, err
	}

	var edges [][]string
	for {
		s.skipSpace()
		if s.peek() == ']' {
			s.pos++
			break
		}
		group, err := s.group()
		if err != nil {
			return nil, err
		}
		edges = append(edges, group)
		if done, err := s.separator(']'); err != nil {
			return nil, err
		} else if done {
			break
		}
	}

	s.skipSpace()
	if !s.eof() {
		return nil, s.errorf("unexpected %q after edge list", s.peek())
	}
	return edges, nil
}

func (s *tupleScanner) group() ([]string, error) {
	var closing byte
	switch s.peek() {
	case '(':
		closing = ')'
	case '[':
		closing = ']'
	default:
		return nil, s.errorf("expected tuple, found %q", s.peek())
	}
	s.pos++

	var names []string
	for {
		s.skipSpace()
		if s.peek() == closing {
			s.pos++
			return names, nil
		}
		name, err := s.str()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if done, err := s.separator(closing); err != nil {
			return nil, err
		} else if done {
			return names, nil
		}
	}
}

// str reads a quoted name. Backslash escapes follow Python string literals:
// \\, \' and \" stand for the character itself, \n and \t for newline and
// tab, and any other escape is kept verbatim.
func (s *tupleScanner) str() (string, error) {
	quote := s.peek()
	if quote != '\'' && quote != '"' {
		return "", s.errorf("expected quoted name, found %q", quote)
	}
	s.pos++

	var sb strings.Builder
	for !s.eof() {
		c := s.src[s.pos]
		s.pos++
		switch {
		case c == quote:
			return sb.String(), nil
		case c == '\\' && !s.eof():
			next := s.src[s.pos]
			s.pos++
			switch next {
			case '\\', '\'', '"':
				sb.WriteByte(next)
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(next)
			}
		default:
			sb.WriteByte(c)
		}
	}
	return "", s.errorf("unterminated string")
}

// separator consumes "," or the closing byte; a trailing comma is allowed
func (s *tupleScanner) separator(closing byte) (bool, error) {
	s.skipSpace()
	switch s.peek() {
	case ',':
		s.pos++
		s.skipSpace()
		if s.peek() == closing {
			s.pos++
			return true, nil
		}
		return false, nil
	case closing:
		s.pos++
		return true, nil
	default:
		if s.eof() {
			return false, s.errorf("unexpected end of input")
		}
		return false, s.errorf("expected ',' or %q, found %q", closing, s.peek())
	}
}

func (s *tupleScanner) expect(b byte) error {
	if s.peek() != b {
		return s.errorf("expected %q, found %q", b, s.peek())
	}
	s.pos++
	return nil
}

func (s *tupleScanner) skipSpace() {
	for !s.eof() && unicode.IsSpace(rune(s.src[s.pos])) {
		s.pos++
	}
}

func (s *tupleScanner) peek() byte {
	if s.eof() {
		return 0
	}
	return s.src[s.pos]
}

func (s *tupleScanner) eof() bool { return s.pos >= len(s.src) }

func (s *tupleScanner) errorf(format string, args ...interface{}) error {
	return core.NewMalformedStructureError(fmt.Sprintf("offset %d: ", s.pos) + fmt.Sprintf(format, args...))
}
