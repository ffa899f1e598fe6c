package tagtext

import (
	"regexp"
	"strings"

	"github.com/phobologic/jsdocts/internal/model"
)

var identKeyRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*$`)

// Normalize rewrites one brace-delimited type expression:
//
//   - ';' member separators in nested object types become ',' (dropped
//     before the closing brace)
//   - inline function signatures followed by ':' or '=>' become function()
//   - tuple literals become Array
//   - bracket-notation access with a quoted key becomes dot access
//   - template literal backticks become single quotes
//
// Normalizing already-normalized text returns it unchanged.
func Normalize(expr string) string {
	s := scanner{src: expr}
	s.run()
	return strings.ReplaceAll(model.Apply(expr, s.reps), "`", "'")
}

type bracket struct {
	start int
	tuple bool
}

type scanner struct {
	src      string
	reps     []model.Replacement
	braces   int
	parens   []int
	brackets []bracket
	tuples   int
	quote    byte
}

func (s *scanner) run() {
	for i := 0; i < len(s.src); i++ {
		c := s.src[i]
		if c == '\\' {
			i++
			continue
		}
		if s.quote != 0 {
			if c == s.quote {
				s.quote = 0
			}
			continue
		}

		switch c {
		case '\'', '"', '`':
			s.quote = c
		case '{':
			s.braces++
		case '}':
			s.braces--
		case ';':
			if s.braces > 1 {
				text := ","
				if s.at(s.skipSpace(i+1)) == '}' {
					text = ""
				}
				s.reps = append(s.reps, model.Replacement{Start: i, End: i + 1, Text: text})
			}
		case '(':
			s.parens = append(s.parens, i)
		case ')':
			if n := len(s.parens); n > 0 {
				start := s.parens[n-1]
				s.parens = s.parens[:n-1]
				s.closeParen(start, i)
			}
		case '[':
			tuple := i == 0 || !isSubscriptPrefix(s.src[i-1])
			if tuple {
				s.tuples++
			}
			s.brackets = append(s.brackets, bracket{start: i, tuple: tuple})
		case ']':
			n := len(s.brackets)
			if n == 0 {
				continue
			}
			b := s.brackets[n-1]
			s.brackets = s.brackets[:n-1]
			if b.tuple {
				s.tuples--
				if s.tuples == 0 {
					s.replaceSpan(b.start, i+1, "Array")
				}
			} else {
				s.closeSubscript(b.start, i)
			}
		}
	}
}

// closeParen rewrites the parameter list src[start:end+1] when it is followed
// by a return type.
func (s *scanner) closeParen(start, end int) {
	next := s.skipSpace(end + 1)
	arrow := strings.HasPrefix(s.src[next:], "=>")
	if !arrow && s.at(next) != ':' {
		return
	}

	keyword := s.precededByFunction(start)
	if !keyword {
		start = s.typeParamStart(start)
	}

	switch {
	case arrow && keyword:
		s.replaceSpan(start, next+2, "():")
	case arrow:
		s.replaceSpan(start, next+2, "function():")
	case keyword:
		s.replaceSpan(start, end+1, "()")
	case start > 0 && isIdentChar(s.src[start-1]):
		// method shorthand: name(a: T): R
		s.replaceSpan(start, end+1, ": function()")
	default:
		s.replaceSpan(start, end+1, "function()")
	}
}

// closeSubscript turns Foo['key'] into Foo.key.
func (s *scanner) closeSubscript(start, end int) {
	key := strings.TrimSpace(s.src[start+1 : end])
	if len(key) < 3 {
		return
	}
	q := key[0]
	if (q != '\'' && q != '"') || key[len(key)-1] != q {
		return
	}
	name := key[1 : len(key)-1]
	if !identKeyRe.MatchString(name) {
		return
	}
	s.replaceSpan(start, end+1, "."+name)
}

// replaceSpan records a replacement for src[start:end], discarding the
// replacements recorded inside that span.
func (s *scanner) replaceSpan(start, end int, text string) {
	kept := s.reps[:0]
	for _, r := range s.reps {
		if r.Start >= start && r.End <= end {
			continue
		}
		kept = append(kept, r)
	}
	s.reps = kept
	if s.src[start:end] != text {
		s.reps = append(s.reps, model.Replacement{Start: start, End: end, Text: text})
	}
}

func (s *scanner) precededByFunction(start int) bool {
	before := strings.TrimRight(s.src[:start], " \t")
	if !strings.HasSuffix(before, "function") {
		return false
	}
	i := len(before) - len("function")
	return i == 0 || !isIdentChar(before[i-1])
}

// typeParamStart extends a parameter list's start over a generic parameter
// list written directly before it, as in <T>(a: T) => T.
func (s *scanner) typeParamStart(start int) int {
	i := start - 1
	for i >= 0 && (s.src[i] == ' ' || s.src[i] == '\t') {
		i--
	}
	if i < 1 || s.src[i] != '>' || s.src[i-1] == '=' {
		return start
	}
	depth := 0
	for ; i >= 0; i-- {
		switch s.src[i] {
		case '>':
			depth++
		case '<':
			depth--
			if depth == 0 {
				if i > 0 && isIdentChar(s.src[i-1]) {
					return start
				}
				return i
			}
		}
	}
	return start
}

// skipSpace skips whitespace and the '*' that prefixes continuation lines of
// a block comment.
func (s *scanner) skipSpace(i int) int {
	lineStart := false
	for ; i < len(s.src); i++ {
		switch c := s.src[i]; {
		case c == '\n':
			lineStart = true
		case c == ' ' || c == '\t' || c == '\r':
		case c == '*' && lineStart:
			lineStart = false
		default:
			return i
		}
	}
	return i
}

func (s *scanner) at(i int) byte {
	if i < 0 || i >= len(s.src) {
		return 0
	}
	return s.src[i]
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// isSubscriptPrefix reports whether a '[' written directly after c indexes
// or suffixes a type instead of opening a tuple.
func isSubscriptPrefix(c byte) bool {
	return isIdentChar(c) || c == ')' || c == ']' || c == '>'
}
