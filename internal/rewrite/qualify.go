package rewrite

import (
	"regexp"
	"strings"

	"github.com/phobologic/jsdocts/internal/model"
	"github.com/phobologic/jsdocts/internal/tagtext"
)

// typeSlotPrefix lists the characters that put the identifier after them in
// type position.
const typeSlotPrefix = "{<|,(!?:"

var (
	linkRe = regexp.MustCompile(`\{@link\s+([A-Za-z_$][\w$]*)(\s+[^}]*)?\}`)
	seeRe  = regexp.MustCompile(`(?m)(@see[ \t]+)([A-Za-z_$][\w$]*)([ \t]*)(\r?\n|$)`)
)

// qualify replaces table keys in type slots, event names and cross
// references with their qualified references.
func (rw *rewriter) qualify(c *model.Comment) {
	if len(rw.table) == 0 {
		return
	}
	value := c.Value
	var reps []model.Replacement

	for _, b := range tagtext.Blocks(value) {
		text := value[b.Start:b.End]
		switch b.Name {
		case "event", "fires", "emits":
			if rep, ok := rw.qualifyEvent(value, b); ok {
				reps = append(reps, rep)
			}
			continue
		}
		start, end, err := tagtext.FindRegion(text)
		if err != nil || start < 0 || strings.HasPrefix(text[start:], "{@") {
			continue
		}
		reps = append(reps, rw.qualifyRegion(value, b.Start+start, b.Start+end)...)
	}

	for _, m := range linkRe.FindAllStringSubmatchIndex(value, -1) {
		key := value[m[2]:m[3]]
		ref, ok := rw.lookup(key)
		if !ok {
			continue
		}
		display := " " + key
		if m[4] >= 0 {
			display = value[m[4]:m[5]]
		}
		reps = append(reps, model.Replacement{Start: m[0], End: m[1], Text: "{@link " + ref + display + "}"})
	}

	for _, m := range seeRe.FindAllStringSubmatchIndex(value, -1) {
		key := value[m[4]:m[5]]
		ref, ok := rw.lookup(key)
		if !ok {
			continue
		}
		reps = append(reps, model.Replacement{Start: m[4], End: m[5], Text: "{@link " + ref + " " + key + "}"})
	}

	c.Value = model.Apply(value, reps)
}

// lookup returns the reference for a name that is in the table and is not a
// template parameter.
func (rw *rewriter) lookup(name string) (string, bool) {
	if _, ok := rw.table[name]; !ok {
		return "", false
	}
	if _, ok := rw.templates[name]; ok {
		return "", false
	}
	return rw.ref(name)
}

// qualifyEvent qualifies the event name following @event or @fires.
func (rw *rewriter) qualifyEvent(value string, b tagtext.Block) (model.Replacement, bool) {
	i := b.Start + 1 + len(b.Name)
	for i < b.End && (value[i] == ' ' || value[i] == '\t') {
		i++
	}
	if i == b.Start+1+len(b.Name) {
		return model.Replacement{}, false
	}
	j := i
	for j < b.End && isIdentChar(value[j]) {
		j++
	}
	if j == i {
		return model.Replacement{}, false
	}
	ref, ok := rw.lookup(value[i:j])
	if !ok {
		return model.Replacement{}, false
	}
	return model.Replacement{Start: i, End: j, Text: ref}, true
}

// qualifyRegion scans value[start:end], a brace region, for identifiers in
// type position. String literals and existing module: paths are skipped.
func (rw *rewriter) qualifyRegion(value string, start, end int) []model.Replacement {
	var reps []model.Replacement
	var quote byte
	for i := start + 1; i < end-1; i++ {
		c := value[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		if c == '\'' || c == '"' || c == '`' {
			quote = c
			continue
		}
		if !isIdentChar(c) || isIdentChar(value[i-1]) {
			continue
		}

		tokStart := i
		j := i
		for j < end && isIdentChar(value[j]) {
			j++
		}
		token := value[tokStart:j]
		if token == "module" && j < end && value[j] == ':' {
			j++
			for j < end && isPathChar(value[j]) {
				j++
			}
		}
		i = j - 1
		if token == "module" || isDigit(token[0]) {
			continue
		}
		if !strings.ContainsRune(typeSlotPrefix, rune(prevSignificant(value, start, tokStart))) {
			continue
		}
		if ref, ok := rw.lookup(token); ok {
			reps = append(reps, model.Replacement{Start: tokStart, End: j, Text: ref})
		}
	}
	return reps
}

// prevSignificant returns the last character before pos that is not
// whitespace or a continuation-line '*', looking no further back than
// limit.
func prevSignificant(value string, limit, pos int) byte {
	for i := pos - 1; i >= limit; i-- {
		switch value[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case '*':
			if lineStartBefore(value, i) {
				continue
			}
		}
		return value[i]
	}
	return 0
}

func lineStartBefore(value string, i int) bool {
	for i--; i >= 0; i-- {
		switch value[i] {
		case ' ', '\t':
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' || isLetter(c) || isDigit(c)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isPathChar(c byte) bool {
	return isIdentChar(c) || c == '/' || c == '.' || c == '~' || c == '-' || c == '#'
}
