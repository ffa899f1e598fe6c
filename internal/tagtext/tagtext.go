// Package tagtext rewrites the type expressions of documentation tags into the
// syntax the documentation generator accepts.
package tagtext

import (
	"regexp"
	"strings"

	"github.com/phobologic/jsdocts/internal/errors"
	"github.com/phobologic/jsdocts/internal/model"
)

// Tags lists the tags whose type expression is normalized. Synonyms map to
// the canonical name through Canonical.
var Tags = []string{"type", "typedef", "property", "return", "param", "template", "default", "member"}

var synonyms = map[string]string{
	"returns":      "return",
	"prop":         "property",
	"arg":          "param",
	"argument":     "param",
	"var":          "member",
	"defaultvalue": "default",
}

var hooked = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Tags))
	for _, t := range Tags {
		m[t] = struct{}{}
	}
	return m
}()

// Canonical returns the canonical tag name for a synonym.
func Canonical(tag string) string {
	if c, ok := synonyms[tag]; ok {
		return c
	}
	return tag
}

// IsHooked reports whether tag's text goes through Transform.
func IsHooked(tag string) bool {
	_, ok := hooked[Canonical(tag)]
	return ok
}

var blockTagRe = regexp.MustCompile(`(?m)^[ \t]*\*?[ \t]*@(\w+)`)

// Block is one block tag inside a comment value. Start is the offset of the
// '@'; End is where the next block tag starts, or the end of the comment.
type Block struct {
	Name  string
	Start int
	End   int
}

// Blocks returns the block tags of a comment value in order.
func Blocks(value string) []Block {
	matches := blockTagRe.FindAllStringSubmatchIndex(value, -1)
	blocks := make([]Block, 0, len(matches))
	for i, m := range matches {
		end := len(value)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		// m[2]-1 is the '@'.
		blocks = append(blocks, Block{Name: value[m[2]:m[3]], Start: m[2] - 1, End: end})
	}
	return blocks
}

// FindRegion locates the first unescaped '{' in text and its matching '}'.
// It returns start == -1 when text has no '{'. Braces inside string literals
// do not count. An unbalanced region is ErrMissingClosingBrace.
func FindRegion(text string) (start, end int, err error) {
	start = -1
	for i := 0; i < len(text); i++ {
		if text[i] == '\\' {
			i++
			continue
		}
		if text[i] == '{' {
			start = i
			break
		}
	}
	if start < 0 {
		return -1, -1, nil
	}

	depth := 0
	var quote byte
	for i := start; i < len(text); i++ {
		c := text[i]
		if c == '\\' {
			i++
			continue
		}
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return start, i + 1, nil
			}
		}
	}
	return start, -1, errors.WithDetailf(errors.ErrMissingClosingBrace, "tag text: %s", text)
}

// Transform is the tag dictionary hook: it normalizes the type expression of
// one tag occurrence's text and leaves everything around it untouched.
// Inline tags such as {@link ...} are not type expressions.
func Transform(tagText string) (string, error) {
	start, end, err := FindRegion(tagText)
	if err != nil {
		return tagText, err
	}
	if start < 0 || strings.HasPrefix(tagText[start:], "{@") {
		return tagText, nil
	}
	return tagText[:start] + Normalize(tagText[start:end]) + tagText[end:], nil
}

// TransformComment runs Transform over every hooked block tag in a comment
// value.
func TransformComment(value string) (string, error) {
	var reps []model.Replacement
	for _, b := range Blocks(value) {
		if !IsHooked(b.Name) {
			continue
		}
		text := value[b.Start:b.End]
		out, err := Transform(text)
		if err != nil {
			return value, errors.WithDetailf(err, "tag: @%s", b.Name)
		}
		if out != text {
			reps = append(reps, model.Replacement{Start: b.Start, End: b.End, Text: out})
		}
	}
	return model.Apply(value, reps), nil
}
