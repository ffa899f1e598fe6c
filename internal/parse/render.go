package parse

import (
	"github.com/phobologic/jsdocts/internal/model"
)

// Render returns the file's source with every comment printed from its
// current value. Moved comments are removed from their old position and
// printed at their anchor; synthesized comments are inserted at theirs.
func Render(f *model.File) []byte {
	source := string(f.Source)
	var reps []model.Replacement

	for _, c := range f.Comments {
		text := "/*" + c.Value + "*/"
		switch {
		case c.Synthetic():
			reps = append(reps, model.Replacement{Start: c.Anchor, End: c.Anchor, Text: text + separator(source, c.Anchor)})
		case c.Moved():
			reps = append(reps,
				model.Replacement{Start: c.Start, End: c.End, Text: ""},
				model.Replacement{Start: c.Anchor, End: c.Anchor, Text: text + separator(source, c.Anchor)},
			)
		case source[c.Start:c.End] != text:
			reps = append(reps, model.Replacement{Start: c.Start, End: c.End, Text: text})
		}
	}

	return []byte(model.Apply(source, reps))
}

// separator is printed after a comment inserted at pos: a newline plus the
// line's indentation when pos starts a line, otherwise a space.
func separator(source string, pos int) string {
	i := pos
	for i > 0 && (source[i-1] == ' ' || source[i-1] == '\t') {
		i--
	}
	if i == 0 || source[i-1] == '\n' {
		return "\n" + source[i:pos]
	}
	return " "
}
