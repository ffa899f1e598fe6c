package rewrite

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/phobologic/jsdocts/internal/model"
)

// noClassdescRe matches comments that document something other than the
// class they precede.
var noClassdescRe = regexp.MustCompile(`@(typedef|module|type)`)

// ApplyClassMarkers prepares every top-level class comment for the
// documentation generator:
//
//   - a class documented only through its export wrapper gets the wrapper's
//     descriptive comments, and the wrapper gets an @ignore comment
//   - a class without a descriptive comment gets an empty one
//   - the class comment carries @classdesc
//   - a class with a superclass gets an @extends line naming it, qualified
//     through the table when the superclass is a known identifier
//
// The table must be complete before this runs.
func ApplyClassMarkers(f *model.File, table Table, r Resolver) {
	dir := filepath.Dir(f.Path)
	for _, d := range f.Declarations {
		switch {
		case d.Kind == model.DeclClass:
			markClass(f, d, nil, table, r, dir)
		case (d.Kind == model.DeclExportNamed || d.Kind == model.DeclExportDefault) &&
			d.Inner != nil && d.Inner.Kind == model.DeclClass:
			markClass(f, d.Inner, d, table, r, dir)
		}
	}
}

func markClass(f *model.File, cls, wrapper *model.Declaration, table Table, r Resolver, dir string) {
	if len(cls.Comments) == 0 && wrapper != nil {
		moveWrapperComments(f, cls, wrapper)
	}

	if n := len(cls.Comments); n == 0 || !describesClass(cls.Comments[n-1].Value) {
		c := model.NewComment("*\n ", cls.Start)
		cls.Comments = append(cls.Comments, c)
		f.AddComment(c)
	}

	lead := cls.Comments[len(cls.Comments)-1]
	value := lead.Value
	if cls.SuperClass != "" && !strings.Contains(value, "\n") {
		value = expandSingleLine(value)
	}
	if !strings.Contains(value, "@classdesc") {
		value = addClassdesc(value)
	}
	if cls.SuperClass != "" {
		value = injectExtends(value, superClassRef(cls.SuperClass, table, r, dir))
	}
	lead.Value = value
}

// describesClass reports whether a comment may serve as the class comment.
func describesClass(value string) bool {
	return strings.Contains(value, "@classdesc") || !noClassdescRe.MatchString(value)
}

// moveWrapperComments moves the descriptive comments of an export wrapper
// onto its class, keeping their order, and leaves one @ignore behind.
func moveWrapperComments(f *model.File, cls, wrapper *model.Declaration) {
	var kept, moved []*model.Comment
	for _, c := range wrapper.Comments {
		if describesClass(c.Value) {
			c.Anchor = cls.Start
			moved = append(moved, c)
			continue
		}
		kept = append(kept, c)
	}
	if len(moved) == 0 {
		return
	}
	ignore := model.NewComment("* @ignore ", wrapper.Start)
	f.AddComment(ignore)
	wrapper.Comments = append(kept, ignore)
	cls.Comments = moved
}

// expandSingleLine turns "* text " into a multi-line comment body.
func expandSingleLine(value string) string {
	body := strings.TrimSpace(strings.TrimPrefix(value, "*"))
	if body == "" {
		return "*\n "
	}
	return "*\n * " + body + "\n "
}

func addClassdesc(value string) string {
	first, rest, multi := strings.Cut(value, "\n")
	if !multi {
		return strings.TrimRight(value, " \t") + " @classdesc "
	}
	return strings.TrimRight(first, " \t") + " @classdesc\n" + rest
}

// injectExtends replaces any @extends or @augments line with one naming ref,
// placed before the closing line.
func injectExtends(value, ref string) string {
	lines := strings.Split(value, "\n")
	last := lines[len(lines)-1]
	if isExtendsLine(last) {
		last = " "
	}
	out := make([]string, 0, len(lines)+1)
	for _, line := range lines[:len(lines)-1] {
		if !isExtendsLine(line) {
			out = append(out, line)
		}
	}
	out = append(out, " * @extends "+ref, last)
	return strings.Join(out, "\n")
}

func isExtendsLine(line string) bool {
	return strings.Contains(line, "@extends") || strings.Contains(line, "@augments")
}

// superClassRef qualifies a superclass through the table, falling back to the
// name as written.
func superClassRef(name string, table Table, r Resolver, dir string) string {
	entry, ok := table[name]
	if !ok {
		return name
	}
	if ref, ok := r.Resolve(entry.OriginValue, entry.ExportName(), dir); ok {
		return ref
	}
	return name
}
