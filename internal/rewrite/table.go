// Package rewrite qualifies the type references in one file's documentation
// comments. It builds the file's identifier table, adds the class markers the
// documentation generator needs, and rewrites every comment in place.
package rewrite

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/phobologic/jsdocts/internal/model"
	"github.com/phobologic/jsdocts/internal/tagtext"
)

// Table maps each locally visible name to where it is declared. Later
// declarations replace earlier ones.
type Table map[string]model.IdentifierEntry

// Resolver turns an origin and export name into a qualified reference.
// *graph.Session implements it.
type Resolver interface {
	Resolve(origin, exportName, dir string) (string, bool)
}

// LocalOrigin is the origin recorded for names declared in the file at path.
func LocalOrigin(path string) string {
	return "./" + filepath.Base(path)
}

// AddLocal records name as declared in this file.
func (t Table) AddLocal(name, path string) {
	t[name] = model.IdentifierEntry{Name: name, OriginValue: LocalOrigin(path)}
}

// Keys returns the table's names in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildTable records the file's imports, classes and enum-tagged variables.
// Typedefs are added later, while comments are scanned.
func BuildTable(f *model.File) Table {
	t := make(Table)
	for _, d := range f.Declarations {
		comments := d.Comments
		if (d.Kind == model.DeclExportNamed || d.Kind == model.DeclExportDefault) && d.Inner != nil {
			if len(d.Inner.Comments) > 0 {
				comments = d.Inner.Comments
			}
			d = d.Inner
		}

		switch d.Kind {
		case model.DeclImport:
			for _, b := range d.Bindings {
				entry := model.IdentifierEntry{
					Name:            b.Local,
					IsDefaultImport: b.Default,
					OriginValue:     d.Source,
				}
				if !b.Default && b.Imported != b.Local {
					entry.ImportedName = b.Imported
				}
				t[b.Local] = entry
			}
		case model.DeclVariable:
			for _, decl := range d.Declarators {
				leading := comments
				if len(decl.Comments) > 0 {
					leading = decl.Comments
				}
				if isEnum(leading) {
					t.AddLocal(decl.Name, f.Path)
				}
			}
		case model.DeclClass:
			if d.Name != "" {
				t.AddLocal(d.Name, f.Path)
			}
		}
	}
	return t
}

func isEnum(comments []*model.Comment) bool {
	if len(comments) == 0 {
		return false
	}
	return strings.Contains(comments[len(comments)-1].Value, "@enum")
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*`)

// typedefName returns the name declared by a @typedef block, or "".
func typedefName(block string) string {
	rest := strings.TrimPrefix(block, "@typedef")
	start, end, err := tagtext.FindRegion(rest)
	if err != nil {
		return ""
	}
	if start >= 0 {
		rest = rest[end:]
	}
	return identRe.FindString(strings.TrimLeft(rest, " \t"))
}

var commaSpaceRe = regexp.MustCompile(`\s*,\s*`)
var templateNamesRe = regexp.MustCompile(`^\s*([\w$,]+)`)

// templateNames returns the parameters declared by a @template block, which
// may carry a constraint region before the names.
func templateNames(block string) []string {
	rest := strings.TrimPrefix(block, "@template")
	start, end, err := tagtext.FindRegion(rest)
	if err != nil {
		return nil
	}
	if start >= 0 && strings.TrimSpace(rest[:start]) == "" {
		rest = rest[end:]
	}
	m := templateNamesRe.FindStringSubmatch(commaSpaceRe.ReplaceAllString(rest, ","))
	if m == nil {
		return nil
	}
	var names []string
	for _, n := range strings.Split(m[1], ",") {
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}
