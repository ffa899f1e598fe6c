// Package model defines core data structures for jsdocts.
package model

import "sort"

// DeclKind identifies the shape of a top-level declaration.
type DeclKind string

const (
	DeclImport        DeclKind = "import"
	DeclClass         DeclKind = "class"
	DeclExportDefault DeclKind = "export-default"
	DeclExportNamed   DeclKind = "export-named"
	DeclVariable      DeclKind = "variable"
	DeclOther         DeclKind = "other"
)

// Comment is one documentation comment. Value is the text between the "/*"
// and "*/" delimiters and is rewritten in place.
//
// Start and End locate the comment in the original source; both are -1 for a
// synthesized comment. Anchor is where the comment is printed when the file is
// rendered: equal to Start unless the comment was moved or synthesized.
type Comment struct {
	Value  string
	Start  int
	End    int
	Anchor int
}

// NewComment returns a synthesized comment printed at anchor.
func NewComment(value string, anchor int) *Comment {
	return &Comment{Value: value, Start: -1, End: -1, Anchor: anchor}
}

// Synthetic reports whether the comment did not exist in the source.
func (c *Comment) Synthetic() bool {
	return c.Start < 0
}

// Moved reports whether an existing comment is printed somewhere else.
func (c *Comment) Moved() bool {
	return c.Start >= 0 && c.Anchor != c.Start
}

// ImportBinding is one local name introduced by an import declaration.
type ImportBinding struct {
	Local    string
	Imported string // exported name; "default" for default imports
	Default  bool
}

// Declaration is a top-level statement decoded from the host tree. Only the
// fields relevant to Kind are set.
type Declaration struct {
	Kind     DeclKind
	Start    int
	Comments []*Comment

	// DeclImport
	Source   string
	Bindings []ImportBinding

	// DeclClass: Name, SuperClass, Members. DeclExportDefault: Name of the
	// referenced identifier, or Inner for `export default class X {}`.
	Name       string
	SuperClass string
	Members    []string // method names, constructor excluded

	// DeclVariable
	Declarators []Declarator

	// DeclExportNamed, DeclExportDefault: the wrapped declaration, if any.
	Inner *Declaration
	// DeclExportNamed: names listed in an `export { ... }` clause.
	ExportNames []string
}

// Declarator is one name bound by a variable declaration.
type Declarator struct {
	Name     string
	Comments []*Comment
}

// File is a parsed source file: its declarations plus every documentation
// comment, in source order. Comments appended during rewriting are
// synthesized.
type File struct {
	Path         string
	Source       []byte
	Declarations []*Declaration
	Comments     []*Comment
}

// AddComment appends a synthesized comment to the flat comment list.
func (f *File) AddComment(c *Comment) {
	f.Comments = append(f.Comments, c)
}

// IdentifierEntry records where a locally visible name comes from.
// OriginValue is a relative import source, a package specifier, or
// "./<basename>" of the declaring file for local declarations.
type IdentifierEntry struct {
	Name            string
	IsDefaultImport bool
	OriginValue     string
	ImportedName    string
}

// ExportName returns the name to resolve in the origin module.
func (e IdentifierEntry) ExportName() string {
	if e.IsDefaultImport {
		return "default"
	}
	if e.ImportedName != "" {
		return e.ImportedName
	}
	return e.Name
}

// ModuleInfo is the memoized export classification of one source file.
type ModuleInfo struct {
	Path                  string
	ID                    string
	DefaultExportName     string
	NamedExportClassNames map[string]struct{}
}

// IsNamedClassExport reports whether name is exported as a named class.
func (m *ModuleInfo) IsNamedClassExport(name string) bool {
	_, ok := m.NamedExportClassNames[name]
	return ok
}

// Replacement replaces Text[Start:End] with Text. Start == End inserts.
type Replacement struct {
	Start int
	End   int
	Text  string
}

// Apply applies non-overlapping replacements recorded against the original
// text in one pass, tracking the cumulative offset of earlier edits.
// Insertions at the same offset keep their recorded order.
func Apply(text string, reps []Replacement) string {
	if len(reps) == 0 {
		return text
	}
	sorted := make([]Replacement, len(reps))
	copy(sorted, reps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	out := []byte(text)
	offset := 0
	for _, r := range sorted {
		start := r.Start + offset
		end := r.End + offset
		next := make([]byte, 0, len(out)-(end-start)+len(r.Text))
		next = append(next, out[:start]...)
		next = append(next, r.Text...)
		next = append(next, out[end:]...)
		out = next
		offset += len(r.Text) - (r.End - r.Start)
	}
	return string(out)
}

// FileSummary is one file's row in the run report.
type FileSummary struct {
	Path       string // relative to the report root
	ModuleID   string
	Comments   int
	Rewritten  int
	Unresolved int
}

// ClassSummary is one class's row in the run report.
type ClassSummary struct {
	Longname  string
	MemberOf  string
	Augments  []string
	Ancestors []string
	Overrides []string
	Inherited int
}

// Report is the summary of one run.
type Report struct {
	Project string
	Root    string
	Files   []FileSummary
	Classes []ClassSummary
}
