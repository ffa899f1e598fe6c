// Package doclet collects one documentation record per top-level class after
// its comments are rewritten, and links the inheritance chains declared by
// their @extends tags.
package doclet

import (
	"regexp"
	"sort"

	"github.com/phobologic/jsdocts/internal/graph"
	"github.com/phobologic/jsdocts/internal/model"
)

// Doclet documents one class.
type Doclet struct {
	Longname string
	Name     string
	MemberOf string // the module's own reference
	File     string
	Augments []string
	Members  []string

	// Set by AddInherited.
	Ancestors []string // nearest first
	Overrides []string // own members also declared by an ancestor
	Inherited []string // ancestor members as Longname#member, not overridden
}

// ModuleInfos looks up the module a file belongs to. *graph.Session
// implements it.
type ModuleInfos interface {
	ModuleInfo(path string) (*model.ModuleInfo, error)
}

var augmentsRe = regexp.MustCompile(`@(?:extends|augments)[ \t]+\{?([^\s{}]+)\}?`)

// Collect returns the doclets of the classes declared at the top level of f.
func Collect(f *model.File, modules ModuleInfos) ([]*Doclet, error) {
	info, err := modules.ModuleInfo(f.Path)
	if err != nil {
		return nil, err
	}

	var out []*Doclet
	for _, d := range f.Declarations {
		cls := d
		if (d.Kind == model.DeclExportNamed || d.Kind == model.DeclExportDefault) && d.Inner != nil {
			cls = d.Inner
		}
		if cls.Kind != model.DeclClass || cls.Name == "" {
			continue
		}

		doc := &Doclet{
			Longname: graph.Qualify(info, cls.Name),
			Name:     cls.Name,
			MemberOf: graph.Qualify(info, ""),
			File:     f.Path,
			Members:  cls.Members,
		}
		comments := cls.Comments
		if len(comments) == 0 {
			comments = d.Comments
		}
		if n := len(comments); n > 0 {
			for _, m := range augmentsRe.FindAllStringSubmatch(comments[n-1].Value, -1) {
				doc.Augments = append(doc.Augments, m[1])
			}
		}
		out = append(out, doc)
	}
	return out, nil
}

// AddInherited links every doclet to its ancestors by longname and derives
// the members it overrides and inherits. Ancestors outside the collection
// end the chain; cycles are cut at the first repeated class.
func AddInherited(doclets []*Doclet) {
	index := make(map[string]*Doclet, len(doclets))
	for _, d := range doclets {
		index[d.Longname] = d
	}

	for _, d := range doclets {
		d.Ancestors = ancestors(d, index)

		own := make(map[string]struct{}, len(d.Members))
		for _, m := range d.Members {
			own[m] = struct{}{}
		}
		overrides := make(map[string]struct{})
		seen := make(map[string]struct{})
		d.Inherited = nil
		for _, name := range d.Ancestors {
			anc, ok := index[name]
			if !ok {
				continue
			}
			for _, m := range anc.Members {
				if _, mine := own[m]; mine {
					overrides[m] = struct{}{}
					continue
				}
				if _, dup := seen[m]; dup {
					continue
				}
				seen[m] = struct{}{}
				d.Inherited = append(d.Inherited, anc.Longname+"#"+m)
			}
		}
		d.Overrides = sortedKeys(overrides)
	}
}

// ancestors walks the augments graph breadth first from d.
func ancestors(d *Doclet, index map[string]*Doclet) []string {
	visited := map[string]struct{}{d.Longname: {}}
	var out []string
	queue := append([]string(nil), d.Augments...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, ok := visited[name]; ok {
			continue
		}
		visited[name] = struct{}{}
		out = append(out, name)
		if parent, ok := index[name]; ok {
			queue = append(queue, parent.Augments...)
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
