// Package parse turns JavaScript source into the declaration tree and comment
// list the rewriter works on, and renders rewritten comments back into source.
package parse

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/jsdocts/internal/errors"
	"github.com/phobologic/jsdocts/internal/lang"
	"github.com/phobologic/jsdocts/internal/model"
)

// Parser decodes one language's files. It wraps a tree-sitter parser and is
// not safe for concurrent use.
type Parser struct {
	lang   *lang.Language
	parser *sitter.Parser
	query  *sitter.Query
}

// New creates a parser for l.
func New(l *lang.Language) (*Parser, error) {
	q, err := l.GetCommentQuery()
	if err != nil {
		return nil, errors.Wrapf(err, "comment query for %s", l.Name)
	}
	return &Parser{lang: l, parser: l.NewParser(), query: q}, nil
}

// Parse parses source and decodes its top-level declarations into the closed
// model.Declaration shapes. Every documentation comment is returned in
// File.Comments; the same pointers are attached to the declarations they lead.
func (p *Parser) Parse(path string, source []byte) (*model.File, error) {
	file := &model.File{Path: path, Source: source}
	if len(source) == 0 {
		return file, nil
	}

	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, errors.Wrap(err, "tree-sitter")
	}
	defer tree.Close()

	root := tree.RootNode()
	byStart := p.collectComments(root, source, file)

	d := decoder{source: source, comments: byStart}
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		if child.Type() == "comment" {
			continue
		}
		decl := d.decode(child)
		decl.Comments = d.leading(child)
		file.Declarations = append(file.Declarations, decl)
	}

	return file, nil
}

func (p *Parser) collectComments(root *sitter.Node, source []byte, file *model.File) map[uint32]*model.Comment {
	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(p.query, root)

	byStart := make(map[uint32]*model.Comment)
	for {
		match, ok := qc.NextMatch()
		if !ok {
			break
		}
		for _, c := range match.Captures {
			text := lang.NodeText(c.Node, source)
			if !IsDocComment(text) {
				continue
			}
			start := int(c.Node.StartByte())
			comment := &model.Comment{
				Value:  text[2 : len(text)-2],
				Start:  start,
				End:    int(c.Node.EndByte()),
				Anchor: start,
			}
			byStart[c.Node.StartByte()] = comment
			file.Comments = append(file.Comments, comment)
		}
	}
	return byStart
}

// IsDocComment reports whether a raw comment is a documentation comment.
func IsDocComment(text string) bool {
	return strings.HasPrefix(text, "/**") && text != "/**/" && strings.HasSuffix(text, "*/")
}

type decoder struct {
	source   []byte
	comments map[uint32]*model.Comment
}

// leading returns the documentation comments directly preceding node among
// its siblings, in source order.
func (d decoder) leading(node *sitter.Node) []*model.Comment {
	var out []*model.Comment
	for prev := node.PrevSibling(); prev != nil && prev.Type() == "comment"; prev = prev.PrevSibling() {
		if c, ok := d.comments[prev.StartByte()]; ok {
			out = append([]*model.Comment{c}, out...)
		}
	}
	return out
}

func (d decoder) text(node *sitter.Node) string {
	return lang.NodeText(node, d.source)
}

func (d decoder) decode(node *sitter.Node) *model.Declaration {
	decl := &model.Declaration{Kind: model.DeclOther, Start: int(node.StartByte())}

	switch node.Type() {
	case "import_statement":
		d.decodeImport(node, decl)
	case "class_declaration":
		d.decodeClass(node, decl)
	case "lexical_declaration", "variable_declaration":
		decl.Kind = model.DeclVariable
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child.Type() != "variable_declarator" {
				continue
			}
			name := child.ChildByFieldName("name")
			if name == nil || name.Type() != "identifier" {
				continue
			}
			decl.Declarators = append(decl.Declarators, model.Declarator{
				Name:     d.text(name),
				Comments: d.leading(child),
			})
		}
	case "export_statement":
		d.decodeExport(node, decl)
	}

	return decl
}

func (d decoder) decodeImport(node *sitter.Node, decl *model.Declaration) {
	decl.Kind = model.DeclImport
	if src := node.ChildByFieldName("source"); src != nil {
		decl.Source = d.stringContent(src)
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		clause := node.Child(i)
		if clause.Type() != "import_clause" {
			continue
		}
		for j := 0; j < int(clause.ChildCount()); j++ {
			child := clause.Child(j)
			switch child.Type() {
			case "identifier":
				decl.Bindings = append(decl.Bindings, model.ImportBinding{
					Local:    d.text(child),
					Imported: "default",
					Default:  true,
				})
			case "named_imports":
				for k := 0; k < int(child.ChildCount()); k++ {
					spec := child.Child(k)
					if spec.Type() != "import_specifier" {
						continue
					}
					if b, ok := d.importSpecifier(spec); ok {
						decl.Bindings = append(decl.Bindings, b)
					}
				}
			}
		}
	}
}

func (d decoder) importSpecifier(spec *sitter.Node) (model.ImportBinding, bool) {
	name := spec.ChildByFieldName("name")
	if name == nil {
		return model.ImportBinding{}, false
	}
	imported := d.text(name)
	if name.Type() == "string" {
		imported = d.stringContent(name)
	}
	local := imported
	if alias := spec.ChildByFieldName("alias"); alias != nil {
		local = d.text(alias)
	}
	return model.ImportBinding{
		Local:    local,
		Imported: imported,
		Default:  imported == "default",
	}, true
}

func (d decoder) decodeClass(node *sitter.Node, decl *model.Declaration) {
	decl.Kind = model.DeclClass
	if name := node.ChildByFieldName("name"); name != nil {
		decl.Name = d.text(name)
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() != "class_heritage" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			expr := child.NamedChild(j)
			if expr.Type() != "comment" {
				decl.SuperClass = d.text(expr)
				break
			}
		}
	}
	if body := node.ChildByFieldName("body"); body != nil {
		decl.Members = d.methods(body)
	}
}

// methods returns the method names declared in a class body.
func (d decoder) methods(body *sitter.Node) []string {
	var names []string
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() != "method_definition" {
			continue
		}
		name := member.ChildByFieldName("name")
		if name == nil || name.Type() == "computed_property_name" {
			continue
		}
		text := d.text(name)
		if name.Type() == "string" {
			text = d.stringContent(name)
		}
		if text != "constructor" {
			names = append(names, text)
		}
	}
	return names
}

func (d decoder) decodeExport(node *sitter.Node, decl *model.Declaration) {
	isDefault := false
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			isDefault = true
			break
		}
	}

	if inner := node.ChildByFieldName("declaration"); inner != nil {
		decl.Inner = d.decode(inner)
		decl.Inner.Comments = d.leading(inner)
		decl.Kind = model.DeclExportNamed
		if isDefault {
			decl.Kind = model.DeclExportDefault
		}
		return
	}

	if isDefault {
		decl.Kind = model.DeclExportDefault
		value := node.ChildByFieldName("value")
		switch {
		case value == nil:
		case value.Type() == "identifier":
			decl.Name = d.text(value)
		case value.Type() == "class" && value.ChildByFieldName("name") != nil:
			decl.Inner = &model.Declaration{Kind: model.DeclOther, Start: int(value.StartByte())}
			d.decodeClass(value, decl.Inner)
			decl.Inner.Comments = d.leading(value)
		}
		return
	}

	// Re-exports from another module declare nothing locally.
	if node.ChildByFieldName("source") != nil {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		clause := node.Child(i)
		if clause.Type() != "export_clause" {
			continue
		}
		decl.Kind = model.DeclExportNamed
		for j := 0; j < int(clause.ChildCount()); j++ {
			spec := clause.Child(j)
			if spec.Type() != "export_specifier" {
				continue
			}
			// Renamed exports are not tracked.
			if spec.ChildByFieldName("alias") != nil {
				continue
			}
			if name := spec.ChildByFieldName("name"); name != nil {
				decl.ExportNames = append(decl.ExportNames, d.text(name))
			}
		}
	}
}

// stringContent extracts the string content without quotes.
func (d decoder) stringContent(node *sitter.Node) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "string_fragment" {
			return d.text(child)
		}
	}
	text := d.text(node)
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}
