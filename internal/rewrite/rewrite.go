package rewrite

import (
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/phobologic/jsdocts/internal/errors"
	"github.com/phobologic/jsdocts/internal/logger"
	"github.com/phobologic/jsdocts/internal/model"
	"github.com/phobologic/jsdocts/internal/tagtext"
)

// DefaultMaxAttempts bounds how often one import expression may be resolved
// without the comment making progress.
const DefaultMaxAttempts = 100

// Options configures File.
type Options struct {
	Logger      *zap.SugaredLogger
	MaxAttempts int
}

// Result summarizes the rewrite of one file.
type Result struct {
	Comments   int // comments visited
	Rewritten  int // comments whose text changed
	Unresolved int // references left as written
	Typedefs   int
}

var (
	typeofRe   = regexp.MustCompile(`typeof ([^,|}>\n]*)([,|}>])`)
	overrideRe = regexp.MustCompile(`(?m)^[ \t]*\*?[ \t]*@override[ \t]*\r?\n`)
	importRe   = regexp.MustCompile(`import\(\s*["']([^"']*)["']\s*\)(\.[A-Za-z_$][\w$]*)?`)
)

type rewriter struct {
	file      *model.File
	dir       string
	resolver  Resolver
	log       *zap.SugaredLogger
	max       int
	table     Table
	templates map[string]struct{}
	refs      map[string]string
	result    Result
}

// File rewrites every documentation comment of f in place. A malformed type
// expression or an import expression that keeps reappearing aborts the file;
// references that do not resolve are left as written.
func File(f *model.File, r Resolver, opts Options) (Result, error) {
	rw := &rewriter{
		file:      f,
		dir:       filepath.Dir(f.Path),
		resolver:  r,
		log:       opts.Logger,
		max:       opts.MaxAttempts,
		templates: make(map[string]struct{}),
		refs:      make(map[string]string),
	}
	if rw.log == nil {
		rw.log = logger.Nop()
	}
	if rw.max <= 0 {
		rw.max = DefaultMaxAttempts
	}

	before := make(map[*model.Comment]string, len(f.Comments))
	for _, c := range f.Comments {
		before[c] = c.Value
	}

	rw.table = BuildTable(f)
	rw.log.Debugw("identifier table", logger.FieldFile, f.Path, "names", rw.table.Keys())
	ApplyClassMarkers(f, rw.table, r)

	for _, c := range f.Comments {
		if err := rw.rewriteSyntax(c); err != nil {
			return rw.result, err
		}
	}
	for _, c := range f.Comments {
		rw.qualify(c)
	}

	rw.result.Comments = len(f.Comments)
	for _, c := range f.Comments {
		if orig, ok := before[c]; !ok || orig != c.Value {
			rw.result.Rewritten++
		}
	}
	return rw.result, nil
}

// rewriteSyntax runs the rewrites that need no identifier table, then records
// the typedefs and template parameters the comment declares.
func (rw *rewriter) rewriteSyntax(c *model.Comment) error {
	c.Value = typeofRe.ReplaceAllString(c.Value, "Class<$1>$2")
	c.Value = overrideRe.ReplaceAllString(c.Value, "")

	if err := rw.rewriteImports(c); err != nil {
		return err
	}

	value, err := tagtext.TransformComment(c.Value)
	if err != nil {
		return errors.WithDetailf(err, "file: %s", rw.file.Path)
	}
	c.Value = value

	for _, b := range tagtext.Blocks(c.Value) {
		text := c.Value[b.Start:b.End]
		switch b.Name {
		case "typedef":
			if name := typedefName(text); name != "" {
				rw.table.AddLocal(name, rw.file.Path)
				rw.result.Typedefs++
			}
		case "template":
			for _, name := range templateNames(text) {
				rw.templates[name] = struct{}{}
			}
		}
	}
	return nil
}

// rewriteImports replaces import("origin").Name expressions with qualified
// references. The scan restarts after every substitution; expressions that
// do not resolve are skipped from then on. A substitution that leaves as many
// copies of the expression as before made no progress, and an expression
// that makes no progress more often than the attempt budget allows is fatal.
func (rw *rewriter) rewriteImports(c *model.Comment) error {
	stalled := make(map[string]int)
	unresolved := make(map[string]struct{})
	from := 0
	for from <= len(c.Value) {
		loc := importRe.FindStringSubmatchIndex(c.Value[from:])
		if loc == nil {
			return nil
		}
		start, end := from+loc[0], from+loc[1]
		expr := c.Value[start:end]
		if _, skip := unresolved[expr]; skip {
			from = end
			continue
		}

		origin := c.Value[from+loc[2] : from+loc[3]]
		export := ""
		if loc[4] >= 0 {
			export = c.Value[from+loc[4]+1 : from+loc[5]]
		}
		ref, ok := rw.resolver.Resolve(origin, export, rw.dir)
		if !ok {
			rw.miss(origin, export)
			unresolved[expr] = struct{}{}
			from = end
			continue
		}

		before := strings.Count(c.Value, expr)
		c.Value = c.Value[:start] + ref + c.Value[end:]
		if strings.Count(c.Value, expr) >= before {
			stalled[expr]++
			if stalled[expr] >= rw.max {
				return errors.WithDetailf(
					errors.Wrapf(errors.ErrUnresolvableLoop, "%s: %s", rw.file.Path, expr),
					"comment: %s", c.Value)
			}
		}
		from = 0
	}
	return nil
}

// ref returns the qualified reference for a table key, resolving it once per
// file.
func (rw *rewriter) ref(key string) (string, bool) {
	if ref, ok := rw.refs[key]; ok {
		return ref, ref != ""
	}
	entry := rw.table[key]
	ref, ok := rw.resolver.Resolve(entry.OriginValue, entry.ExportName(), rw.dir)
	if !ok {
		rw.miss(entry.OriginValue, entry.ExportName())
		ref = ""
	}
	rw.refs[key] = ref
	return ref, ok
}

func (rw *rewriter) miss(origin, export string) {
	rw.result.Unresolved++
	rw.log.Debugw("unresolved reference",
		logger.FieldFile, rw.file.Path,
		logger.FieldOrigin, origin,
		logger.FieldExport, export)
}
