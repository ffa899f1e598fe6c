// Package graph is the module graph cache and reference resolver. A Session
// parses files lazily on first reference, memoizes each module's id and
// export classification, and turns import origins into qualified
// documentation references.
package graph

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/phobologic/jsdocts/internal/errors"
	"github.com/phobologic/jsdocts/internal/lang"
	"github.com/phobologic/jsdocts/internal/logger"
	"github.com/phobologic/jsdocts/internal/model"
)

// FileParser turns source into a declaration tree.
type FileParser interface {
	Parse(path string, source []byte) (*model.File, error)
}

// Options configures a Session. Paths must be absolute.
type Options struct {
	// ModuleRoot anchors module ids. Empty means the common root of Files.
	ModuleRoot string
	// Files is every file processed in the run.
	Files      []string
	Extensions []string
	IndexFile  string
	Parser     FileParser

	// Exists and ReadFile default to the os package.
	Exists   func(path string) bool
	ReadFile func(path string) ([]byte, error)
	Logger   *zap.SugaredLogger
}

// Session owns the caches of one run. It is not safe for concurrent use but
// tolerates nested calls: computing one module's info never re-enters
// another's.
type Session struct {
	opts  Options
	log   *zap.SugaredLogger
	files map[string]*model.File
	infos map[string]*model.ModuleInfo
	root  *string
}

// NewSession creates an empty session.
func NewSession(opts Options) *Session {
	if opts.Extensions == nil {
		opts.Extensions = lang.JavaScript.Extensions
	}
	if opts.IndexFile == "" {
		opts.IndexFile = lang.JavaScript.IndexFile
	}
	if opts.Exists == nil {
		opts.Exists = fileExists
	}
	if opts.ReadFile == nil {
		opts.ReadFile = os.ReadFile
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Session{
		opts:  opts,
		log:   log,
		files: make(map[string]*model.File),
		infos: make(map[string]*model.ModuleInfo),
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Root returns the directory module ids are relative to. The implicit root
// is computed once, on first use.
func (s *Session) Root() string {
	if s.root == nil {
		root := s.opts.ModuleRoot
		if root == "" {
			root = CommonRoot(s.opts.Files)
		}
		s.root = &root
	}
	return *s.root
}

// File returns the parsed tree for path, reading and parsing it on first use.
func (s *Session) File(path string) (*model.File, error) {
	path = filepath.Clean(path)
	if f, ok := s.files[path]; ok {
		return f, nil
	}
	if !s.opts.Exists(path) {
		return nil, errors.Wrapf(errors.ErrNotFound, "module %s", path)
	}
	if s.opts.Parser == nil {
		return nil, errors.Newf("no parser to load %s", path)
	}
	src, err := s.opts.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	f, err := s.opts.Parser.Parse(path, src)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	s.files[path] = f
	return f, nil
}

// ModuleInfo returns the memoized module info for the file at path. Every
// specifier that resolves to the same path shares one instance.
func (s *Session) ModuleInfo(path string) (*model.ModuleInfo, error) {
	path = filepath.Clean(path)
	if info, ok := s.infos[path]; ok {
		return info, nil
	}
	f, err := s.File(path)
	if err != nil {
		return nil, err
	}

	info := classify(f)
	info.Path = path
	info.ID = moduleOverride(f)
	if info.ID == "" {
		info.ID = moduleID(s.Root(), path, s.opts.Extensions)
	}
	s.infos[path] = info
	s.log.Debugw("module info", logger.FieldPath, path, logger.FieldModuleID, info.ID,
		"default_export", info.DefaultExportName, "named_classes", len(info.NamedExportClassNames))
	return info, nil
}

// Lookup resolves a relative specifier against dir and returns the module
// info of the file it names.
func (s *Session) Lookup(origin, dir string) (*model.ModuleInfo, error) {
	path, ok := ResolvePath(filepath.Join(dir, origin), s.opts.Extensions, s.opts.IndexFile, s.opts.Exists)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "module %s from %s", origin, dir)
	}
	return s.ModuleInfo(path)
}

// Resolve produces the qualified reference for exportName of the module
// named by origin, relative to dir. exportName "default" selects the default
// export; "" references the module itself. Package specifiers are not looked
// up. It reports false when a relative origin does not resolve.
func (s *Session) Resolve(origin, exportName, dir string) (string, bool) {
	if !IsRelative(origin) {
		if exportName == "" || exportName == "default" {
			return "module:" + origin, true
		}
		return "module:" + origin + "~" + exportName, true
	}

	info, err := s.Lookup(origin, dir)
	if err != nil {
		s.log.Debugw("unresolved reference", logger.FieldOrigin, origin, logger.FieldExport, exportName,
			logger.FieldPath, dir, logger.FieldError, err)
		return "", false
	}
	return Qualify(info, exportName), true
}

// Qualify joins a module id and export name. The default export and names
// that are not named class exports use '~'; named class exports use '.'.
func Qualify(info *model.ModuleInfo, exportName string) string {
	ref := "module:" + info.ID
	switch {
	case exportName == "":
		return ref
	case exportName == "default":
		if info.DefaultExportName == "" {
			return ref
		}
		return ref + "~" + info.DefaultExportName
	case info.IsNamedClassExport(exportName):
		return ref + "." + exportName
	default:
		return ref + "~" + exportName
	}
}

// IsRelative reports whether a specifier names a file rather than a package.
func IsRelative(origin string) bool {
	return strings.HasPrefix(origin, ".")
}

var moduleTagRe = regexp.MustCompile(`@module[ \t]+([^\s*]+)`)

// moduleOverride returns the id declared by a @module tag in the file's own
// comments, or "".
func moduleOverride(f *model.File) string {
	for _, c := range f.Comments {
		if m := moduleTagRe.FindStringSubmatch(c.Value); m != nil {
			return m[1]
		}
	}
	return ""
}

// classify scans top-level declarations for classes, a default export naming
// a class seen earlier, and named class exports.
func classify(f *model.File) *model.ModuleInfo {
	info := &model.ModuleInfo{NamedExportClassNames: make(map[string]struct{})}
	classes := make(map[string]struct{})

	for _, d := range f.Declarations {
		switch d.Kind {
		case model.DeclClass:
			if d.Name != "" {
				classes[d.Name] = struct{}{}
			}
		case model.DeclExportDefault:
			if d.Inner != nil && d.Inner.Kind == model.DeclClass && d.Inner.Name != "" {
				classes[d.Inner.Name] = struct{}{}
				info.DefaultExportName = d.Inner.Name
			} else if _, ok := classes[d.Name]; ok {
				info.DefaultExportName = d.Name
			}
		case model.DeclExportNamed:
			if d.Inner != nil && d.Inner.Kind == model.DeclClass && d.Inner.Name != "" {
				classes[d.Inner.Name] = struct{}{}
				info.NamedExportClassNames[d.Inner.Name] = struct{}{}
			}
			for _, name := range d.ExportNames {
				if _, ok := classes[name]; ok {
					info.NamedExportClassNames[name] = struct{}{}
				}
			}
		}
	}
	return info
}
