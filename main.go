// jsdocts rewrites the TypeScript-flavored type expressions in JSDoc comments
// into the syntax the JSDoc generator understands, qualifies type references
// with their module paths, and reports the classes it documented.
package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/phobologic/jsdocts/internal/config"
	"github.com/phobologic/jsdocts/internal/discover"
	"github.com/phobologic/jsdocts/internal/doclet"
	"github.com/phobologic/jsdocts/internal/errors"
	"github.com/phobologic/jsdocts/internal/graph"
	"github.com/phobologic/jsdocts/internal/lang"
	"github.com/phobologic/jsdocts/internal/logger"
	"github.com/phobologic/jsdocts/internal/model"
	"github.com/phobologic/jsdocts/internal/parse"
	"github.com/phobologic/jsdocts/internal/rewrite"
	"github.com/phobologic/jsdocts/internal/toon"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.Execute()
}

type rootOptions struct {
	configPath  string
	showVersion bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var opts rootOptions
	v := config.New()

	cmd := &cobra.Command{
		Use:   "jsdocts [flags] [paths...]",
		Short: "Rewrite TypeScript-style JSDoc comments for the JSDoc generator",
		Long: `jsdocts rewrites the documentation comments of JavaScript sources so the
JSDoc generator can read TypeScript-flavored type expressions. Imported and
local type names are qualified with module paths, classes get @classdesc and
@extends markers, and a TOON report of every file and class is printed.

Paths may be files or directories and default to the current directory.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				_, _ = fmt.Fprintf(stdout, "jsdocts %s\n", version)
				return nil
			}
			if err := config.BindFlags(v, cmd.Flags()); err != nil {
				return err
			}
			return runRewrite(v, opts.configPath, args, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "configuration file (default ./"+config.FileName+".yaml)")
	f.String("module-root", "", "directory module ids are relative to (default: common root of the inputs)")
	f.StringP("out", "o", "", "write rewritten sources under this directory")
	f.String("cache", "", "report cache file path")
	f.Int("max-file-size", config.DefaultMaxFileSize, "skip files larger than this many bytes")
	f.Bool("log-json", false, "write logs as JSON")
	f.String("log-level", "info", "log level: debug, info, warn or error")
	f.BoolVarP(&opts.showVersion, "version", "V", false, "show version and exit")

	cmd.AddCommand(newInitCmd(stdout, stderr))
	return cmd
}

func runRewrite(v *viper.Viper, configPath string, args []string, stdout, stderr io.Writer) error {
	wd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "resolving working directory")
	}
	cfg, err := config.Load(v, configPath, wd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(wd); err != nil {
		return err
	}

	log, err := logger.New(logger.Options{JSON: cfg.Log.JSON, Level: cfg.Log.Level, Output: stderr})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	files, err := collectInputs(args, cfg.TypeScript.Extensions)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no source files found")
	}
	log.Debugw("discovered files", logger.FieldCount, len(files))

	// A cached report cannot stand in for a run that also renders sources.
	cache := cfg.Output.Cache
	if cfg.Output.Dir != "" {
		cache = ""
	}
	key := cacheKey(cfg, files)
	if cache != "" {
		if data, ok := readCache(cache, key, files); ok {
			log.Debugw("using cached report", logger.FieldPath, cache)
			_, _ = stdout.Write(data)
			return nil
		}
	}

	files = filterBySize(files, cfg.MaxFileSize, log)
	if len(files) == 0 {
		return errors.New("no source files found (all exceeded size limit)")
	}

	report, err := processFiles(cfg, files, log)
	if err != nil {
		return err
	}

	output := toon.Encode(report)
	if cache != "" {
		data := cacheHeader + key + "\n" + output + "\n"
		if err := os.WriteFile(cache, []byte(data), 0o644); err != nil {
			log.Warnw("could not write cache", logger.FieldPath, cache, logger.FieldError, err)
		}
	}

	_, _ = fmt.Fprintln(stdout, output)
	return nil
}

// processFiles rewrites every file in order against one graph session. Files
// are visited one at a time: the session caches are not shared across
// goroutines.
func processFiles(cfg *config.Config, files []string, log *zap.SugaredLogger) (*model.Report, error) {
	p, err := parse.New(lang.JavaScript)
	if err != nil {
		return nil, err
	}
	s := graph.NewSession(graph.Options{
		ModuleRoot: cfg.TypeScript.ModuleRoot,
		Files:      files,
		Extensions: cfg.TypeScript.Extensions,
		IndexFile:  lang.JavaScript.IndexFile,
		Parser:     p,
		Logger:     log,
	})

	base := graph.CommonRoot(files)
	report := &model.Report{
		Project: filepath.Base(base),
		Root:    s.Root(),
	}

	var (
		doclets               []*doclet.Doclet
		rewritten, unresolved int
	)
	for _, path := range files {
		rel, err := filepath.Rel(base, path)
		if err != nil {
			rel = path
		}

		// The session hands back a tree it already parsed for an earlier
		// file's references, so each file is parsed once.
		f, err := s.File(path)
		if err != nil {
			log.Warnw("skipping file", logger.FieldFile, rel, logger.FieldError, err)
			continue
		}
		res, err := rewrite.File(f, s, rewrite.Options{Logger: log})
		if err != nil {
			return nil, errors.Wrapf(err, "rewriting %s", rel)
		}
		info, err := s.ModuleInfo(path)
		if err != nil {
			return nil, errors.Wrapf(err, "module info for %s", rel)
		}
		docs, err := doclet.Collect(f, s)
		if err != nil {
			return nil, errors.Wrapf(err, "collecting doclets for %s", rel)
		}
		doclets = append(doclets, docs...)

		if dir := cfg.Output.Dir; dir != "" {
			if err := writeRendered(dir, rel, f); err != nil {
				return nil, err
			}
		}

		log.Infow("rewrote file", logger.FieldFile, rel, logger.FieldModuleID, info.ID,
			"comments", res.Comments, "rewritten", res.Rewritten, "unresolved", res.Unresolved)
		rewritten += res.Rewritten
		unresolved += res.Unresolved

		report.Files = append(report.Files, model.FileSummary{
			Path:       filepath.ToSlash(rel),
			ModuleID:   info.ID,
			Comments:   res.Comments,
			Rewritten:  res.Rewritten,
			Unresolved: res.Unresolved,
		})
	}

	doclet.AddInherited(doclets)
	for _, d := range doclets {
		report.Classes = append(report.Classes, model.ClassSummary{
			Longname:  d.Longname,
			MemberOf:  d.MemberOf,
			Augments:  d.Augments,
			Ancestors: d.Ancestors,
			Overrides: d.Overrides,
			Inherited: len(d.Inherited),
		})
	}

	log.Infow("run complete", logger.FieldCount, len(report.Files),
		"classes", len(report.Classes), "rewritten", rewritten, "unresolved", unresolved)
	return report, nil
}

func writeRendered(outDir, rel string, f *model.File) error {
	dest := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrapf(err, "creating output directory for %s", rel)
	}
	if err := os.WriteFile(dest, parse.Render(f), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", dest)
	}
	return nil
}

// collectInputs expands args into a sorted, de-duplicated list of absolute
// file paths. Directories are walked for files with one of exts; files named
// directly are kept whatever their extension.
func collectInputs(args, exts []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, arg := range args {
		abs, err := filepath.Abs(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", arg)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, errors.Wrap(err, "input path")
		}
		if !info.IsDir() {
			add(abs)
			continue
		}
		rels, err := discover.Files(abs, exts)
		if err != nil {
			return nil, errors.Wrapf(err, "discovering files in %s", arg)
		}
		for _, rel := range rels {
			add(filepath.Join(abs, rel))
		}
	}

	sort.Strings(files)
	return files, nil
}

// cacheHeader starts the first line of a cache file; the rest of the line is
// the key of the run that wrote it.
const cacheHeader = "# jsdocts cache "

// cacheKey digests the version, resolution options and input list, which
// together with file contents determine the report.
func cacheKey(cfg *config.Config, files []string) string {
	h := sha256.New()
	_, _ = fmt.Fprintln(h, version)
	_ = json.NewEncoder(h).Encode(struct {
		TypeScript  config.TypeScriptConfig
		MaxFileSize int
	}{cfg.TypeScript, cfg.MaxFileSize})
	for _, f := range files {
		_, _ = fmt.Fprintln(h, f)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// readCache returns the cached report when it was written under key and no
// input has been modified since.
func readCache(cachePath, key string, files []string) ([]byte, bool) {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return nil, false
	}
	cacheMtime := cacheInfo.ModTime()

	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil {
			return nil, false
		}
		if !fi.ModTime().Before(cacheMtime) {
			return nil, false
		}
	}

	data, err := os.ReadFile(cachePath)
	if err != nil {
		return nil, false
	}
	header, body, ok := bytes.Cut(data, []byte("\n"))
	if !ok || string(header) != cacheHeader+key {
		return nil, false
	}
	return body, true
}

func filterBySize(files []string, maxSize int, log *zap.SugaredLogger) []string {
	var kept []string
	for _, f := range files {
		fi, err := os.Stat(f)
		if err != nil {
			kept = append(kept, f) // keep if can't stat
			continue
		}
		if fi.Size() > int64(maxSize) {
			log.Warnw("skipped large file", logger.FieldFile, f, "max_size", maxSize)
			continue
		}
		kept = append(kept, f)
	}
	return kept
}
