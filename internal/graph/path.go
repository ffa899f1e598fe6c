package graph

import (
	"path/filepath"
	"strings"
)

// ResolvePath finds the file a module specifier points at. Candidates are
// tried in order: base itself, base with each extension, then the index file
// of base as a directory with each extension. exists is the only file system
// access.
func ResolvePath(base string, exts []string, index string, exists func(string) bool) (string, bool) {
	base = filepath.Clean(base)
	if exists(base) {
		return base, true
	}
	for _, ext := range exts {
		if exists(base + ext) {
			return base + ext, true
		}
	}
	if index == "" {
		return "", false
	}
	for _, ext := range exts {
		candidate := filepath.Join(base, index+ext)
		if exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// CommonRoot returns the deepest directory containing every path, reducing
// pairwise over the list. It returns "" for an empty list.
func CommonRoot(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	root := filepath.Dir(filepath.Clean(paths[0]))
	for _, p := range paths[1:] {
		root = commonDir(root, filepath.Dir(filepath.Clean(p)))
	}
	return root
}

func commonDir(a, b string) string {
	sep := string(filepath.Separator)
	as := strings.Split(a, sep)
	bs := strings.Split(b, sep)
	n := 0
	for n < len(as) && n < len(bs) && as[n] == bs[n] {
		n++
	}
	common := strings.Join(as[:n], sep)
	if common == "" && filepath.IsAbs(a) {
		return sep
	}
	if common == "" {
		return "."
	}
	return common
}

// moduleID derives an id from a path relative to root: the extension is
// dropped, leading ./ and ../ segments are stripped, and separators become
// forward slashes.
func moduleID(root, path string, exts []string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, ext := range exts {
		if strings.HasSuffix(rel, ext) {
			rel = strings.TrimSuffix(rel, ext)
			break
		}
	}
	for {
		switch {
		case strings.HasPrefix(rel, "./"):
			rel = rel[2:]
		case strings.HasPrefix(rel, "../"):
			rel = rel[3:]
		default:
			return rel
		}
	}
}
