package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"

	"github.com/phobologic/jsdocts/internal/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	cfg, err := Load(New(), "", dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := &Config{
		TypeScript:  TypeScriptConfig{Extensions: []string{".js", ".mjs", ".cjs", ".jsx"}},
		MaxFileSize: DefaultMaxFileSize,
		Log:         LogConfig{Level: "info"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(dir); err != nil {
		t.Errorf("Validate defaults: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".jsdocts.yaml"), `typescript:
  moduleRoot: src
  extensions: [.js]
output:
  dir: out
maxFileSize: 2048
log:
  level: debug
`)
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(New(), "", dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := cfg.Validate(dir); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := &Config{
		TypeScript:  TypeScriptConfig{ModuleRoot: filepath.Join(dir, "src"), Extensions: []string{".js"}},
		Output:      OutputConfig{Dir: "out"},
		MaxFileSize: 2048,
		Log:         LogConfig{Level: "debug"},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	_, err := Load(New(), filepath.Join(dir, "nope.yaml"), dir)
	if !errors.IsConfigError(err) {
		t.Fatalf("err = %v, want config error", err)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JSDOCTS_MAXFILESIZE", "10")
	t.Setenv("JSDOCTS_LOG_LEVEL", "warn")

	cfg, err := Load(New(), "", dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxFileSize != 10 || cfg.Log.Level != "warn" {
		t.Errorf("env not applied: %+v", cfg)
	}
}

func TestBindFlags(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("module-root", "", "")
	fs.Int("max-file-size", 0, "")
	fs.Bool("log-json", false, "")
	if err := fs.Parse([]string{"--module-root", dir, "--log-json"}); err != nil {
		t.Fatal(err)
	}

	v := New()
	if err := BindFlags(v, fs); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	cfg, err := Load(v, "", dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TypeScript.ModuleRoot != dir || !cfg.Log.JSON {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.MaxFileSize != DefaultMaxFileSize {
		t.Errorf("unset flag overrode default: MaxFileSize = %d", cfg.MaxFileSize)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "file.js"), "")

	valid := func() *Config {
		return &Config{
			TypeScript:  TypeScriptConfig{Extensions: []string{".js"}},
			MaxFileSize: 1,
			Log:         LogConfig{Level: "info"},
		}
	}

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"missing root", func(c *Config) { c.TypeScript.ModuleRoot = "missing" }},
		{"root is a file", func(c *Config) { c.TypeScript.ModuleRoot = "file.js" }},
		{"no extensions", func(c *Config) { c.TypeScript.Extensions = nil }},
		{"extension without dot", func(c *Config) { c.TypeScript.Extensions = []string{"js"} }},
		{"zero size", func(c *Config) { c.MaxFileSize = 0 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.modify(cfg)
			if err := cfg.Validate(dir); !errors.IsConfigError(err) {
				t.Errorf("Validate = %v, want config error", err)
			}
		})
	}

	if err := valid().Validate(dir); err != nil {
		t.Errorf("valid config: %v", err)
	}
}

func TestValidateRootHint(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		TypeScript:  TypeScriptConfig{ModuleRoot: "/does/not/exist", Extensions: []string{".js"}},
		MaxFileSize: 1,
	}
	err := cfg.Validate(t.TempDir())
	hints := errors.GetAllHints(err)
	if len(hints) != 1 || hints[0] != `check the "typescript.moduleRoot" option` {
		t.Errorf("hints = %q", hints)
	}
}
