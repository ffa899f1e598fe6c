// Package config loads and validates the jsdocts configuration.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/phobologic/jsdocts/internal/errors"
	"github.com/phobologic/jsdocts/internal/lang"
	"github.com/phobologic/jsdocts/internal/logger"
)

// FileName is the configuration file looked up in the working directory,
// without extension.
const FileName = ".jsdocts"

// EnvPrefix prefixes environment overrides, e.g. JSDOCTS_TYPESCRIPT_MODULEROOT.
const EnvPrefix = "JSDOCTS"

// DefaultMaxFileSize is the size above which source files are skipped.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// Config is the full jsdocts configuration.
type Config struct {
	TypeScript  TypeScriptConfig `mapstructure:"typescript"`
	Output      OutputConfig     `mapstructure:"output"`
	MaxFileSize int              `mapstructure:"maxFileSize"`
	Log         LogConfig        `mapstructure:"log"`
}

// TypeScriptConfig holds the module resolution options.
type TypeScriptConfig struct {
	// ModuleRoot anchors module ids. Empty means the common root of the
	// processed files. Validate makes it absolute.
	ModuleRoot string   `mapstructure:"moduleRoot"`
	Extensions []string `mapstructure:"extensions"`
}

// OutputConfig holds where results go.
type OutputConfig struct {
	Dir   string `mapstructure:"dir"`
	Cache string `mapstructure:"cache"`
}

// LogConfig holds logging options.
type LogConfig struct {
	JSON  bool   `mapstructure:"json"`
	Level string `mapstructure:"level"`
}

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"module-root":   "typescript.moduleRoot",
	"out":           "output.dir",
	"cache":         "output.cache",
	"max-file-size": "maxFileSize",
	"log-json":      "log.json",
	"log-level":     "log.level",
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("typescript.moduleRoot", "")
	v.SetDefault("typescript.extensions", lang.JavaScript.Extensions)
	v.SetDefault("output.dir", "")
	v.SetDefault("output.cache", "")
	v.SetDefault("maxFileSize", DefaultMaxFileSize)
	v.SetDefault("log.json", false)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds the flags in flagKeys that fs defines.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "binding --%s", name)
		}
	}
	return nil
}

// Load reads the configuration. An explicit path must exist; otherwise
// FileName is looked up in dir and its absence leaves the defaults.
func Load(v *viper.Viper, path, dir string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.WithHint(
				errors.Wrap(errors.ErrConfig, err.Error()),
				"check the file passed to --config")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.ErrConfig, err.Error())
	}
	return &cfg, nil
}

// Validate checks every option and resolves ModuleRoot against dir.
func (c *Config) Validate(dir string) error {
	if root := c.TypeScript.ModuleRoot; root != "" {
		if !filepath.IsAbs(root) {
			root = filepath.Join(dir, root)
		}
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			return errors.WithHint(
				errors.NewConfigError("directory %q does not exist", root),
				`check the "typescript.moduleRoot" option`)
		}
		c.TypeScript.ModuleRoot = root
	}

	if len(c.TypeScript.Extensions) == 0 {
		return errors.NewConfigError("typescript.extensions is empty")
	}
	for _, ext := range c.TypeScript.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.NewConfigError("extension %q must start with a dot", ext)
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.NewConfigError("maxFileSize must be positive, got %d", c.MaxFileSize)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
