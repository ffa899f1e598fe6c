package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/jsdocts/internal/config"
	"github.com/phobologic/jsdocts/internal/errors"
	"github.com/phobologic/jsdocts/internal/lang"
)

const (
	sentinelStart = "# jsdocts:start"
	sentinelEnd   = "# jsdocts:end"
)

// newInitCmd builds the `jsdocts init` subcommand, which writes (or updates)
// the managed block of a .jsdocts.yaml configuration file.
func newInitCmd(stdout, stderr io.Writer) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "init [flags] [path-to-config]",
		Short: "Write the default configuration block",
		Long: `Write the default jsdocts configuration to a YAML file. The block is wrapped
in sentinel comments so it can be updated in place on subsequent runs without
touching surrounding content. Creates the file if it does not exist.

path-to-config defaults to ./` + config.FileName + `.yaml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(args, dryRun, stdout, stderr)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print what would be written without modifying the file")
	return cmd
}

func runInit(args []string, dryRun bool, stdout, stderr io.Writer) error {
	section := generateSection()

	// --dry-run with no path: just print the section itself.
	if dryRun && len(args) == 0 {
		_, _ = fmt.Fprintln(stdout, section)
		return nil
	}

	path := config.FileName + ".yaml"
	if len(args) > 0 {
		path = args[0]
	}

	existing, _ := os.ReadFile(path)
	updated := applySection(string(existing), section)

	if dryRun {
		_, _ = fmt.Fprint(stdout, updated)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", path)
	}

	_, _ = fmt.Fprintf(stderr, "wrote jsdocts configuration to %s\n", path)
	return nil
}

// generateSection returns the sentinel-wrapped default configuration.
func generateSection() string {
	exts := make([]string, len(lang.JavaScript.Extensions))
	for i, e := range lang.JavaScript.Extensions {
		exts[i] = fmt.Sprintf("%q", e)
	}

	body := `# Managed by "jsdocts init"; edits between the markers are replaced.
typescript:
  # Directory module ids are relative to. Leave empty to use the common
  # root of the processed files.
  moduleRoot: ""
  extensions: [` + strings.Join(exts, ", ") + `]
output:
  # Write rewritten sources here, mirroring the input layout.
  dir: ""
  # Reuse the last report while no input is newer than this file.
  cache: ""
maxFileSize: ` + fmt.Sprint(config.DefaultMaxFileSize) + `
log:
  json: false
  level: info`

	return sentinelStart + "\n" + body + "\n" + sentinelEnd
}

// applySection inserts section into content, replacing an existing sentinel
// block if present or appending if not. It is a pure function for easy testing.
func applySection(content, section string) string {
	start := strings.Index(content, sentinelStart)
	end := strings.Index(content, sentinelEnd)

	if start >= 0 && end > start {
		return content[:start] + section + content[end+len(sentinelEnd):]
	}

	// Append, ensuring a blank line separator.
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + section + "\n"
}
