package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigName = "eeclientgen.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool

	stdout io.Writer
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample eeclientgen configuration file",
		Long:  "Scaffold a commented eeclientgen configuration file that documents every generate option.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{OutputPath: out, Force: force, stdout: cmd.OutOrStdout()})
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(_ context.Context, cfg *InitConfig) error {
	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigName
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil {
		if st.IsDir() {
			return newUsageError(fmt.Sprintf("init: %q is a directory", absPath))
		}
		if !cfg.Force {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"

	tmp, err := os.CreateTemp(filepath.Dir(absPath), ".eeclientgen-init-*.tmp")
	if err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("init: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("init: close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("init: chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, absPath); err != nil {
		_ = os.Remove(tmpName)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}

	w := cfg.stdout
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprintf(w, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML documents every key accepted by generate --config.
const sampleConfigYAML = `# eeclientgen configuration (YAML)
# All fields are optional. Command-line flags override config values.

# Path or URL of the API description (JSON or YAML). Defaults to
# <apiUri>/public/apigenerator.
# input: ./apigenerator.json

# Backends to generate: ids (1-7), aliases (cs, java, js, pl, php, py, oas)
# or all. "all" covers the six client libraries; the OpenAPI document is opt-in.
# lang: [all]

# Output directory for generated clients.
# out: Clients

# Class, namespace and file name used by every generated client.
# clientName: ElasticEmailClient

# Elastic Email server. Generated clients call <apiUri>/v2.
# apiUri: https://api.elasticemail.com

# API key placeholder baked into generated clients.
# apiKey: 00000000-0000-0000-0000-000000000000

# Write multi-file clients (Java) as directories instead of zip archives.
# unpack: false

# Maximum backends generated concurrently. Defaults to the number of CPUs.
# parallel: 4

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite existing output files.
# force: false

# Enable verbose logging, optionally as JSON.
# verbose: false
# logJson: false
`
