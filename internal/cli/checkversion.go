package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/eeclientgen/internal/spec"
	"github.com/spf13/cobra"
)

// CheckVersionConfig holds the check-version inputs.
type CheckVersionConfig struct {
	Input  string
	APIURI string

	stdout io.Writer
}

var checkVersionRunner = runCheckVersion

func newCheckVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check-version",
		Short: "Compare a local API description with the server's current version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := cmd.Flags().GetString("input")
			if err != nil {
				return err
			}
			apiURI, err := cmd.Flags().GetString("api-uri")
			if err != nil {
				return err
			}
			input = strings.TrimSpace(input)
			if input == "" {
				return newUsageError("check-version: --input is required")
			}
			cfg := &CheckVersionConfig{
				Input:  input,
				APIURI: strings.TrimRight(strings.TrimSpace(apiURI), "/"),
				stdout: cmd.OutOrStdout(),
			}
			return checkVersionRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("input", "", "Local API description to compare")
	cmd.Flags().String("api-uri", DefaultAPIURI, "Elastic Email server URI")

	return cmd
}

func runCheckVersion(ctx context.Context, cfg *CheckVersionConfig) error {
	p, err := spec.Load(ctx, cfg.Input)
	if err != nil {
		return specError(err)
	}
	status, err := spec.CheckVersion(ctx, spec.SchemaURL(cfg.APIURI), p.Version)
	if err != nil {
		return specError(err)
	}
	if status.Newer {
		fmt.Fprintf(cfg.stdout, "Newer version available: %s (local %s)\n", status.Remote, status.Local)
		return nil
	}
	fmt.Fprintf(cfg.stdout, "Up to date: %s (remote %s)\n", status.Local, status.Remote)
	return nil
}
