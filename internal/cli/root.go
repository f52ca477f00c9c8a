package cli

import (
	"fmt"

	"github.com/mark3labs/eeclientgen/internal/logging"
	"github.com/spf13/cobra"
)

// Execute runs the eeclientgen CLI.
func Execute() error {
	defer logging.Sync()
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eeclientgen",
		Short: "Generate Elastic Email API clients",
		Long: "eeclientgen reads the Elastic Email API description and generates client libraries " +
			"for C#, Java, JavaScript, Perl, PHP and Python, plus an optional OpenAPI document.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			jsonLogs, _ := cmd.Flags().GetBool("log-json")
			return logging.Initialize(verbose, jsonLogs)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// Convert Cobra flag errors (like unknown flags) into friendly usage errors
	// that also show the command's help text.
	flagError := func(c *cobra.Command, err error) error {
		return newUsageError(fmt.Sprintf("%v\n\n%s", err, c.UsageString()))
	}
	cmd.SetFlagErrorFunc(flagError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging output")
	cmd.PersistentFlags().Bool("log-json", false, "Emit logs as JSON")

	for _, sub := range []*cobra.Command{
		newGenerateCmd(),
		newInitCmd(),
		newBackendsCmd(),
		newCheckVersionCmd(),
		newVersionCmd(),
	} {
		sub.SetFlagErrorFunc(flagError)
		cmd.AddCommand(sub)
	}

	return cmd
}
