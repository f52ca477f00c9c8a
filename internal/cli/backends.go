package cli

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/mark3labs/eeclientgen/internal/engine"
	"github.com/mark3labs/eeclientgen/internal/generate"
	"github.com/spf13/cobra"
)

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List available backends and their aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := generate.DefaultRegistry(engine.DefaultSettings())
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tALIASES\tIN ALL")
			for _, id := range reg.IDs() {
				e, _ := reg.Get(id)
				inAll := "no"
				if slices.Contains(generate.ClientBackends, id) {
					inAll = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", id, strings.Join(e.Aliases(), ", "), inAll)
			}
			return tw.Flush()
		},
	}
}
