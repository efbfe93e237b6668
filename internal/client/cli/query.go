package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/rdb/internal/server/models"
)

func newGetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <owner>/<name>",
		Short: "Show one mod as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, name, ok := models.SplitIdentity(args[0])
			if !ok {
				return fmt.Errorf("expected <owner>/<name>, got %q", args[0])
			}

			m, err := o.client().Get(cmd.Context(), owner, name)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "    ")
			return enc.Encode(m)
		},
	}
}

func newListCmd(o *options) *cobra.Command {
	var (
		page   int
		sort   string
		search string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a page of mods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mods, err := o.client().List(cmd.Context(), page, sort, search)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tVERSION\tDOWNLOADS")
			for _, m := range mods {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", models.Identity(m.Owner, m.Name), m.Version, m.Downloads)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVarP(&page, "page", "p", 0, "number of pages to skip")
	cmd.Flags().StringVarP(&sort, "sort", "s", "", "new, old, most-downloads or least-downloads")
	cmd.Flags().StringVarP(&search, "search", "q", "", "search terms")
	return cmd
}

func newCountCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of mods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := o.client().Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}
