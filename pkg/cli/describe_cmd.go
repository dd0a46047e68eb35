package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"duck-projection/internal/service/projection"
)

func newDescribeCmd(s *settings) *cobra.Command {
	var (
		src  sourceFlags
		save string
		desc string
	)

	cmd := &cobra.Command{
		Use:   "describe --source SOURCE",
		Short: "Describe the columns of a DuckDB source",
		Long: "Lists the columns DuckDB reports for a table or file and their kernel types.\n" +
			"With --save the columns are stored as a projection.",
		Example: "  duckproj describe --source events\n" +
			"  duckproj describe --source 's3://bucket/events/*.parquet' --save events",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, err := src.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			svc, closeFn, err := s.service(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer closeFn()

			fields, err := svc.Infer(cmd.Context(), source)
			if err != nil {
				return err
			}
			if save != "" {
				p, err := svc.Create(cmd.Context(), projection.CreateRequest{Name: save, Description: desc, Fields: fields})
				if err != nil {
					return err
				}
				s.logger.Info("projection saved", "name", p.Name, "id", p.ID)
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), fields)
			}
			rows := make([][]string, len(fields))
			for i, f := range fields {
				rows[i] = []string{f.Name, f.Type, yesNo(f.Nullable)}
			}
			if err := printTable(cmd.OutOrStdout(), []string{"NAME", "TYPE", "NULLABLE"}, rows); err != nil {
				return err
			}
			if save != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved projection %q\n", save)
			}
			return nil
		},
	}
	src.register(cmd.Flags())
	cmd.Flags().StringVar(&save, "save", "", "Store the described columns as a projection with this name")
	cmd.Flags().StringVar(&desc, "description", "", "Description for the saved projection")
	return cmd
}
