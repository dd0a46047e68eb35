package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"duck-projection/internal/arrowschema"
	"duck-projection/internal/engine"
	desc "duck-projection/internal/projection"
	"duck-projection/internal/schema"
	"duck-projection/internal/service/projection"
)

func newScanCmd(s *settings) *cobra.Command {
	var (
		src     sourceFlags
		file    string
		name    string
		columns []string
		where   string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "scan --source SOURCE",
		Short: "Read rows from a DuckDB source through a projection",
		Long: "Reads a table or file through a projection given as a file (-f) or a stored\n" +
			"projection (--projection). Without either, every column is read.",
		Example: "  duckproj scan --source events -f events.yaml --limit 10\n" +
			"  duckproj scan --source data/events.csv --projection events --columns id,name",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file != "" && name != "" {
				return fmt.Errorf("-f and --projection are mutually exclusive")
			}
			source, err := src.resolve(cmd.Flags())
			if err != nil {
				return err
			}

			var res *engine.Result
			if name != "" {
				svc, closeFn, err := s.service(cmd.Context(), true)
				if err != nil {
					return err
				}
				defer closeFn()
				res, err = svc.Scan(cmd.Context(), name, projection.ScanRequest{
					Source: source, Columns: columns, Where: where, Limit: limit,
				})
				if err != nil {
					return err
				}
			} else {
				sch, err := fileSchema(s, file, columns)
				if err != nil {
					return err
				}
				duck, err := s.openDuckDB(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = duck.Close() }()
				res, err = engine.NewScanner(duck, s.logger).Scan(cmd.Context(), engine.ScanRequest{
					Source: source, Schema: sch, Where: where, Limit: limit,
				})
				if err != nil {
					return err
				}
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), res)
			}
			rows := make([][]string, len(res.Rows))
			for i, r := range res.Rows {
				cells := make([]string, len(r))
				for j, v := range r {
					cells[j] = formatValue(v)
				}
				rows[i] = cells
			}
			if err := printTable(cmd.OutOrStdout(), res.Columns, rows); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "(%d rows)\n", res.RowCount)
			return nil
		},
	}
	src.register(cmd.Flags())
	cmd.Flags().StringVarP(&file, "file", "f", "", "Projection file (YAML or JSON)")
	cmd.Flags().StringVar(&name, "projection", "", "Stored projection name")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Read only these projection columns")
	cmd.Flags().StringVar(&where, "where", "", "SQL filter applied to the source")
	cmd.Flags().IntVar(&limit, "limit", engine.DefaultScanLimit, "Maximum rows to return")
	return cmd
}

// fileSchema builds the schema of a projection file. An empty path yields a
// nil schema, which reads every column.
func fileSchema(s *settings, path string, columns []string) (*schema.Schema, error) {
	if path == "" {
		if len(columns) > 0 {
			return nil, fmt.Errorf("--columns needs -f or --projection")
		}
		return nil, nil
	}
	d, err := desc.LoadFile(path)
	if err != nil {
		return nil, err
	}
	d.Logger = s.logger
	sch, err := schema.TryBuild(d)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return sch, nil
	}
	p, err := arrowschema.NewProjection(arrowschema.FromSchema(sch), columns...)
	if err != nil {
		return nil, err
	}
	return schema.TryBuild(p)
}
