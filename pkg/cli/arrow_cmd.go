package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"duck-projection/internal/arrowschema"
	"duck-projection/internal/projection"
	"duck-projection/internal/schema"
)

type arrowField struct {
	Name     string            `json:"name"`
	Type     string            `json:"type"`
	Nullable bool              `json:"nullable"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func newArrowCmd(s *settings) *cobra.Command {
	var (
		file    string
		columns []string
	)

	cmd := &cobra.Command{
		Use:   "arrow -f FILE",
		Short: "Print the Arrow schema of a projection file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := projection.LoadFile(file)
			if err != nil {
				return err
			}
			d.Logger = s.logger

			as := arrowschema.FromSchema(schema.Build(d))
			if len(columns) > 0 {
				p, err := arrowschema.NewProjection(as, columns...)
				if err != nil {
					return err
				}
				as = arrowschema.FromSchema(schema.Build(p))
			}

			fields := make([]arrowField, 0, as.NumFields())
			for _, f := range as.Fields() {
				af := arrowField{Name: f.Name, Type: f.Type.String(), Nullable: f.Nullable}
				if f.HasMetadata() {
					af.Metadata = make(map[string]string, f.Metadata.Len())
					for i, k := range f.Metadata.Keys() {
						af.Metadata[k] = f.Metadata.Values()[i]
					}
				}
				fields = append(fields, af)
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), fields)
			}
			rows := make([][]string, len(fields))
			for i, f := range fields {
				md := make([]string, 0, len(f.Metadata))
				for k, v := range f.Metadata {
					md = append(md, k+"="+v)
				}
				rows[i] = []string{f.Name, f.Type, yesNo(f.Nullable), strings.Join(md, ",")}
			}
			return printTable(cmd.OutOrStdout(), []string{"NAME", "ARROW TYPE", "NULLABLE", "METADATA"}, rows)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Projection file (YAML or JSON)")
	cmd.Flags().StringSliceVar(&columns, "columns", nil, "Keep only these columns, in this order")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
