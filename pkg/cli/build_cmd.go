package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"duck-projection/internal/domain"
	"duck-projection/internal/projection"
	"duck-projection/internal/schema"
)

// builtSchema is the JSON shape of one built projection file.
type builtSchema struct {
	Name    string             `json:"name"`
	Display string             `json:"display"`
	Schema  *schema.Schema     `json:"schema"`
	Skipped []domain.FieldSpec `json:"skipped"`
}

func loadDescriptors(s *settings, files []string) ([]*projection.Descriptor, error) {
	out := make([]*projection.Descriptor, 0, len(files))
	for _, f := range files {
		d, err := projection.LoadFile(f)
		if err != nil {
			return nil, err
		}
		d.Logger = s.logger
		out = append(out, d)
	}
	return out, nil
}

func newBuildCmd(s *settings) *cobra.Command {
	var (
		files []string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "build -f FILE [-f FILE...]",
		Short: "Build kernel schemas from projection files",
		Long: "Reads YAML or JSON projection files and builds one kernel schema per file.\n" +
			"Fields with unsupported types are skipped and reported. With --watch the\n" +
			"schemas are rebuilt whenever a file changes.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !watch {
				return runBuild(cmd, s, files)
			}

			fw, err := newFileWatcher(files, s.logger)
			if err != nil {
				return err
			}
			rebuild := func() {
				if err := runBuild(cmd, s, files); err != nil {
					cmd.PrintErrf("build failed: %v\n", err)
				}
			}
			rebuild()
			return fw.run(cmd.Context(), rebuild)
		},
	}
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Projection file (YAML or JSON); repeatable")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Rebuild when a projection file changes")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runBuild(cmd *cobra.Command, s *settings, files []string) error {
	descs, err := loadDescriptors(s, files)
	if err != nil {
		return err
	}
	projections := make([]schema.Projection, len(descs))
	for i, d := range descs {
		projections[i] = d
	}
	schemas, err := schema.BuildAll(cmd.Context(), projections...)
	if err != nil {
		return err
	}

	results := make([]builtSchema, len(descs))
	for i, d := range descs {
		skipped := projection.Unsupported(d.Fields)
		if skipped == nil {
			skipped = []domain.FieldSpec{}
		}
		results[i] = builtSchema{Name: d.Name, Display: schemas[i].String(), Schema: schemas[i], Skipped: skipped}
	}

	out := cmd.OutOrStdout()
	if getOutputFormat(cmd) == "json" {
		return printJSON(out, results)
	}
	for i, r := range results {
		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}
		if err := printSchema(cmd, r.Name, r.Schema, r.Skipped); err != nil {
			return err
		}
	}
	return nil
}

func printSchema(cmd *cobra.Command, name string, s *schema.Schema, skipped []domain.FieldSpec) error {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "# %s\n", name)
	rows := make([][]string, 0, s.Len())
	for i, f := range s.All() {
		rows = append(rows, []string{strconv.Itoa(i), f.Name, f.TypeName(), yesNo(f.Nullable)})
	}
	if err := printTable(out, []string{"#", "NAME", "TYPE", "NULLABLE"}, rows); err != nil {
		return err
	}
	for _, f := range skipped {
		_, _ = fmt.Fprintf(out, "skipped %s (%s)\n", f.Name, f.Type)
	}
	return nil
}
