package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"duck-projection/internal/domain"
	desc "duck-projection/internal/projection"
	"duck-projection/internal/service/projection"
)

func newProjectionsCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projections",
		Aliases: []string{"proj"},
		Short:   "Manage stored projections",
	}
	cmd.AddCommand(newProjectionsSaveCmd(s))
	cmd.AddCommand(newProjectionsListCmd(s))
	cmd.AddCommand(newProjectionsShowCmd(s))
	cmd.AddCommand(newProjectionsDeleteCmd(s))
	return cmd
}

func newProjectionsSaveCmd(s *settings) *cobra.Command {
	var (
		file string
		name string
	)
	cmd := &cobra.Command{
		Use:   "save -f FILE",
		Short: "Store a projection file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := desc.LoadFile(file)
			if err != nil {
				return err
			}
			if name != "" {
				d.Name = name
			}
			svc, closeFn, err := s.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeFn()

			p, err := svc.Create(cmd.Context(), projection.CreateRequest{
				Name: d.Name, Description: d.Description, Fields: d.Fields,
			})
			if err != nil {
				return err
			}
			return printProjection(cmd, p)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Projection file (YAML or JSON)")
	cmd.Flags().StringVar(&name, "name", "", "Override the projection name")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newProjectionsListCmd(s *settings) *cobra.Command {
	var page domain.PageRequest
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored projections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeFn, err := s.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeFn()

			items, total, err := svc.List(cmd.Context(), page)
			if err != nil {
				return err
			}
			next := domain.NextPageToken(page.Offset(), page.Limit(), total)

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"projections":     items,
					"next_page_token": next,
					"total":           total,
				})
			}
			rows := make([][]string, len(items))
			for i, p := range items {
				rows[i] = []string{p.Name, strconv.Itoa(len(p.Fields)), p.Description, formatValue(p.UpdatedAt)}
			}
			if err := printTable(cmd.OutOrStdout(), []string{"NAME", "FIELDS", "DESCRIPTION", "UPDATED"}, rows); err != nil {
				return err
			}
			if next != "" {
				cmd.PrintErrf("next page: --page-token %s\n", next)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page.MaxResults, "max-results", 0, "Page size")
	cmd.Flags().StringVar(&page.PageToken, "page-token", "", "Token from a previous page")
	return cmd
}

func newProjectionsShowCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show a stored projection and its kernel schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := s.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeFn()

			p, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printProjection(cmd, p)
		},
	}
}

func newProjectionsDeleteCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a stored projection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeFn, err := s.service(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
			}
			cmd.Printf("deleted projection %q\n", args[0])
			return nil
		},
	}
}

func printProjection(cmd *cobra.Command, p *domain.Projection) error {
	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), p)
	}
	d := desc.New(p.Name, p.Fields, nil)
	return printSchema(cmd, p.Name, d.Build(), desc.Unsupported(p.Fields))
}
