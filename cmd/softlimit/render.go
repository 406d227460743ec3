package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-softlimit/pkg/render"
)

func newRenderCmd(a *app) *cobra.Command {
	var (
		asJSON   bool
		handles  []string
		document bool
	)
	var tunables engineFlags
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render fields with their counter placeholders",
		Long: `Render the loaded fields as one page. The runtime script is emitted once,
with the first field that shows a counter.`,
		Example: `  softlimit render --fields fields.yaml
  softlimit render --fields fields/ --handle title --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := tunables.apply(cmd.Flags(), &a.cfg); err != nil {
				return err
			}
			set, err := a.fieldSet()
			if err != nil {
				return err
			}
			list, err := selectFields(set, handles)
			if err != nil {
				return err
			}
			renderer, err := a.renderer(nil)
			if err != nil {
				return err
			}
			results, err := renderer.Fields(cmd.Context(), render.NewPage(), list)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, results)
			}
			var b strings.Builder
			for _, res := range results {
				b.WriteString(res.HTML)
			}
			if document {
				fmt.Fprintf(out, "<!doctype html>\n<html>\n<head><meta charset=\"utf-8\"></head>\n<body>\n%s</body>\n</html>\n", b.String())
				return nil
			}
			fmt.Fprint(out, b.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print render results as JSON")
	cmd.Flags().StringSliceVar(&handles, "handle", nil, "Field handles to render (default all)")
	cmd.Flags().BoolVar(&document, "document", false, "Wrap the output in a full HTML document")
	tunables.register(cmd.Flags())
	return cmd
}
