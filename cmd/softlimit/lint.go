package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-softlimit/pkg/openapi"
)

func newLintCmd(a *app) *cobra.Command {
	var (
		asJSON   bool
		all      bool
		validate bool
		timeout  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "lint-openapi <file|url>",
		Short: "Check soft-limit markers in OpenAPI descriptions",
		Long: `Load an OpenAPI document from a file or an http(s) URL and report every
description whose marker would be rejected on save.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := openapi.ParseSource(args[0])
			if err != nil {
				return err
			}
			loader := openapi.NewLoader(openapi.WithHTTPFallback(timeout))
			doc, err := loader.Load(cmd.Context(), src)
			if err != nil {
				return err
			}
			linter := openapi.NewLinter(
				openapi.WithLogger(a.logger),
				openapi.WithDocumentValidation(validate),
			)
			report, err := linter.Lint(cmd.Context(), doc)
			if err != nil {
				return err
			}

			findings := report.Problems()
			if all {
				findings = report.Findings
			}
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, openapi.Report{Location: report.Location, Findings: findings}); err != nil {
					return err
				}
			} else {
				for _, f := range findings {
					if f.Valid() {
						fmt.Fprintf(out, "ok       %s (%d%s)\n", f.Location, f.Limit, f.Mode)
						continue
					}
					for _, msg := range f.Messages {
						fmt.Fprintf(out, "invalid  %s: %s\n", f.Location, msg)
					}
				}
				fmt.Fprintf(out, "%d markers, %d invalid\n", len(report.Findings), len(report.Problems()))
			}
			if !report.OK() {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().BoolVar(&all, "all", false, "Include valid markers in the output")
	cmd.Flags().BoolVar(&validate, "validate-document", false, "Also validate the document against the OpenAPI schema")
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "Timeout for fetching URLs")
	return cmd
}
