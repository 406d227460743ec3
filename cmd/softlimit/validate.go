package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-softlimit/pkg/marker"
	"github.com/goliatone/go-softlimit/pkg/validation"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		asJSON  bool
		handles []string
	)
	cmd := &cobra.Command{
		Use:   "validate [text...]",
		Short: "Check markers the way a save hook does",
		Long: `Validate instructions text given as arguments or on stdin. With --fields,
every loaded field (or those picked with --handle) goes through the full save
check instead.`,
		Example: `  softlimit validate "Keep it short. [soft-limit:50w]"
  softlimit validate --fields fields.yaml --handle title`,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := a.validator(nil)
			if a.cfg.Fields != "" && len(args) == 0 {
				return validateFields(cmd, a, v, handles, asJSON)
			}
			text, err := textArg(cmd, args)
			if err != nil {
				return err
			}
			result := v.Check(text)
			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				printIssues(cmd.OutOrStdout(), "", result.Issues)
			}
			if !result.Valid {
				return errFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	cmd.Flags().StringSliceVar(&handles, "handle", nil, "Field handles to validate (default all)")
	return cmd
}

type fieldResult struct {
	Handle string             `json:"handle"`
	Valid  bool               `json:"valid"`
	Issues []validation.Issue `json:"issues,omitempty"`
}

func validateFields(cmd *cobra.Command, a *app, v *validation.Validator, handles []string, asJSON bool) error {
	set, err := a.fieldSet()
	if err != nil {
		return err
	}
	list, err := selectFields(set, handles)
	if err != nil {
		return err
	}

	results := make([]fieldResult, 0, len(list))
	failed := false
	for _, field := range list {
		res := fieldResult{Handle: field.Handle, Valid: true}
		if err := v.BeforeSave(cmd.Context(), field); err != nil {
			var saveErr *validation.SaveError
			if !errors.As(err, &saveErr) {
				return err
			}
			res.Valid = false
			res.Issues = saveErr.Issues
			failed = true
		}
		results = append(results, res)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		if err := writeJSON(out, results); err != nil {
			return err
		}
	} else {
		for _, res := range results {
			printIssues(out, res.Handle, res.Issues)
		}
	}
	if failed {
		return errFailed
	}
	return nil
}

func printIssues(w io.Writer, handle string, issues []validation.Issue) {
	prefix := ""
	if handle != "" {
		prefix = handle + ": "
	}
	if len(issues) == 0 {
		fmt.Fprintf(w, "%sok\n", prefix)
		return
	}
	for _, issue := range issues {
		fmt.Fprintf(w, "%s%s: %s\n", prefix, issue.Field, issue.Message)
	}
}

func newStripCmd(a *app) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "strip [text...]",
		Short: "Print instructions with every marker removed",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := textArg(cmd, args)
			if err != nil {
				return err
			}
			if check && !marker.Contains(text) {
				a.logger.Debug("no marker found", "text", text)
				return errFailed
			}
			fmt.Fprintln(cmd.OutOrStdout(), marker.Strip(text))
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Fail when the text has no marker")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
