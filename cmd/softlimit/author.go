package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-softlimit/pkg/authoring"
	"github.com/goliatone/go-softlimit/pkg/fields"
)

func newAuthorCmd(a *app) *cobra.Command {
	var (
		handle string
		output string
	)
	cmd := &cobra.Command{
		Use:   "author",
		Short: "Write field instructions with a limit interactively",
		Long: `Prompt for a field's handle, label, editor, instructions and limit, check it
the way a save does and print the field as YAML. With --fields and --handle the
prompts start from an existing definition.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var seed fields.Field
			if handle != "" {
				set, err := a.fieldSet()
				if err != nil {
					return err
				}
				field, ok := set.Field(handle)
				if !ok {
					return fmt.Errorf("unknown field %q", handle)
				}
				seed = field
			}

			session, err := authoring.NewSession(a.driver(cmd.ErrOrStderr()), a.validator(nil))
			if err != nil {
				return err
			}
			field, err := session.Run(cmd.Context(), seed)
			switch {
			case errors.Is(err, authoring.ErrDeclined), errors.Is(err, authoring.ErrAborted):
				a.logger.Info("authoring cancelled", "reason", err)
				return nil
			case err != nil:
				return err
			}

			data, err := yaml.Marshal(map[string]any{
				"fields": map[string]fields.Field{field.Handle: field},
			})
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Field written to %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&handle, "handle", "", "Start from this field in --fields")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the field to a file (stdout if empty)")
	return cmd
}
