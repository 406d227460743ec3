package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-softlimit/internal/config"
	"github.com/goliatone/go-softlimit/internal/logging"
	"github.com/goliatone/go-softlimit/internal/metrics"
	"github.com/goliatone/go-softlimit/pkg/authoring"
	"github.com/goliatone/go-softlimit/pkg/fields"
	"github.com/goliatone/go-softlimit/pkg/render"
	"github.com/goliatone/go-softlimit/pkg/validation"
)

// errFailed is returned after a command already reported its problems, so
// only the exit status is left to set.
var errFailed = errors.New("softlimit: check failed")

// app carries what every command shares once the root has loaded config.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	// driver builds the prompt driver for author; tests replace it.
	driver func(out io.Writer) authoring.PromptDriver
}

func newRootCmd(opts ...func(*app)) *cobra.Command {
	a := &app{driver: authoring.NewSurveyDriver}
	for _, opt := range opts {
		opt(a)
	}

	var (
		configPath string
		logLevel   string
		logFormat  string
		fieldsPath string
	)

	root := &cobra.Command{
		Use:   "softlimit",
		Short: "Soft character and word limits for field instructions",
		Long: `softlimit works with [soft-limit:N] markers embedded in field instructions.

It validates markers the way a save hook does, renders fields with a live
counter, checks OpenAPI descriptions and serves the validation component
together with the browser runtime.`,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = logLevel
			}
			if cmd.Flags().Changed("log-format") {
				cfg.Log.Format = logFormat
			}
			if cmd.Flags().Changed("fields") {
				cfg.Fields = fieldsPath
			}
			logger, err := logging.New(logging.Options{
				Level:  cfg.Log.Level,
				Format: cfg.Log.Format,
				Writer: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSON config file")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&logFormat, "log-format", "", "Log format (text, json)")
	flags.StringVarP(&fieldsPath, "fields", "f", "", "Field definitions file or directory")

	root.AddCommand(
		newValidateCmd(a),
		newStripCmd(a),
		newRenderCmd(a),
		newLintCmd(a),
		newSimulateCmd(a),
		newAuthorCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) validator(m *metrics.Metrics) *validation.Validator {
	opts := []validation.Option{
		validation.WithLogger(a.logger),
		validation.WithHostVersion(a.cfg.Validation.HostVersion),
		validation.WithSkipMajors(a.cfg.Validation.SkipMajors...),
	}
	if m != nil {
		opts = append(opts, validation.WithReporter(m))
	}
	return validation.New(opts...)
}

func (a *app) renderer(m *metrics.Metrics) (*render.Renderer, error) {
	opts := []render.Option{
		render.WithLogger(a.logger),
		render.WithRuntimePath(a.cfg.Render.RuntimePath),
		render.WithEngineConfig(a.cfg.EngineTunables()),
	}
	if m != nil {
		opts = append(opts, render.WithClampHook(m.Clamped))
	}
	return render.New(opts...)
}

// fieldSet loads the configured field definitions from a file or directory.
func (a *app) fieldSet() (*fields.Set, error) {
	path := strings.TrimSpace(a.cfg.Fields)
	if path == "" {
		return nil, errors.New("no field definitions: pass --fields or set fields in the config")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	if info.IsDir() {
		return fields.LoadFS(os.DirFS(path))
	}
	return fields.LoadFile(path)
}

// selectFields returns the fields named by handles, or every field when
// handles is empty.
func selectFields(set *fields.Set, handles []string) ([]fields.Field, error) {
	if len(handles) == 0 {
		return set.Fields(), nil
	}
	out := make([]fields.Field, 0, len(handles))
	for _, handle := range handles {
		field, ok := set.Field(handle)
		if !ok {
			return nil, fmt.Errorf("unknown field %q", handle)
		}
		out = append(out, field)
	}
	return out, nil
}

// textArg joins args, or reads stdin when there are none or the only one is
// "-".
func textArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return strings.Join(args, " "), nil
}
