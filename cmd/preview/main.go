// Command preview renders a notification template with sample or supplied
// parameters, applying the same config overrides the server uses.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"

	"contactdesk/internal/config"
	"contactdesk/internal/domain/notification"
	"contactdesk/internal/infra/template"

	"github.com/spf13/cobra"
)

// exitConfigError distinguishes a broken template from a usage error.
const exitConfigError = 2

var sampleParams = notification.Parameters{
	notification.FieldName:        "山田太郎",
	notification.FieldEmail:       "taro@example.com",
	notification.FieldSubject:     "製品について",
	notification.FieldCompany:     "株式会社サンプル",
	notification.FieldDepartment:  "営業部",
	notification.FieldPhone:       "03-1234-5678",
	notification.FieldMessage:     "資料を送付いただけますか。\nよろしくお願いいたします。",
	notification.FieldSubmittedAt: "2025/01/01 09:00",
}

type options struct {
	kind       string
	paramsFile string
	fields     []string
	part       string
}

var parts = map[string]bool{"subject": true, "text": true, "html": true, "all": true}

// validate checks the flags that need no template or config to judge.
func (o *options) validate() error {
	if !notification.IsValidType(notification.NotificationType(o.kind)) {
		return fmt.Errorf("unknown notification type: %s", o.kind)
	}
	if !parts[o.part] {
		return errors.New("--part must be one of subject, text, html, all")
	}
	for _, f := range o.fields {
		if !strings.Contains(f, "=") {
			return fmt.Errorf("--set %q: expected field=value", f)
		}
	}
	return nil
}

func main() {
	cmd := newRootCmd(config.Load)
	if err := cmd.Execute(); err != nil {
		if notification.IsConfigurationError(err) {
			os.Exit(exitConfigError)
		}
		os.Exit(1)
	}
}

func newRootCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a notification template",
		Long: `Render a notification template exactly as the server would send it.

Overrides from config.yaml and CONTACTDESK_TEMPLATES_* environment variables
are applied. Parameters default to a filled-in sample inquiry; use --params
to load a JSON object and --set to change single fields (an empty value marks
an optional field as not provided).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			return run(cmd.OutOrStdout(), cmd.InOrStdin(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.kind, "type", "t", string(notification.TypeConfirmation), "notification type (confirmation, admin_notification)")
	cmd.Flags().StringVarP(&opts.paramsFile, "params", "p", "", "JSON file with parameters, - for stdin")
	cmd.Flags().StringArrayVar(&opts.fields, "set", nil, "override a parameter, e.g. --set company= (repeatable)")
	cmd.Flags().StringVar(&opts.part, "part", "all", "which part to print (subject, text, html, all)")

	return cmd
}

func run(out io.Writer, in io.Reader, overrides notification.ConfigSource, opts *options) error {
	if err := opts.validate(); err != nil {
		return err
	}
	kind := notification.NotificationType(opts.kind)

	params, err := loadParams(in, opts.paramsFile)
	if err != nil {
		return err
	}
	// Only the first "=" separates, so values may contain "=" and ",".
	for _, f := range opts.fields {
		k, v, _ := strings.Cut(f, "=")
		params = params.With(k, v)
	}

	engine, err := template.NewEngine(overrides)
	if err != nil {
		return err
	}

	rendered, err := engine.Render(kind, params)
	if err != nil {
		fmt.Fprintln(out, "template error:", err)
		return err
	}

	switch opts.part {
	case "subject":
		fmt.Fprintln(out, rendered.Subject)
	case "text":
		fmt.Fprintln(out, rendered.Text)
	case "html":
		fmt.Fprintln(out, rendered.HTML)
	default:
		fmt.Fprintf(out, "Subject: %s\n\n--- text ---\n%s\n\n--- html ---\n%s\n", rendered.Subject, rendered.Text, rendered.HTML)
	}
	return nil
}

func loadParams(in io.Reader, path string) (notification.Parameters, error) {
	if path == "" {
		return maps.Clone(sampleParams), nil
	}

	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading parameters: %w", err)
	}

	var params notification.Parameters
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("parsing parameters: %w", err)
	}
	if params == nil {
		params = notification.Parameters{}
	}
	return params, nil
}
