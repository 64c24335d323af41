package cli

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/goliatone/go-memberforms/pkg/form"
	"github.com/goliatone/go-memberforms/pkg/kennel"
	"github.com/goliatone/go-memberforms/pkg/renderers/tui"
	"github.com/goliatone/go-memberforms/pkg/transport"
)

func (a *app) cmdFill() *cli.Command {
	var formsDir, members, member, endpoint string
	var dryRun bool

	flags := a.formFlags(&formsDir, &members, &member)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "endpoint",
			Usage:       "Base URL submissions are posted to",
			Sources:     cli.EnvVars("MEMBERFORMS_ENDPOINT"),
			Destination: &endpoint,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Usage:       "Print the payload instead of posting it",
			Destination: &dryRun,
		},
	)

	return &cli.Command{
		Name:      "fill",
		Usage:     "Fill a form in the terminal and submit it",
		ArgsUsage: "<form file | name | path>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			doc, err := resolveDocument(c.Args().First(), firstNonEmpty(formsDir, a.settings.FormsDir))
			if err != nil {
				return err
			}
			prefill, err := a.prefill(members, member)
			if err != nil {
				return err
			}
			inst, err := kennel.Build(doc, prefill)
			if err != nil {
				return err
			}

			sink, err := a.transport(firstNonEmpty(endpoint, a.settings.Endpoint), dryRun)
			if err != nil {
				return err
			}
			renderer, err := tui.New(
				tui.WithPromptDriver(a.promptDriver()),
				tui.WithLogger(a.logger),
				tui.WithTheme(tui.Theme{InfoPrefix: "✓ ", ErrorPrefix: "✗ "}),
			)
			if err != nil {
				return err
			}
			if _, err := renderer.Run(ctx, inst, sink); err != nil {
				return goerr.Wrap(err, "form was not submitted", goerr.V("form", doc.ID))
			}
			return nil
		},
	}
}

func (a *app) promptDriver() tui.PromptDriver {
	if a.driver != nil {
		return a.driver
	}
	return tui.NewSurveyDriver(a.out)
}

// transport posts to endpoint, or prints the payload for dry runs and when
// no endpoint is configured.
func (a *app) transport(endpoint string, dryRun bool) (form.Transport, error) {
	if dryRun || endpoint == "" {
		return form.TransportFunc(func(_ context.Context, formID string, payload form.Payload) error {
			data, err := sonic.ConfigStd.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "%s\n", data)
			return err
		}), nil
	}

	timeout, err := a.settings.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	opts := []transport.Option{
		transport.WithLogger(a.logger),
		transport.WithTimeout(timeout),
	}
	if a.settings.PathBase != "" {
		opts = append(opts, transport.WithPathBase(a.settings.PathBase))
	}
	if a.settings.NestedKeys {
		opts = append(opts, transport.WithNestedKeys())
	}
	return transport.NewHTTP(endpoint, opts...)
}
