package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-memberforms/pkg/kennel"
	"github.com/goliatone/go-memberforms/pkg/renderers/html"
)

func (a *app) cmdRender() *cli.Command {
	var formsDir, members, member, output, action, templatesDir string

	flags := a.formFlags(&formsDir, &members, &member)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file (stdout if empty)",
			Destination: &output,
		},
		&cli.StringFlag{
			Name:        "action",
			Usage:       "Form action URL (defaults to /api/form/{id})",
			Destination: &action,
		},
		&cli.StringFlag{
			Name:        "templates",
			Usage:       "Directory overriding the embedded templates",
			Sources:     cli.EnvVars("MEMBERFORMS_TEMPLATES"),
			Destination: &templatesDir,
		},
	)

	return &cli.Command{
		Name:      "render",
		Usage:     "Render a form description to HTML",
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

			renderer, err := html.New(
				html.WithTemplatesDir(templatesDir),
				html.WithTheme(a.settings.Theme.RendererConfig()),
				html.WithLogger(a.logger),
			)
			if err != nil {
				return err
			}
			out, err := renderer.Render(ctx, doc, html.RenderOptions{Prefill: prefill, Action: action})
			if err != nil {
				return goerr.Wrap(err, "failed to render form", goerr.V("form", doc.ID))
			}
			return a.write(a.settings.OutputPath(output), out)
		},
	}
}

func (a *app) prefill(members, member string) (kennel.Prefill, error) {
	cache, err := loadRoster(members)
	if err != nil {
		return nil, err
	}
	return prefillFor(cache, member)
}

func (a *app) write(path string, data []byte) error {
	if path == "" {
		_, err := a.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return goerr.Wrap(err, "failed to write output", goerr.V("path", path))
	}
	a.logger.Info("output written", zap.String("path", path), zap.Int("bytes", len(data)))
	fmt.Fprintf(a.out, "Written to %s\n", path)
	return nil
}
