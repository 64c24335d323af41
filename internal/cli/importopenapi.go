package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-memberforms/pkg/kennel"
	"github.com/goliatone/go-memberforms/pkg/openapi"
)

func (a *app) cmdImportOpenAPI() *cli.Command {
	var operation, format, output string
	var resolveRefs bool

	return &cli.Command{
		Name:      "import-openapi",
		Usage:     "Convert an OpenAPI request body into a form description",
		ArgsUsage: "<openapi file | url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "operation",
				Usage:       "Operation ID to convert (lists operations when empty)",
				Destination: &operation,
			},
			&cli.StringFlag{
				Name:        "format",
				Usage:       "Output format: yaml, json or toml",
				Value:       string(kennel.FormatYAML),
				Destination: &format,
			},
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output file (stdout if empty)",
				Destination: &output,
			},
			&cli.BoolFlag{
				Name:        "resolve-refs",
				Usage:       "Validate the document and follow external references",
				Value:       true,
				Destination: &resolveRefs,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			timeout, err := a.settings.TimeoutDuration()
			if err != nil {
				return err
			}
			opts := []openapi.Option{
				openapi.WithReferenceResolution(resolveRefs),
				openapi.WithHTTPFallback(timeout),
			}
			raw, err := openapi.Load(ctx, c.Args().First(), opts...)
			if err != nil {
				return err
			}

			if operation == "" {
				ops, err := openapi.Operations(ctx, raw, opts...)
				if err != nil {
					return err
				}
				for _, id := range openapi.OperationIDs(ops) {
					op := ops[id]
					fmt.Fprintf(a.out, "%s\t%s %s\t%s\n", id, strings.ToUpper(op.Method), op.Path, op.Summary)
				}
				return nil
			}

			doc, err := openapi.Import(ctx, raw, operation, opts...)
			if err != nil {
				return err
			}
			data, err := kennel.Encode(doc, kennel.Format(strings.ToLower(format)))
			if err != nil {
				return err
			}
			a.logger.Debug("operation imported", zap.String("operation", operation), zap.Int("keys", len(doc.Keys())))
			return a.write(a.settings.OutputPath(output), data)
		},
	}
}
