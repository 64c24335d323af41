package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-memberforms/pkg/form"
	"github.com/goliatone/go-memberforms/pkg/kennel"
)

func (a *app) cmdValidate() *cli.Command {
	var formsDir, members, member, answersPath string

	flags := a.formFlags(&formsDir, &members, &member)
	flags = append(flags, &cli.StringFlag{
		Name:        "answers",
		Usage:       "JSON object of recorded answers keyed like the form",
		Destination: &answersPath,
	})

	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"check"},
		Usage:     "Build a form, apply recorded answers and run the required-field gate",
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
			if answersPath != "" {
				answers, err := readAnswers(answersPath)
				if err != nil {
					return err
				}
				if err := applyAnswers(inst, answers); err != nil {
					return err
				}
			}

			engine := form.New(form.WithLogger(a.logger))
			report, err := engine.ValidateRequired(inst, false)
			if err != nil {
				return goerr.Wrap(err, "form description is invalid", goerr.V("form", doc.ID))
			}

			for _, failure := range report.Failures {
				fmt.Fprintf(a.out, "FAIL %s: %v\n", failure.Key, failure.Err)
			}
			fmt.Fprintf(a.out, "%d of %d required fields passed\n", report.Checked-len(report.Failures), report.Checked)
			if !report.OK() {
				return report.Err()
			}

			payload, err := engine.BuildPayload(inst)
			if err != nil {
				return err
			}
			a.logger.Debug("form validated", zap.String("form", doc.ID), zap.Int("fields", payload.Len()))
			data, err := sonic.ConfigStd.MarshalIndent(payload, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(a.out, "%s\n", data)
			return err
		},
	}
}

func readAnswers(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read answers", goerr.V("path", path))
	}
	var answers map[string]any
	if err := sonic.Unmarshal(data, &answers); err != nil {
		return nil, goerr.Wrap(err, "failed to parse answers", goerr.V("path", path))
	}
	return answers, nil
}
