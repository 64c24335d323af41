package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-memberforms/pkg/renderers/tui"
)

type app struct {
	out        io.Writer
	driver     tui.PromptDriver
	logger     *zap.Logger
	settings   Settings
	configPath string
	verbose    bool
}

// Run executes the memberforms command line.
func Run(ctx context.Context, args []string, version string) error {
	a := &app{out: os.Stdout, logger: zap.NewNop()}
	return a.command(version).Run(ctx, args)
}

func (a *app) command(version string) *cli.Command {
	return &cli.Command{
		Name:    "memberforms",
		Usage:   "Render, fill and validate membership forms",
		Version: version,
		Writer:  a.out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "TOML settings file",
				Sources:     cli.EnvVars("MEMBERFORMS_CONFIG"),
				Destination: &a.configPath,
			},
			&cli.BoolFlag{
				Name:        "verbose",
				Usage:       "Enable debug logging",
				Sources:     cli.EnvVars("MEMBERFORMS_VERBOSE"),
				Destination: &a.verbose,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := a.configure(); err != nil {
				return ctx, err
			}
			a.logger.Debug("settings loaded", zap.String("config", a.configPath))
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
			return nil
		},
		Commands: []*cli.Command{
			a.cmdRender(),
			a.cmdFill(),
			a.cmdValidate(),
			a.cmdImportOpenAPI(),
			a.cmdCheckIn(),
		},
	}
}

func (a *app) configure() error {
	settings, err := LoadSettings(a.configPath)
	if err != nil {
		return err
	}
	a.settings = settings

	config := zap.NewProductionConfig()
	if a.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger
	return nil
}

// formFlags are shared by the commands that operate on a kennel document.
func (a *app) formFlags(formsDir, members, member *string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "forms-dir",
			Usage:       "Directory holding numbered form descriptions",
			Sources:     cli.EnvVars("MEMBERFORMS_FORMS_DIR"),
			Destination: formsDir,
		},
		&cli.StringFlag{
			Name:        "members",
			Usage:       "JSON file with member records used for prefill",
			Sources:     cli.EnvVars("MEMBERFORMS_MEMBERS"),
			Destination: members,
		},
		&cli.StringFlag{
			Name:        "member",
			Usage:       "Member id (or scanned QR payload) to prefill from",
			Destination: member,
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
