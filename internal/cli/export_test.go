package cli

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/goliatone/go-memberforms/pkg/renderers/tui"
)

// RunWith executes the command line writing to out and prompting through
// driver.
func RunWith(ctx context.Context, args []string, out io.Writer, driver tui.PromptDriver) error {
	a := &app{out: out, driver: driver, logger: zap.NewNop()}
	return a.command("test").Run(ctx, args)
}
