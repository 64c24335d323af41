package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func (a *app) cmdCheckIn() *cli.Command {
	var members string

	return &cli.Command{
		Name:      "checkin",
		Usage:     "Resolve a scanned member id and print the membership status",
		ArgsUsage: "<member id | QR payload>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "members",
				Usage:       "JSON file with member records",
				Sources:     cli.EnvVars("MEMBERFORMS_MEMBERS"),
				Destination: &members,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cache, err := loadRoster(members)
			if err != nil {
				return err
			}
			member, err := cache.CheckIn(c.Args().First())
			if err != nil {
				return err
			}
			a.logger.Info("member checked in", zap.String("id", member.ID()))
			_, err = fmt.Fprintf(a.out, "%s\t%s\t%s\n", member.ID(), member.Name(), member.Status())
			return err
		},
	}
}
