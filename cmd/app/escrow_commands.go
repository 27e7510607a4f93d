package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/ameerarsath/publicdocsafe-sub002/cmd/app/commands"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/app"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/config"
)

func getEscrowCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-escrow",
			Usage: "Escrow the user's active key encryption key for recovery",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "secret",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Current user secret",
				},
				&cli.IntFlag{
					Name:    "threshold",
					Aliases: []string{"t"},
					Value:   1,
					Usage:   "Independent approvals required to recover",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				escrows, err := container.EscrowService()
				if err != nil {
					return err
				}
				userKeys, err := container.UserKeyStore()
				if err != nil {
					return err
				}

				return commands.RunCreateEscrow(
					ctx,
					escrows,
					userKeys,
					container.KeyDerivation(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					[]byte(cmd.String("secret")),
					int(cmd.Int("threshold")),
				)
			},
		},
		{
			Name:  "recover-escrow",
			Usage: "Recover an escrowed key encryption key (single use)",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "escrow-id",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Escrow record ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "recovered-by",
					Required: true,
					Usage:    "Operator performing the recovery",
				},
				&cli.StringFlag{
					Name:     "reason",
					Required: true,
					Usage:    "Reason recorded on the record and in the audit trail",
				},
				&cli.StringSliceFlag{
					Name:    "approval",
					Aliases: []string{"a"},
					Usage:   "Approver identifier (repeat for each approval)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				escrows, err := container.EscrowService()
				if err != nil {
					return err
				}

				return commands.RunRecoverEscrow(
					ctx,
					escrows,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("escrow-id"),
					cmd.String("recovered-by"),
					cmd.String("reason"),
					cmd.StringSlice("approval"),
				)
			},
		},
	}
}
