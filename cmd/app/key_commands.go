package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/ameerarsath/publicdocsafe-sub002/cmd/app/commands"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/app"
	"github.com/ameerarsath/publicdocsafe-sub002/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Bootstrap the first active master key for a purpose",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "purpose",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Key purpose: 'escrow' or 'audit-signing'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				masterKeys, err := container.MasterKeyStore()
				if err != nil {
					return err
				}

				return commands.RunCreateMasterKey(
					ctx,
					masterKeys,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("purpose"),
				)
			},
		},
		{
			Name:  "rotate-master-key",
			Usage: "Rotate the active master key for a purpose",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "purpose",
					Aliases:  []string{"p"},
					Required: true,
					Usage:    "Key purpose: 'escrow' or 'audit-signing'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				masterKeys, err := container.MasterKeyStore()
				if err != nil {
					return err
				}

				return commands.RunRotateMasterKey(
					ctx,
					masterKeys,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("purpose"),
				)
			},
		},
		{
			Name:  "setup-user-key",
			Usage: "Install the first active key generation for a user",
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
					Usage:    "User secret to derive the key encryption key from",
				},
				&cli.IntFlag{
					Name:    "iterations",
					Aliases: []string{"i"},
					Value:   0,
					Usage:   "PBKDF2 iteration count (0 uses the default)",
				},
				&cli.StringFlag{
					Name:  "hint",
					Usage: "Optional user-supplied hint stored with the record",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				userKeys, err := container.UserKeyStore()
				if err != nil {
					return err
				}

				return commands.RunSetupUserKey(
					ctx,
					userKeys,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					[]byte(cmd.String("secret")),
					int(cmd.Int("iterations")),
					cmd.String("hint"),
				)
			},
		},
		{
			Name:  "rotate-user-key",
			Usage: "Rotate a user's key generation and migrate all document envelopes",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "user-id",
					Aliases:  []string{"u"},
					Required: true,
					Usage:    "User ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "old-secret",
					Required: true,
					Usage:    "Current user secret",
				},
				&cli.StringFlag{
					Name:     "new-secret",
					Required: true,
					Usage:    "New user secret",
				},
				&cli.IntFlag{
					Name:    "iterations",
					Aliases: []string{"i"},
					Value:   0,
					Usage:   "PBKDF2 iteration count for the new key (0 uses the default)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				engine, err := container.RotationEngine()
				if err != nil {
					return err
				}
				userKeys, err := container.UserKeyStore()
				if err != nil {
					return err
				}

				return commands.RunRotateUserKey(
					ctx,
					engine,
					userKeys,
					container.KeyDerivation(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("user-id"),
					[]byte(cmd.String("old-secret")),
					[]byte(cmd.String("new-secret")),
					int(cmd.Int("iterations")),
				)
			},
		},
		{
			Name:  "resume-rotation",
			Usage: "Resume a failed or interrupted rotation job",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "job-id",
					Aliases:  []string{"j"},
					Required: true,
					Usage:    "Rotation job ID (UUID)",
				},
				&cli.StringFlag{
					Name:     "old-secret",
					Required: true,
					Usage:    "Secret of the key the job rotates away from",
				},
				&cli.StringFlag{
					Name:     "new-secret",
					Required: true,
					Usage:    "Secret the staged key was created from",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				engine, err := container.RotationEngine()
				if err != nil {
					return err
				}
				userKeys, err := container.UserKeyStore()
				if err != nil {
					return err
				}

				return commands.RunResumeRotation(
					ctx,
					engine,
					userKeys,
					container.KeyDerivation(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("job-id"),
					[]byte(cmd.String("old-secret")),
					[]byte(cmd.String("new-secret")),
				)
			},
		},
	}
}
