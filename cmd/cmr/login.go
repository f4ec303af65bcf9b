package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-cmr-client/auth"
)

func newLoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Obtain an Earthdata bearer token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "netrc",
				Usage: "Path to the netrc credentials file",
			},
			&cli.BoolFlag{
				Name:  "save",
				Usage: "Persist prompted credentials to the netrc file",
			},
			&cli.StringFlag{
				Name:  "client-id",
				Usage: "Client id reported to the token service",
				Value: "go-cmr-client",
			},
		},
		Action: loginAction,
	}
}

func loginAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String(configFlag.Name))
	if err != nil {
		return err
	}

	netrcPath := cmd.String("netrc")
	if netrcPath == "" {
		netrcPath = cfg.NetrcPath
	}

	store := &auth.Store{
		Path:    netrcPath,
		Persist: cmd.Bool("save"),
	}

	cred, err := store.Lookup(cfg.EDLHost)
	if err != nil {
		return fmt.Errorf("resolve credentials for %s: %w", cfg.EDLHost, err)
	}

	tokenClient := &auth.TokenClient{
		Endpoint: cfg.TokenURL,
		ClientID: cmd.String("client-id"),
	}

	token, err := tokenClient.FetchToken(ctx, cred)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Token obtained. Export it for later commands:")
	fmt.Fprintf(os.Stdout, "%s\n", token)
	return nil
}
