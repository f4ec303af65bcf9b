package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func newCollectionsCommand() *cli.Command {
	return &cli.Command{
		Name:  "collections",
		Usage: "Work with CMR collections",
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Search collections by short name, provider and more",
				Flags:  searchFlags,
				Action: searchCollectionsAction,
			},
		},
	}
}

func searchCollectionsAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd.String(configFlag.Name))
	if err != nil {
		return err
	}

	params, err := searchParamsFromCommand(cmd, cfg)
	if err != nil {
		return err
	}

	client, err := newSearchClient(cmd, cfg)
	if err != nil {
		return err
	}

	result, err := client.Collections().Search(ctx, params, requestOptionsFromCommand(cmd)...)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%d of %d matching collections\n", len(result.Collections), result.Hits)
	if result.SearchAfter != "" {
		fmt.Fprintf(os.Stderr, "more results: --search-after %q\n", result.SearchAfter)
	}
	return printJSON(result.Collections)
}
