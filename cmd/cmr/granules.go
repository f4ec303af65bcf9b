package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	cmrclient "github.com/robert-malhotra/go-cmr-client/client"
	"github.com/robert-malhotra/go-cmr-client/pkg/umm"
)

func newGranulesCommand() *cli.Command {
	flags := append([]cli.Flag{}, searchFlags...)
	flags = append(flags,
		&cli.StringFlag{
			Name:  "boundary",
			Usage: "Spatial boundary file (zipped shapefile, GeoJSON or KML)",
		},
		&cli.BoolFlag{
			Name:  "legacy",
			Usage: "Query the legacy feed endpoint instead of umm_json",
		},
		&cli.BoolFlag{
			Name:  "s3-only",
			Usage: "Print only direct-access s3 data links",
		},
	)

	return &cli.Command{
		Name:  "granules",
		Usage: "Work with CMR granules",
		Commands: []*cli.Command{
			{
				Name:   "search",
				Usage:  "Search granules within a collection",
				Flags:  flags,
				Action: searchGranulesAction,
			},
		},
	}
}

func searchGranulesAction(ctx context.Context, cmd *cli.Command) error {
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

	opts := requestOptionsFromCommand(cmd)
	granules := client.Granules()

	var result *cmrclient.GranuleResult
	switch {
	case cmd.String("boundary") != "":
		boundary, err := cmrclient.BoundaryFromFile(cmd.String("boundary"))
		if err != nil {
			return err
		}
		result, err = granules.SearchWithBoundary(ctx, params, boundary, opts...)
		if err != nil {
			return err
		}
	case cmd.Bool("legacy"):
		result, err = granules.SearchLegacy(ctx, params, opts...)
		if err != nil {
			return err
		}
	default:
		result, err = granules.Search(ctx, params, opts...)
		if err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "%d of %d matching granules\n", len(result.Granules), result.Hits)
	if result.SearchAfter != "" {
		fmt.Fprintf(os.Stderr, "more results: --search-after %q\n", result.SearchAfter)
	}

	if cmd.Bool("s3-only") {
		var links []umm.RelatedURL
		for _, g := range result.Granules {
			links = append(links, g.DirectS3Links()...)
		}
		return printJSON(links)
	}
	return printJSON(result.Granules)
}
