package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	cmrclient "github.com/robert-malhotra/go-cmr-client/client"
	"github.com/urfave/cli/v3"
)

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

var searchFlags = []cli.Flag{
	&cli.StringFlag{Name: "short-name", Usage: "Collection short name (e.g. ATL03)"},
	&cli.StringFlag{Name: "provider", Usage: "Data provider id (e.g. NSIDC_ECS)"},
	&cli.StringFlag{Name: "concept-id", Usage: "Collection or granule concept id"},
	&cli.StringFlag{Name: "bbox", Usage: "Bounding box as min-lon,min-lat,max-lon,max-lat"},
	&cli.StringFlag{Name: "temporal", Usage: "Temporal range as start,end (ISO-8601, either side may be empty)"},
	&cli.IntFlag{Name: "page-size", Usage: "Result limit for the single returned page"},
	&cli.StringFlag{Name: "search-after", Usage: "Continuation marker from a previous result"},
}

func searchParamsFromCommand(cmd *cli.Command, cfg *Config) (cmrclient.SearchParams, error) {
	params := cmrclient.SearchParams{
		ShortName: cmd.String("short-name"),
		Provider:  cmd.String("provider"),
		ConceptID: cmd.String("concept-id"),
		PageSize:  int(cmd.Int("page-size")),
	}
	if params.Provider == "" {
		params.Provider = cfg.Provider
	}

	if bbox := cmd.String("bbox"); bbox != "" {
		coords, err := parseBBox(bbox)
		if err != nil {
			return params, err
		}
		params.BoundingBox = coords
	}

	if temporal := cmd.String("temporal"); temporal != "" {
		start, end, ok := strings.Cut(temporal, ",")
		if !ok {
			return params, fmt.Errorf("temporal must be start,end")
		}
		params.TemporalStart = strings.TrimSpace(start)
		params.TemporalEnd = strings.TrimSpace(end)
	}

	return params, nil
}

func parseBBox(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return nil, fmt.Errorf("bbox must have 4 comma-separated coordinates")
	}
	coords := make([]float64, 4)
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bbox coordinate %q: %w", part, err)
		}
		coords[i] = f
	}
	return coords, nil
}

func requestOptionsFromCommand(cmd *cli.Command) []cmrclient.RequestOption {
	var opts []cmrclient.RequestOption
	if marker := cmd.String("search-after"); marker != "" {
		opts = append(opts, cmrclient.WithSearchAfter(marker))
	}
	return opts
}
