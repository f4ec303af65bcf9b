package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/robert-malhotra/go-cmr-client/pkg/downloader"
)

func newDownloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Download granule data files",
		ArgsUsage: "<url>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Destination directory",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:  "s3-credentials-url",
				Usage: "DAAC credentials-vending endpoint for s3 URLs",
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "AWS region for in-region direct access",
				Value: "us-west-2",
			},
		},
		Action: downloadAction,
	}
}

func downloadAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() == 0 {
		return fmt.Errorf("expected at least one URL to download")
	}

	cfg, err := loadConfig(cmd.String(configFlag.Name))
	if err != nil {
		return err
	}

	region := cmd.String("region")
	if !cmd.IsSet("region") && cfg.Region != "" {
		region = cfg.Region
	}

	token := cmd.String(tokenFlag.Name)

	opts := []downloader.Option{downloader.WithToken(token)}
	if endpoint := cmd.String("s3-credentials-url"); endpoint != "" {
		creds, err := downloader.FetchS3Credentials(ctx, nil, endpoint, token)
		if err != nil {
			return err
		}
		s3Client, err := downloader.NewS3Client(ctx, creds, region)
		if err != nil {
			return err
		}
		opts = append(opts, downloader.WithS3Client(s3Client))
	}
	d := downloader.New(opts...)

	destDir := cmd.String("dir")
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	// Strictly sequential; the first failed transfer aborts the rest.
	for _, rawURL := range cmd.Args().Slice() {
		dest, err := destPath(destDir, rawURL)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "downloading %s -> %s\n", rawURL, dest)
		var announced bool
		progress := func(downloaded, total int64) {
			if !announced {
				fmt.Fprintf(os.Stderr, "  content length: %d bytes\n", total)
				announced = true
			}
		}

		if err := d.DownloadWithProgress(ctx, rawURL, dest, progress); err != nil {
			return fmt.Errorf("download %s: %w", rawURL, err)
		}
	}
	return nil
}

func destPath(dir, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("cannot derive a file name from %q", rawURL)
	}
	return filepath.Join(dir, name), nil
}
