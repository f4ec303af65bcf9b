package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/phuslu/log"
	"github.com/urfave/cli/v3"

	cmrclient "github.com/robert-malhotra/go-cmr-client/client"
)

var (
	cmrURLFlag = &cli.StringFlag{
		Name:  "cmr-url",
		Usage: "CMR base URL",
		Value: "https://cmr.earthdata.nasa.gov",
	}
	tokenFlag = &cli.StringFlag{
		Name:    "token",
		Usage:   "Earthdata bearer token (obtain with 'cmr login')",
		Sources: cli.EnvVars("EARTHDATA_TOKEN"),
	}
	timeoutFlag = &cli.DurationFlag{
		Name:    "timeout",
		Aliases: []string{"t"},
		Usage:   "HTTP client timeout (e.g. 30s, 1m)",
		Value:   30 * time.Second,
	}
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to a TOML config file",
	}
	verboseFlag = &cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Enable debug logging",
	}
)

func main() {
	cmd := &cli.Command{
		Name:  "cmr",
		Usage: "Search NASA Earthdata and download granule data",
		Flags: []cli.Flag{cmrURLFlag, tokenFlag, timeoutFlag, configFlag, verboseFlag},
		Commands: []*cli.Command{
			newLoginCommand(),
			newCollectionsCommand(),
			newGranulesCommand(),
			newDownloadCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return &log.Logger{
		Level:  level,
		Writer: &log.ConsoleWriter{Writer: os.Stderr},
	}
}

// clientLogger adapts phuslu/log to the client's Logger interface.
type clientLogger struct {
	l *log.Logger
}

func (c clientLogger) Debugf(format string, args ...any) { c.l.Debug().Msgf(format, args...) }
func (c clientLogger) Errorf(format string, args ...any) { c.l.Error().Msgf(format, args...) }

func newSearchClient(cmd *cli.Command, cfg *Config) (*cmrclient.Client, error) {
	baseURL := cmd.String(cmrURLFlag.Name)
	if !cmd.IsSet(cmrURLFlag.Name) && cfg.CMRURL != "" {
		baseURL = cfg.CMRURL
	}

	logger := newLogger(cmd.Bool(verboseFlag.Name))

	opts := []cmrclient.ClientOption{
		cmrclient.WithBaseURL(baseURL),
		cmrclient.WithTimeout(cmd.Duration(timeoutFlag.Name)),
		cmrclient.WithLogger(clientLogger{l: logger}),
	}
	if token := cmd.String(tokenFlag.Name); token != "" {
		opts = append(opts, cmrclient.WithToken(token))
	}
	return cmrclient.New(opts...)
}
