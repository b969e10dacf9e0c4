// Command meeplectl drives the pairing, scoring and rating engines from the
// command line and can simulate whole tournaments in-process.
package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/Bruzzknock/Meeplelytics/pkg/logger"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	LogLevel string           `name:"log-level" default:"warn" enum:"debug,info,warn,error" help:"Log level for diagnostics on stderr"`

	Pair     PairCmd     `cmd:"" help:"Generate a round of 4-player tables from a roster file"`
	Points   PointsCmd   `cmd:"" help:"Score one placement under a ruleset"`
	Elo      EloCmd      `cmd:"" help:"Compute rating changes for one table"`
	Simulate SimulateCmd `cmd:"" help:"Play a whole tournament in-process"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("meeplectl"),
		kong.Description("Board game league tooling: pairings, points and Elo"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(io.Writer(os.Stdout), (*io.Writer)(nil)),
	)
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		ctx.FatalIfErrorf(err)
	}
	_ = logger.SetLevelString(cli.LogLevel)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
