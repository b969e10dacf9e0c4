package main

import (
	"context"
	"io"

	service "github.com/Bruzzknock/Meeplelytics/internal/app"
	"github.com/Bruzzknock/Meeplelytics/internal/simulator"
	"github.com/Bruzzknock/Meeplelytics/pkg/logger"
)

// SimulateCmd plays a tournament with random outcomes through the service.
type SimulateCmd struct {
	Players int    `default:"16" help:"Roster size, a multiple of four"`
	Rounds  int    `default:"3" help:"Number of rounds"`
	Teams   int    `default:"2" help:"Number of teams players are spread over"`
	Seed    uint64 `default:"1" help:"Random seed for table outcomes"`
	Workers int    `default:"4" help:"Tables settled concurrently"`
	Rules   string `type:"existingfile" help:"YAML or JSON ruleset for the simulated game"`
}

func (cmd SimulateCmd) Run(w io.Writer) error {
	ctx := context.Background()
	cfg := simulator.Config{
		Players: cmd.Players,
		Rounds:  cmd.Rounds,
		Teams:   cmd.Teams,
		Seed:    cmd.Seed,
		Workers: cmd.Workers,
	}
	if cmd.Rules != "" {
		k, err := loadFile(cmd.Rules)
		if err != nil {
			return err
		}
		cfg.Rules = k.Raw()
	}

	log := logger.Named("simulate")
	report, err := simulator.Run(ctx, service.New(service.WithLogger(log)), cfg)
	if err != nil {
		return err
	}
	log.Info(ctx, "simulation finished",
		logger.Int("players", cmd.Players),
		logger.Int("rounds", len(report.Rounds)),
	)
	return printJSON(w, report)
}
