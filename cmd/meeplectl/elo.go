package main

import (
	"fmt"
	"io"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/rating"
)

// EloCmd computes one table's rating update. Ratings and placements are
// given in the same seat order.
type EloCmd struct {
	Rating    []int   `required:"" help:"Current rating per seat, repeated four times"`
	Placement []int   `required:"" help:"Placement per seat, repeated four times"`
	KFactor   float64 `name:"k-factor" default:"24" help:"Rating volatility"`
	Clamp     int     `default:"48" help:"Largest allowed delta per player"`
}

func (cmd EloCmd) Run(w io.Writer) error {
	if len(cmd.Rating) != len(cmd.Placement) {
		return fmt.Errorf("got %d ratings for %d placements", len(cmd.Rating), len(cmd.Placement))
	}
	in := make([]rating.Input, len(cmd.Rating))
	for i := range cmd.Rating {
		in[i] = rating.Input{
			PlayerID:  fmt.Sprintf("seat-%d", i+1),
			Placement: cmd.Placement[i],
			Rating:    cmd.Rating[i],
		}
	}
	changes, err := rating.ComputeEloForTable(in, rating.WithKFactor(cmd.KFactor), rating.WithClamp(cmd.Clamp))
	if err != nil {
		return err
	}
	return printJSON(w, changes)
}
