package main

import (
	"io"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/pairing"
)

// PairCmd generates one round from a roster and its table history.
type PairCmd struct {
	Input string `arg:"" name:"file" type:"existingfile" help:"YAML or JSON file with players and history"`
}

type pairOutput struct {
	pairing.Round
	RepeatedPairs int `json:"repeatedPairs"`
}

func (cmd PairCmd) Run(w io.Writer) error {
	k, err := loadFile(cmd.Input)
	if err != nil {
		return err
	}
	var players []pairing.Player
	if err := unmarshalKey(k, "players", &players); err != nil {
		return err
	}
	var history []pairing.HistoricalTable
	if err := unmarshalKey(k, "history", &history); err != nil {
		return err
	}

	round, err := pairing.GenerateRound(players, history)
	if err != nil {
		return err
	}
	return printJSON(w, pairOutput{Round: round, RepeatedPairs: pairing.RepeatedPairs(round, history)})
}
