package main

import (
	"io"

	"github.com/Bruzzknock/Meeplelytics/internal/domain/rules"
)

// PointsCmd scores a single placement.
type PointsCmd struct {
	Placement int      `required:"" help:"Finishing place, 1 to 4"`
	RawScore  *float64 `name:"raw-score" help:"In-game score used by threshold bonuses"`
	Rules     string   `type:"existingfile" help:"YAML or JSON ruleset file; defaults apply when omitted"`
}

func (cmd PointsCmd) Run(w io.Writer) error {
	rs, err := cmd.ruleset()
	if err != nil {
		return err
	}
	return printJSON(w, rules.ComputePoints(cmd.Placement, cmd.RawScore, rs))
}

func (cmd PointsCmd) ruleset() (rules.Ruleset, error) {
	if cmd.Rules == "" {
		return rules.Ruleset{}, nil
	}
	k, err := loadFile(cmd.Rules)
	if err != nil {
		return rules.Ruleset{}, err
	}
	return rules.CoerceRules(k.Raw()), nil
}
