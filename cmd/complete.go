package cmd

import (
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// Completion describes the command line of pnl for shell completion.
func Completion() *complete.Command {
	global := map[string]complete.Predictor{
		"config":  predict.Files("*.toml"),
		"records": predict.Files("*.jsonl"),
	}
	return &complete.Command{
		Flags: global,
		Sub: map[string]*complete.Command{
			"report": {
				Flags: map[string]complete.Predictor{
					"p":    predict.Something,
					"c":    predict.Something,
					"tax":  predict.Something,
					"json": predict.Nothing,
					"raw":  predict.Nothing,
				},
			},
			"positions": {
				Flags: map[string]complete.Predictor{
					"p":   predict.Something,
					"s":   predict.Something,
					"raw": predict.Nothing,
				},
			},
			"rates": {
				Args: predict.Set{"RUB", "USD", "EUR", "CNY", "GBP", "CHF"},
			},
			"help":     {},
			"flags":    {},
			"commands": {},
		},
	}
}
