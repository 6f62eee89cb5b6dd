package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"degradesim/internal/sim"
	"degradesim/internal/view"
)

var viewInput string

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse a results document in the terminal",
	Long:  "view opens an interactive step-by-step browser over a results document written by simulate --out.",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadResults(viewInput)
		if err != nil {
			return err
		}
		return view.Run(res)
	},
}

// loadResults reads a results document from path.
func loadResults(path string) (*sim.Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var res sim.Results
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode results %s: %w", path, err)
	}
	if len(res.ComponentStates) != len(res.Components) {
		return nil, fmt.Errorf("results %s: %d state rows for %d components", path, len(res.ComponentStates), len(res.Components))
	}
	for i, row := range res.ComponentStates {
		if len(row) != res.Steps() {
			return nil, fmt.Errorf("results %s: component %d has %d states for %d steps", path, i, len(row), res.Steps())
		}
		k := res.Components[i].K
		if k < 1 {
			return nil, fmt.Errorf("results %s: component %d has threshold %d", path, i, k)
		}
		for t, state := range row {
			if state < 0 || state > k {
				return nil, fmt.Errorf("results %s: component %d at level %d outside [0, %d] at step %d", path, i, state, k, t)
			}
		}
	}
	if len(res.CostData.CumulativeCosts) != res.Steps() {
		return nil, fmt.Errorf("results %s: cumulative cost series does not match %d steps", path, res.Steps())
	}
	return &res, nil
}

func init() {
	viewCmd.Flags().StringVar(&viewInput, "input", "", "Path to a results JSON document")
	viewCmd.MarkFlagRequired("input")
}
