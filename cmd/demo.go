package cmd

import (
	"github.com/lzwang26/stress-sensing-mitigation/source/synth"
	"github.com/lzwang26/stress-sensing-mitigation/view"
	"github.com/spf13/cobra"
)

var demoRate float64

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run with a synthetic signal (no hardware required)",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runPipeline("demo", synth.New(demoRate), view.Serial(), 1000)
	},
}

func init() {
	demoCmd.Flags().Float64Var(&demoRate, "rate", 50, "synthetic sample rate in Hz")
	rootCmd.AddCommand(demoCmd)
}
