package cmd

import (
	"log/slog"

	"github.com/lzwang26/stress-sensing-mitigation/source"
	"github.com/lzwang26/stress-sensing-mitigation/source/arduino"
	"github.com/lzwang26/stress-sensing-mitigation/view"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var serialPort string

var serialCmd = &cobra.Command{
	Use:   "serial",
	Short: "Acquire from a serial-connected microcontroller",
	Long: `Acquire the sensor signal from a serial-connected microcontroller
emitting one decimal integer per line at 115200 baud. Without --port the
device is located by matching USB port metadata against known controller
identifiers.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		portName := serialPort
		if portName == "" {
			var err error
			portName, err = arduino.Discover()
			if errors.Is(err, source.ErrNoDevice) {
				return errors.New("no microcontroller found on any serial port")
			}
			if err != nil {
				return err
			}
			slog.Info("found controller", "port", portName)
		}

		src, err := arduino.Open(portName)
		if err != nil {
			return err
		}

		return runPipeline("gsr", src, view.Serial(), 1000)
	},
}

func init() {
	serialCmd.Flags().StringVar(&serialPort, "port", "", "serial port device (default: auto-discover)")
	rootCmd.AddCommand(serialCmd)
}
