package cmd

import (
	"github.com/lzwang26/stress-sensing-mitigation/source/camera"
	"github.com/lzwang26/stress-sensing-mitigation/view"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var cameraIndex int

var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Acquire a PPG proxy signal from a camera",
	Long: `Acquire a photoplethysmography proxy signal from a camera: each
frame is reduced to the mean intensity of its red channel.`,
	RunE: func(_ *cobra.Command, _ []string) error {
		grabber, err := camera.OpenVideoGrabber(cameraIndex)
		if err != nil {
			return errors.Wrap(err, "open camera")
		}

		return runPipeline("ppg", camera.NewSource(grabber), view.Camera(), 500)
	},
}

func init() {
	cameraCmd.Flags().IntVar(&cameraIndex, "index", 0, "camera device index")
	rootCmd.AddCommand(cameraCmd)
}
