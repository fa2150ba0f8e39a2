package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"captureplane/pkg/api"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new capture sequence",
	Long: `Start a background capture job on the connected camera.

Example:
  capturectl start --kind bulk --frames 50 --interval 5
  capturectl start --kind dark --frames 20 --exposure 30s --iso 800
  capturectl start --kind flat --frames 30 --target-adu 25000
  capturectl start --kind bulk --frames 10 --session 9f2c... --name M31`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		kind, _ := flags.GetString("kind")
		frames, _ := flags.GetInt("frames")
		interval, _ := flags.GetFloat64("interval")
		delay, _ := flags.GetFloat64("delay")
		sessionID, _ := flags.GetString("session")
		baseName, _ := flags.GetString("name")
		savePath, _ := flags.GetString("save-path")
		exposure, _ := flags.GetString("exposure")
		iso, _ := flags.GetString("iso")
		targetADU, _ := flags.GetInt("target-adu")

		if frames <= 0 {
			cmd.Println("Error: --frames is required and must be positive")
			return
		}

		client := NewCaptureClient(viper.GetString("url"))
		req := api.StartCaptureRequest{
			Kind:            kind,
			FrameCount:      frames,
			IntervalSeconds: interval,
			DelaySeconds:    delay,
			SessionID:       sessionID,
			BaseName:        baseName,
			SavePath:        savePath,
			ExposureTime:    exposure,
			ISO:             iso,
			TargetADU:       targetADU,
		}

		result, err := client.StartCapture(req)
		if err != nil {
			if apiErr, ok := err.(*APIError); ok {
				cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
			} else {
				cmd.Printf("Error: %v\n", err)
			}
			return
		}

		cmd.Printf("✓ Capture started!\nID: %s\nKind: %s\nFrames: %d\n",
			result.JobID, result.Status.Kind, result.Status.TotalFrames)
	},
}

func init() {
	flags := startCmd.Flags()
	flags.StringP("kind", "k", "bulk", "Frame kind: bulk, dark, bias, flat or flat_dark")
	flags.IntP("frames", "f", 0, "Number of frames to capture (required)")
	flags.Float64P("interval", "i", 0, "Seconds between frames")
	flags.Float64("delay", 0, "Seconds to wait before the first frame")
	flags.StringP("session", "s", "", "Session ID to attach captures to")
	flags.StringP("name", "n", "", "Base name for generated filenames")
	flags.String("save-path", "", "Output directory override")
	flags.StringP("exposure", "e", "", "Exposure time, e.g. 30s or 1/60")
	flags.String("iso", "", "ISO setting")
	flags.Int("target-adu", 0, "Target flat brightness level in ADU")

	rootCmd.AddCommand(startCmd)
}
