package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pauseCmd = &cobra.Command{
	Use:   "pause [job_id]",
	Short: "Pause a running capture job",
	Long:  `Pause a running capture job. The job stops at the next frame boundary and keeps its progress until resumed or cancelled.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runControl(cmd, args[0], "paused", func(c *CaptureClient, id string) error {
			return c.PauseCapture(id)
		})
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume [job_id]",
	Short: "Resume a paused capture job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runControl(cmd, args[0], "resumed", func(c *CaptureClient, id string) error {
			return c.ResumeCapture(id)
		})
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [job_id]",
	Short: "Cancel a running or paused capture job",
	Long:  `Cancel a capture job. A frame already in flight finishes; no further frames are taken. Cancellation is final.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runControl(cmd, args[0], "cancelled", func(c *CaptureClient, id string) error {
			return c.CancelCapture(id)
		})
	},
}

func runControl(cmd *cobra.Command, jobID, verb string, op func(*CaptureClient, string) error) {
	client := NewCaptureClient(viper.GetString("url"))

	if err := op(client, jobID); err != nil {
		if apiErr, ok := err.(*APIError); ok {
			cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
		} else {
			cmd.Printf("Error: %v\n", err)
		}
		return
	}
	cmd.Printf("✓ Job %s %s\n", jobID, verb)
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(cancelCmd)
}
