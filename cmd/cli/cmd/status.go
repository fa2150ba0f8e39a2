package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"captureplane/pkg/api"
)

var statusCmd = &cobra.Command{
	Use:   "status [job_id]",
	Short: "Get status of a capture job",
	Long:  `Retrieve detailed status information for a capture job, including its current state (pending, running, paused, completed, cancelled, failed), frame progress and estimated completion time.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewCaptureClient(viper.GetString("url"))

		job, err := client.GetCapture(args[0])
		if err != nil {
			if apiErr, ok := err.(*APIError); ok {
				cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
			} else {
				cmd.Printf("Error: %v\n", err)
			}
			return
		}

		printStatus(cmd, *job)
	},
}

func printStatus(cmd *cobra.Command, job api.JobStatusResponse) {
	// Header with status icon
	icon := statusIcon(job.State)
	cmd.Printf("%s %sCapture Job%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sID:%s          %s\n", colorDim, colorReset, job.JobID)
	cmd.Printf("%sKind:%s        %s\n", colorDim, colorReset, job.Kind)
	cmd.Printf("%sState:%s       %s\n", colorDim, colorReset, colorizeState(job.State))
	cmd.Printf("%sProgress:%s    %s %d/%d (%.1f%%)\n", colorDim, colorReset,
		progressBar(job.Percentage), job.Completed, job.TotalFrames, job.Percentage)

	if job.Failed > 0 {
		cmd.Printf("%sFailed:%s      %s%d frames%s\n", colorDim, colorReset, colorRed, job.Failed, colorReset)
	}

	if job.ErrorMessage != "" {
		cmd.Printf("%sError:%s       %s%s%s\n", colorDim, colorReset, colorRed, job.ErrorMessage, colorReset)
	}

	cmd.Printf("%sStarted:%s     %s\n", colorDim, colorReset, formatTimeWithRelative(job.StartedAt))

	if job.ETA != nil {
		cmd.Printf("%sETA:%s         %s %s(in %s)%s\n", colorDim, colorReset,
			job.ETA.Format("15:04:05"), colorCyan, formatDuration(time.Until(*job.ETA)), colorReset)
	}

	if job.StartedAt != nil && job.CompletedAt != nil {
		duration := job.CompletedAt.Sub(*job.StartedAt)
		cmd.Printf("%sFinished:%s    %s %s(%s)%s\n", colorDim, colorReset,
			formatTimeWithRelative(job.CompletedAt),
			colorCyan, formatDuration(duration), colorReset)
	}

	if job.Temperature != nil {
		cmd.Printf("%sSensor:%s      %.1f°C\n", colorDim, colorReset, *job.Temperature)
	}
	if job.AverageADU != nil {
		cmd.Printf("%sAvg ADU:%s     %.0f\n", colorDim, colorReset, *job.AverageADU)
	}

	cmd.Printf("%sOutput:%s      %s\n", colorDim, colorReset, job.OutputDir)
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func statusIcon(state string) string {
	switch state {
	case "completed":
		return colorGreen + "✓" + colorReset
	case "failed":
		return colorRed + "✗" + colorReset
	case "cancelled":
		return colorRed + "⊘" + colorReset
	case "running":
		return colorYellow + "⏳" + colorReset
	case "paused":
		return colorCyan + "⏸" + colorReset
	case "pending":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeState(state string) string {
	icon := statusIcon(state)
	switch state {
	case "completed":
		return icon + " " + colorGreen + state + colorReset
	case "failed", "cancelled":
		return icon + " " + colorRed + state + colorReset
	case "running":
		return icon + " " + colorYellow + state + colorReset
	case "paused", "pending":
		return icon + " " + colorCyan + state + colorReset
	default:
		return state
	}
}

func progressBar(percentage float64) string {
	const width = 20
	filled := int(percentage / 100 * width)
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

func formatTimeWithRelative(t *time.Time) string {
	if t == nil {
		return "-"
	}
	relative := relativeTime(*t)
	return fmt.Sprintf("%s %s(%s ago)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relative, colorReset)
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
