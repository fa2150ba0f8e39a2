package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tracked capture jobs",
	Long:  `List every capture job the server still tracks, including jobs that finished recently and have not been evicted yet.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := NewCaptureClient(viper.GetString("url"))

		jobs, err := client.ListCaptures()
		if err != nil {
			cmd.Printf("Error fetching jobs: %s\n", err)
			return
		}

		if len(jobs) == 0 {
			cmd.Println("No capture jobs found.")
			return
		}

		// Print table
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "JOB ID\tKIND\tSTATE\tPROGRESS\tSTARTED")
		for _, j := range jobs {
			started := "-"
			if j.StartedAt != nil {
				started = relativeTime(*j.StartedAt) + " ago"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
				j.JobID, j.Kind, j.State, j.Completed, j.TotalFrames, started)
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
