package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Inspect and control the camera",
	Long:  `Connect, disconnect and query the camera the server drives.`,
}

var cameraStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show camera connectivity and sensor temperature",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewCaptureClient(viper.GetString("url"))

		st, err := client.CameraStatus()
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}

		if st.Connected {
			cmd.Printf("%s✓ Connected%s\n", colorGreen, colorReset)
		} else {
			cmd.Printf("%s✗ Disconnected%s\n", colorRed, colorReset)
		}
		if st.Temperature != nil {
			cmd.Printf("Sensor temperature: %.1f°C\n", *st.Temperature)
		}
	},
}

var cameraConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect to the camera",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewCaptureClient(viper.GetString("url"))
		if err := client.ConnectCamera(); err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}
		cmd.Println("✓ Camera connected")
	},
}

var cameraDisconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Disconnect the camera",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewCaptureClient(viper.GetString("url"))
		if err := client.DisconnectCamera(); err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}
		cmd.Println("✓ Camera disconnected")
	},
}

func init() {
	cameraCmd.AddCommand(cameraStatusCmd)
	cameraCmd.AddCommand(cameraConnectCmd)
	cameraCmd.AddCommand(cameraDisconnectCmd)
	rootCmd.AddCommand(cameraCmd)
}
