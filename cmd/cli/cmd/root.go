package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "capturectl",
	Short: "Capturectl is a command line tool for driving the captureplane server",
	Long: `capturectl is the command-line interface for the CapturePlane camera
capture engine.

CapturePlane runs long camera capture sequences as background jobs: bulk
light-frame runs and calibration sets (darks, biases, flats, flat darks).
Jobs can be paused, resumed and cancelled while they run, and report live
progress with an estimated completion time.

Common workflows:

  Start a bulk capture of 50 frames, 5 seconds apart:
    capturectl start --kind bulk --frames 50 --interval 5

  Capture a dark calibration set:
    capturectl start --kind dark --frames 20 --exposure 30s --iso 800

  Check job progress:
    capturectl status <job-id>

  Pause, resume or cancel a running job:
    capturectl pause <job-id>
    capturectl resume <job-id>
    capturectl cancel <job-id>

  Inspect the camera:
    capturectl camera status

Configuration:
  Set the API endpoint via a flag, environment variable or config file:
    CAPTUREPLANE_URL    API endpoint (default: http://localhost:6161)`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".capturectl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".capturectl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "CAPTUREPLANE_VARNAME"
	viper.SetEnvPrefix("CAPTUREPLANE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.capturectl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:6161", "CapturePlane server URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
}
