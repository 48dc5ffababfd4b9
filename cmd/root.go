package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	version   = "0.1.0"
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "b64jpeg",
	Short: "Turn folders of JPEGs into size-capped base64 text files",
	Long: `b64jpeg converts JPEG collections into base64 text that fits a
character budget, for channels where message length is what counts.

Each image is re-encoded at the highest quality that fits, shrunk if it
must be, and written next to a manifest describing every output.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"b64jpeg %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}
