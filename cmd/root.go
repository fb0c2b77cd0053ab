package cmd

import (
	"github.com/spf13/cobra"

	"ecpctl/internal/logger"
)

var (
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ecpctl",
	Short: "ecpctl - control Roku devices over the External Control Protocol",
	Long: `ecpctl discovers Roku devices on the local network and drives them over ECP.
It includes one-shot commands, a REST bridge daemon and an interactive TUI remote.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.Configure(true, true)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(cliCmd)
	rootCmd.AddCommand(serveCmd)
}

