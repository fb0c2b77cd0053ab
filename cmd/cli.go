package cmd

import (
	"github.com/spf13/cobra"

	"ecpctl/cmd/cli"
	"ecpctl/internal/logger"
)

var (
	debugFlag bool
	testFlag  bool
)

var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Start the interactive remote control",
	Long: `Launch the interactive Terminal User Interface (TUI) remote.
Enter a device address or discover devices on the network, then drive the device from the keyboard.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Logging would corrupt the alternate screen unless explicitly requested
		if debugFlag || testFlag {
			logger.SetSilentMode(false)
			if debugFlag {
				logger.SetLevel("debug")
			}
		} else {
			logger.SetSilentMode(true)
		}

		log := logger.New()
		log.Info().
			Bool("debug", debugFlag).
			Bool("test", testFlag).
			Msg("Starting ecpctl remote")

		if err := cli.StartTUI(debugFlag, testFlag); err != nil {
			log.Error().Err(err).Msg("Failed to start TUI")
			return err
		}

		return nil
	},
}

func init() {
	cliCmd.Flags().BoolVar(&debugFlag, "debug", false, "Enable debug logging for ECP requests")
	cliCmd.Flags().BoolVar(&testFlag, "test", false, "Enable test mode (simulate device responses without network calls)")
}
