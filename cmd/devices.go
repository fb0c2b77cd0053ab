package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"ecpctl/internal/config"
	"ecpctl/internal/registry"
)

var devicesRegistry string

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage the registry of discovered devices",
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List devices recorded by discover --save",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registry.Open(devicesRegistry)
		if err != nil {
			return err
		}
		defer store.Close()

		records, err := store.List()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			cmd.Println("No devices recorded. Run 'ecpctl discover --save' first.")
			return nil
		}

		cmd.Printf("%-16s %-20s %-20s %-6s %s\n", "ADDRESS", "NAME", "MODEL", "SEEN", "LAST SEEN")
		for _, record := range records {
			cmd.Printf("%-16s %-20s %-20s %-6d %s\n",
				record.Address, record.Name, record.Model, record.SeenCount,
				record.LastSeen.Local().Format(time.RFC3339))
		}
		return nil
	},
}

var devicesForgetCmd = &cobra.Command{
	Use:   "forget [address]",
	Short: "Remove a device from the registry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := registry.Open(devicesRegistry)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(args[0]); err != nil {
			return err
		}
		cmd.Printf("Forgot %s\n", args[0])
		return nil
	},
}

func init() {
	devicesCmd.PersistentFlags().StringVar(&devicesRegistry, "registry", config.DefaultRegistryPath, "Path to the registry database")

	devicesCmd.AddCommand(devicesListCmd)
	devicesCmd.AddCommand(devicesForgetCmd)

	rootCmd.AddCommand(devicesCmd)
}
