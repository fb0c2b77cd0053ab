package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ecpctl/internal"
	"ecpctl/internal/bridge"
	"ecpctl/internal/config"
	"ecpctl/internal/logger"
	"ecpctl/internal/registry"
)

var (
	serveConfigPath string
	serveDebugFlag  bool
	serveTestFlag   bool

	addDeviceID      string
	addDeviceName    string
	addDeviceAddress string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST bridge daemon",
	Long: `The bridge exposes the devices listed in the configuration file over a small REST API.
Actions, device-info, player state, installed apps and app icons are available per device.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.SetSilentMode(false)
		if serveDebugFlag || verbose {
			logger.SetLevel(logger.LOG_DEBUG)
		} else {
			logger.SetLevel(logger.LOG_INFO)
		}

		log := logger.New()
		log.Info().
			Str("config_path", serveConfigPath).
			Bool("debug", serveDebugFlag).
			Bool("test", serveTestFlag).
			Msg("Starting ecpctl bridge")

		if _, err := os.Stat(serveConfigPath); os.IsNotExist(err) {
			if err := config.SaveConfig(config.NewDefaultConfig(), serveConfigPath); err != nil {
				log.Error().Err(err).Msg("Failed to create default config file")
				return fmt.Errorf("failed to create default config file: %w", err)
			}
			log.Info().
				Str("config_path", serveConfigPath).
				Msg("Created default configuration file. Add devices with 'ecpctl serve config add-device'.")
			return nil
		}

		cfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return err
		}

		options := internal.NewModeOptions(internal.WithDebug(serveDebugFlag), internal.WithTest(serveTestFlag))
		devices := bridge.NewDeviceManager(cfg, options)
		if err := devices.Initialize(); err != nil {
			return err
		}
		defer devices.Shutdown()

		var lister bridge.DiscoveredLister
		if cfg.Registry.Path != "" {
			store, err := registry.Open(cfg.Registry.Path)
			if err != nil {
				return err
			}
			defer store.Close()
			lister = store
		}

		api := bridge.NewAPIServer(devices, bridge.NewIconCache(cfg.Bridge.IconCacheSize, cfg.Bridge.IconCacheTTL), lister)

		errCh := make(chan error, 1)
		go func() {
			errCh <- api.Start(cfg.Bridge.Listen)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil {
				log.Error().Err(err).Msg("Bridge stopped with error")
				return fmt.Errorf("bridge error: %w", err)
			}
			return nil
		case sig := <-sigCh:
			log.Info().Str("signal", sig.String()).Msg("Shutting down bridge")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return api.Stop(ctx)
	},
}

var serveConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage bridge configuration",
	Long:  `Generate, validate or extend the bridge configuration file.`,
}

var serveConfigGenerateCmd = &cobra.Command{
	Use:   "generate [config-file]",
	Short: "Generate default configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := serveConfigPath
		if len(args) > 0 {
			configPath = args[0]
		}

		if err := config.SaveConfig(config.NewDefaultConfig(), configPath); err != nil {
			return fmt.Errorf("failed to save default config: %w", err)
		}

		cmd.Printf("Default configuration saved to: %s\n", configPath)
		cmd.Println("Add devices with 'ecpctl serve config add-device --address <ip>'.")
		return nil
	},
}

var serveConfigValidateCmd = &cobra.Command{
	Use:   "validate [config-file]",
	Short: "Validate configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := serveConfigPath
		if len(args) > 0 {
			configPath = args[0]
		}

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		cmd.Printf("Configuration file is valid: %s\n", configPath)
		cmd.Printf("Bridge listen address: %s\n", cfg.Bridge.Listen)
		cmd.Printf("Configured devices: %d\n", len(cfg.Devices))
		for _, device := range cfg.Devices {
			cmd.Printf("  - %s (%s) at %s\n", device.ID, device.Name, device.Address)
		}

		return nil
	},
}

var serveConfigAddDeviceCmd = &cobra.Command{
	Use:   "add-device",
	Short: "Add a device to the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		manager := config.NewConfigManager(serveConfigPath)
		device, err := manager.AddDevice(config.DeviceConfig{
			ID:      addDeviceID,
			Name:    addDeviceName,
			Address: addDeviceAddress,
		})
		if err != nil {
			return err
		}

		cmd.Printf("Added device %s at %s\n", device.ID, device.Address)
		return nil
	},
}

func init() {
	serveCmd.PersistentFlags().StringVarP(&serveConfigPath, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	serveCmd.Flags().BoolVarP(&serveDebugFlag, "debug", "d", false, "Enable debug logging")
	serveCmd.Flags().BoolVar(&serveTestFlag, "test", false, "Answer from simulated devices instead of the network")

	serveConfigAddDeviceCmd.Flags().StringVar(&addDeviceID, "id", "", "Device id (generated when empty)")
	serveConfigAddDeviceCmd.Flags().StringVar(&addDeviceName, "name", "", "Display name")
	serveConfigAddDeviceCmd.Flags().StringVar(&addDeviceAddress, "address", "", "Device IPv4 address")
	serveConfigAddDeviceCmd.MarkFlagRequired("address")

	serveCmd.AddCommand(serveConfigCmd)
	serveConfigCmd.AddCommand(serveConfigGenerateCmd)
	serveConfigCmd.AddCommand(serveConfigValidateCmd)
	serveConfigCmd.AddCommand(serveConfigAddDeviceCmd)
}
