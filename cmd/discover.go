package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ecpctl/internal"
	"ecpctl/internal/config"
	"ecpctl/internal/discovery"
	"ecpctl/internal/ecp"
	"ecpctl/internal/logger"
	"ecpctl/internal/registry"
)

var (
	discoverSave     bool
	discoverProbe    bool
	discoverRegistry string
	discoverDebug    bool
)

const probeConcurrency = 8

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find Roku devices on the local network",
	Long: `Send an SSDP M-SEARCH for roku:ecp and print every device that answers within 5 seconds.
A device may be printed more than once if it answers more than once.
Requires UDP port 1900 to be free and reachable inbound.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Configure(verbose, discoverDebug)
		log := logger.New()

		scanID := uuid.New().String()
		log.Info().Str("scan_id", scanID).Msg("Scanning for ECP devices")

		var (
			mu        sync.Mutex
			addresses []string
		)
		err := discovery.NewScanner().Scan(func(address string) {
			mu.Lock()
			addresses = append(addresses, address)
			mu.Unlock()
			cmd.Println(address)
		})
		if err != nil {
			return err
		}

		unique := discovery.Unique(addresses)
		cmd.Printf("Found %d device(s), %d repl%s\n", len(unique), len(addresses), plural(len(addresses), "y", "ies"))

		if !discoverProbe && !discoverSave {
			return nil
		}

		records := make([]registry.Record, len(unique))
		for i, address := range unique {
			records[i] = registry.Record{Address: address, ScanID: scanID}
		}

		if discoverProbe {
			probeDevices(cmd.Context(), records)
			for _, record := range records {
				cmd.Printf("%-16s %-24s %-20s %s\n", record.Address, record.Name, record.Model, record.PowerMode)
			}
		}

		if discoverSave {
			return saveRecords(records)
		}
		return nil
	},
}

// probeDevices fills in device-info details concurrently; unreachable devices keep only their address
func probeDevices(ctx context.Context, records []registry.Record) {
	log := logger.New()
	options := internal.NewModeOptions(internal.WithDebug(discoverDebug), internal.WithTimeout(3*time.Second))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(probeConcurrency)
	for i := range records {
		record := &records[i]
		g.Go(func() error {
			client := ecp.NewClient(record.Address, ecp.WithModeOptions(options))
			info, err := client.DeviceInfo(ctx)
			if err != nil {
				log.Warn().Str("address", record.Address).Err(err).Msg("Failed to probe device")
				return nil
			}
			record.Serial, _ = info.Get(ecp.FieldSerialNumber)
			record.Model, _ = info.Get(ecp.FieldModelName)
			record.Name = info.DisplayName()
			record.PowerMode, _ = info.PowerMode()
			return nil
		})
	}
	_ = g.Wait()
}

func saveRecords(records []registry.Record) error {
	store, err := registry.Open(discoverRegistry)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, record := range records {
		if _, err := store.Upsert(record); err != nil {
			return err
		}
	}
	fmt.Printf("Saved %d device(s) to %s\n", len(records), discoverRegistry)
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func init() {
	discoverCmd.Flags().BoolVar(&discoverSave, "save", false, "Record discovered devices in the registry")
	discoverCmd.Flags().BoolVar(&discoverProbe, "probe", false, "Query device-info from each device found")
	discoverCmd.Flags().StringVar(&discoverRegistry, "registry", config.DefaultRegistryPath, "Path to the registry database")
	discoverCmd.Flags().BoolVarP(&discoverDebug, "debug", "d", false, "Enable debug logging")

	rootCmd.AddCommand(discoverCmd)
}
