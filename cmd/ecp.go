// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"ecpctl/internal"
	"ecpctl/internal/ecp"
	"ecpctl/internal/logger"
)

var (
	ecpHost      string
	ecpDebug     bool
	ecpTest      bool
	ecpTimeout   time.Duration
	holdDuration time.Duration
	contentID    string
	mediaType    string
	iconOutput   string
)

// keyAliases maps friendly names to ECP key names; anything else is sent as given
var keyAliases = map[string]ecp.Key{
	"home":           ecp.KeyHome,
	"back":           ecp.KeyBack,
	"up":             ecp.KeyUp,
	"down":           ecp.KeyDown,
	"left":           ecp.KeyLeft,
	"right":          ecp.KeyRight,
	"select":         ecp.KeySelect,
	"ok":             ecp.KeySelect,
	"play":           ecp.KeyPlay,
	"reverse":        ecp.KeyReverse,
	"rev":            ecp.KeyReverse,
	"forward":        ecp.KeyForward,
	"fwd":            ecp.KeyForward,
	"instant-replay": ecp.KeyInstantReplay,
	"options":        ecp.KeyInfo,
	"info":           ecp.KeyInfo,
	"search":         ecp.KeySearch,
	"backspace":      ecp.KeyBackspace,
	"enter":          ecp.KeyEnter,
	"volume-up":      ecp.KeyVolumeUp,
	"volume-down":    ecp.KeyVolumeDown,
	"mute":           ecp.KeyVolumeMute,
	"power-on":       ecp.KeyPowerOn,
	"power-off":      ecp.KeyPowerOff,
}

func parseKey(name string) ecp.Key {
	if key, ok := keyAliases[strings.ToLower(name)]; ok {
		return key
	}
	return ecp.Key(name)
}

func newECPClient() *ecp.Client {
	logger.Configure(verbose, ecpDebug)
	options := internal.NewModeOptions(
		internal.WithDebug(ecpDebug),
		internal.WithTest(ecpTest),
		internal.WithTimeout(ecpTimeout),
	)
	return ecp.NewClient(ecpHost, ecp.WithModeOptions(options))
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

var ecpCmd = &cobra.Command{
	Use:   "ecp",
	Short: "Control a Roku device",
	Long: `Send ECP commands and queries to a single Roku device.
Keys accept ECP names (Home, Rev, VolumeUp) or friendly names (home, reverse, volume-up).`,
}

func keyCommand(use, short string, send func(*ecp.Client, context.Context, ecp.Key) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [key]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newECPClient()
			key := parseKey(args[0])

			log := logger.New()
			log.Info().
				Str("host", ecpHost).
				Str("key", string(key)).
				Msg("Sending " + use)

			if err := send(client, cmd.Context(), key); err != nil {
				return err
			}
			cmd.Printf("%s %s sent\n", use, key)
			return nil
		},
	}
}

var ecpLetterCmd = &cobra.Command{
	Use:   "letter [character]",
	Short: "Type a single character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newECPClient().KeyPressLetter(cmd.Context(), args[0])
	},
}

var ecpTypeCmd = &cobra.Command{
	Use:   "type [text]",
	Short: "Type text one character at a time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newECPClient()
		for _, r := range args[0] {
			if err := client.KeyPressLetter(cmd.Context(), string(r)); err != nil {
				return fmt.Errorf("failed to type %q: %w", r, err)
			}
		}
		return nil
	},
}

var ecpHoldCmd = &cobra.Command{
	Use:   "hold [key]",
	Short: "Hold a key down for a duration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newECPClient().HoldKey(cmd.Context(), parseKey(args[0]), holdDuration)
	},
}

var ecpLaunchCmd = &cobra.Command{
	Use:   "launch [app-id]",
	Short: "Launch an application, optionally deep linking into content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var options []ecp.LaunchOption
		if cmd.Flags().Changed("content-id") {
			options = append(options, ecp.WithContentID(contentID))
		}
		if cmd.Flags().Changed("media-type") {
			options = append(options, ecp.WithMediaType(ecp.MediaType(mediaType)))
		}
		return newECPClient().Launch(cmd.Context(), args[0], options...)
	},
}

var ecpInputCmd = &cobra.Command{
	Use:   "input [name]",
	Short: "Switch TV input (Tuner, HDMI1-4, AV1)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newECPClient().SwitchToInput(cmd.Context(), ecp.Input(args[0]))
	},
}

var ecpPowerCmd = &cobra.Command{
	Use:       "power [on|off|toggle]",
	Short:     "Control TV power",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newECPClient()
		switch args[0] {
		case "on":
			return client.PowerOn(cmd.Context())
		case "off":
			return client.PowerOff(cmd.Context())
		case "toggle":
			return client.PowerToggle(cmd.Context())
		default:
			return fmt.Errorf("unknown power command: %s (use on, off or toggle)", args[0])
		}
	},
}

var ecpInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device-info",
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := newECPClient().DeviceInfo(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}

var ecpPlayerCmd = &cobra.Command{
	Use:   "player",
	Short: "Show media player state",
	RunE: func(cmd *cobra.Command, args []string) error {
		player, err := newECPClient().PlayerState(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(player)
	},
}

var ecpAppsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List installed applications",
	RunE: func(cmd *cobra.Command, args []string) error {
		apps, err := newECPClient().Apps(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range apps.IDs() {
			app := apps[id]
			cmd.Printf("%-16s %-32s %s\n", id, app.Name, app.Version)
		}
		return nil
	},
}

var ecpIconCmd = &cobra.Command{
	Use:   "icon [app-id]",
	Short: "Download an application icon",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := newECPClient().Icon(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		output := iconOutput
		if output == "" {
			output = args[0] + ".png"
		}
		if err := os.WriteFile(output, data, 0644); err != nil {
			return fmt.Errorf("failed to write icon: %w", err)
		}
		cmd.Printf("Icon saved to: %s (%d bytes)\n", output, len(data))
		return nil
	},
}

var ecpListCmd = &cobra.Command{
	Use:   "list [keys|inputs|media-types]",
	Short: "List available keys, inputs or media types",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "keys":
			cmd.Println("Available keys:")
			cmd.Println("  Home, Back, Up, Down, Left, Right, Select")
			cmd.Println("  Play, Rev, Fwd, InstantReplay, Info, Search")
			cmd.Println("  Backspace, Enter")
			cmd.Println("  VolumeUp, VolumeDown, VolumeMute, PowerOn, PowerOff (TV models)")
		case "inputs":
			cmd.Println("Available inputs:")
			for _, input := range ecp.SupportedInputs {
				cmd.Printf("  %s\n", input)
			}
		case "media-types":
			cmd.Println("Available deep link media types:")
			for _, mt := range ecp.SupportedMediaTypes {
				cmd.Printf("  %s\n", mt)
			}
		default:
			return fmt.Errorf("unknown list type: %s (use keys, inputs or media-types)", args[0])
		}
		return nil
	},
}

func init() {
	ecpCmd.PersistentFlags().StringVarP(&ecpHost, "host", "H", "", "Roku device IP address")
	ecpCmd.PersistentFlags().BoolVarP(&ecpDebug, "debug", "d", false, "Enable debug logging")
	ecpCmd.PersistentFlags().BoolVar(&ecpTest, "test", false, "Answer from a simulated device instead of the network")
	ecpCmd.PersistentFlags().DurationVar(&ecpTimeout, "timeout", internal.DefaultTimeout, "HTTP request timeout")

	ecpHoldCmd.Flags().DurationVar(&holdDuration, "duration", time.Second, "How long to hold the key")
	ecpLaunchCmd.Flags().StringVar(&contentID, "content-id", "", "Content to deep link into")
	ecpLaunchCmd.Flags().StringVar(&mediaType, "media-type", "", "Deep link media type")
	ecpIconCmd.Flags().StringVarP(&iconOutput, "output", "o", "", "Output file (default <app-id>.png)")

	deviceCommands := []*cobra.Command{
		keyCommand("keypress", "Press and release a key", (*ecp.Client).KeyPress),
		keyCommand("keydown", "Press a key without releasing it", (*ecp.Client).KeyDown),
		keyCommand("keyup", "Release a key", (*ecp.Client).KeyUp),
		ecpLetterCmd,
		ecpTypeCmd,
		ecpHoldCmd,
		ecpLaunchCmd,
		ecpInputCmd,
		ecpPowerCmd,
		ecpInfoCmd,
		ecpPlayerCmd,
		ecpAppsCmd,
		ecpIconCmd,
	}
	for _, c := range deviceCommands {
		ecpCmd.AddCommand(c)
		markHostRequired(c)
	}
	ecpCmd.AddCommand(ecpListCmd)

	rootCmd.AddCommand(ecpCmd)
}

// markHostRequired rejects device commands run without --host
func markHostRequired(c *cobra.Command) {
	c.PreRunE = func(cmd *cobra.Command, args []string) error {
		if ecpHost == "" {
			return fmt.Errorf("--host is required")
		}
		return nil
	}
}
