package ecp

import (
	"context"
	"sort"
	"strconv"
)

// DeviceInfo is the flattened device-info response: field name to text value
type DeviceInfo map[string]string

// Get returns a field and whether the device reported it
func (d DeviceInfo) Get(field string) (string, bool) {
	value, ok := d[field]
	return value, ok
}

// PowerMode returns the power-mode field; only TV models report it
func (d DeviceInfo) PowerMode() (string, bool) {
	return d.Get(FieldPowerMode)
}

// DisplayName picks the most human friendly name the device reports
func (d DeviceInfo) DisplayName() string {
	for _, field := range []string{FieldUserDeviceName, FieldFriendlyName, FieldModelName} {
		if value, ok := d[field]; ok && value != "" {
			return value
		}
	}
	return ""
}

// PlayerState is the parsed media-player response. Nil fields were not reported by the device.
type PlayerState struct {
	State    PlaybackState `json:"state"`
	Error    bool          `json:"error"`
	Plugin   *PluginInfo   `json:"plugin,omitempty"`
	Format   *MediaFormat  `json:"format,omitempty"`
	Position *string       `json:"position,omitempty"`
	Duration *string       `json:"duration,omitempty"`
	Live     *bool         `json:"live,omitempty"`
}

// PluginInfo identifies the app currently driving the player
type PluginInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Bandwidth string `json:"bandwidth,omitempty"`
}

// MediaFormat describes the stream being played
type MediaFormat struct {
	Audio    string `json:"audio"`
	Video    string `json:"video"`
	Captions string `json:"captions"`
	Live     bool   `json:"live"`
}

// AppInfo describes one installed application
type AppInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Type    string `json:"type,omitempty"`
}

// AppCatalog maps application id to its details
type AppCatalog map[string]AppInfo

// IDs returns the application ids in sorted order
func (a AppCatalog) IDs() []string {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DeviceInfo queries and flattens device-info
func (c *Client) DeviceInfo(ctx context.Context) (DeviceInfo, error) {
	body, err := c.query(ctx, CommandPath{string(CommandQuery), QueryDeviceInfo})
	if err != nil {
		return nil, err
	}
	return ParseDeviceInfo(body)
}

// PlayerState queries media-player
func (c *Client) PlayerState(ctx context.Context) (*PlayerState, error) {
	body, err := c.query(ctx, CommandPath{string(CommandQuery), QueryMediaPlayer})
	if err != nil {
		return nil, err
	}
	return ParsePlayerState(body)
}

// Icon returns the raw image bytes of an application's icon
func (c *Client) Icon(ctx context.Context, appID string) ([]byte, error) {
	return c.query(ctx, CommandPath{string(CommandQuery), QueryIcon, appID})
}

// Apps lists the installed applications
func (c *Client) Apps(ctx context.Context) (AppCatalog, error) {
	body, err := c.query(ctx, CommandPath{string(CommandQuery), QueryApps})
	if err != nil {
		return nil, err
	}
	return ParseApps(body)
}

// ParseDeviceInfo flattens each child of <device-info> to its text. The first occurrence of a field wins.
func ParseDeviceInfo(data []byte) (DeviceInfo, error) {
	root, err := parseDocument(data, "device-info")
	if err != nil {
		return nil, err
	}

	info := make(DeviceInfo, len(root.Children))
	for i := range root.Children {
		field := root.Children[i].name()
		if _, seen := info[field]; seen {
			continue
		}
		info[field] = root.Children[i].text()
	}
	return info, nil
}

// ParsePlayerState reads <player>. The state attribute is required; everything else is optional.
func ParsePlayerState(data []byte) (*PlayerState, error) {
	root, err := parseDocument(data, "player")
	if err != nil {
		return nil, err
	}

	state, ok := root.attr("state")
	if !ok {
		return nil, errorMissingField("player", "state")
	}

	player := &PlayerState{State: PlaybackState(state)}
	if value, ok := root.attr("error"); ok {
		player.Error = parseBoolOr(value, false)
	}

	if plugin, ok := root.child("plugin"); ok {
		player.Plugin = &PluginInfo{
			ID:        plugin.attrOrEmpty("id"),
			Name:      plugin.attrOrEmpty("name"),
			Bandwidth: plugin.attrOrEmpty("bandwidth"),
		}
	}

	// format and is_live have only been seen from some streaming apps
	if format, ok := root.child("format"); ok {
		player.Format = &MediaFormat{
			Audio:    format.attrOrEmpty("audio"),
			Video:    format.attrOrEmpty("video"),
			Captions: format.attrOrEmpty("captions"),
			Live:     parseBoolOr(format.attrOrEmpty("live"), false),
		}
	}

	if position, ok := root.childText("position"); ok {
		player.Position = &position
	}
	if duration, ok := root.childText("duration"); ok {
		player.Duration = &duration
	}
	if live, ok := root.childText("is_live"); ok {
		if parsed, err := strconv.ParseBool(live); err == nil {
			player.Live = &parsed
		}
	}

	return player, nil
}

// ParseApps reads every <app> under <apps>. Entries without an id are skipped; a repeated id keeps the last entry.
func ParseApps(data []byte) (AppCatalog, error) {
	root, err := parseDocument(data, "apps")
	if err != nil {
		return nil, err
	}

	catalog := make(AppCatalog)
	for _, app := range root.children("app") {
		id, ok := app.attr("id")
		if !ok {
			continue
		}
		catalog[id] = AppInfo{
			Name:    app.text(),
			Version: app.attrOrEmpty("version"),
			Type:    app.attrOrEmpty("type"),
		}
	}
	return catalog, nil
}

func parseBoolOr(value string, fallback bool) bool {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
