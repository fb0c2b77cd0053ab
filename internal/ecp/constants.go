package ecp

// DefaultPort is the ECP HTTP port every device listens on
const DefaultPort = 8060

// Key is a named remote key understood by the keypress/keydown/keyup commands
type Key string

// Remote keys
const (
	// Navigation
	KeyHome   Key = "Home"
	KeyBack   Key = "Back"
	KeyUp     Key = "Up"
	KeyDown   Key = "Down"
	KeyLeft   Key = "Left"
	KeyRight  Key = "Right"
	KeySelect Key = "Select"

	// Playback
	KeyPlay          Key = "Play"
	KeyReverse       Key = "Rev"
	KeyForward       Key = "Fwd"
	KeyInstantReplay Key = "InstantReplay"
	KeyInfo          Key = "Info"
	KeySearch        Key = "Search"

	// Typing; not on the physical remote
	KeyBackspace Key = "Backspace"
	KeyEnter     Key = "Enter"

	// TV models only
	KeyVolumeUp   Key = "VolumeUp"
	KeyVolumeDown Key = "VolumeDown"
	KeyVolumeMute Key = "VolumeMute"
	KeyPowerOff   Key = "PowerOff"
	KeyPowerOn    Key = "PowerOn"
)

// CommandKind is the first path segment of a request
type CommandKind string

const (
	CommandKeyPress CommandKind = "keypress"
	CommandKeyDown  CommandKind = "keydown"
	CommandKeyUp    CommandKind = "keyup"
	CommandLaunch   CommandKind = "launch"
	CommandQuery    CommandKind = "query"
)

// Query resources under /query
const (
	QueryDeviceInfo  = "device-info"
	QueryMediaPlayer = "media-player"
	QueryApps        = "apps"
	QueryIcon        = "icon"
)

// Input is a TV input selectable with SwitchToInput
type Input string

const (
	InputTuner Input = "Tuner"
	InputHDMI1 Input = "HDMI1"
	InputHDMI2 Input = "HDMI2"
	InputHDMI3 Input = "HDMI3"
	InputHDMI4 Input = "HDMI4"
	InputAV1   Input = "AV1"
)

// SupportedInputs lists every input SwitchToInput accepts
var SupportedInputs = []Input{InputTuner, InputHDMI1, InputHDMI2, InputHDMI3, InputHDMI4, InputAV1}

// Valid reports whether the input is one of SupportedInputs
func (i Input) Valid() bool {
	for _, supported := range SupportedInputs {
		if i == supported {
			return true
		}
	}
	return false
}

// Key returns the keypress that selects this input
func (i Input) Key() Key {
	return Key("Input" + string(i))
}

// MediaType qualifies a deep link passed to Launch
type MediaType string

const (
	MediaTypeSeason    MediaType = "season"
	MediaTypeEpisode   MediaType = "episode"
	MediaTypeMovie     MediaType = "movie"
	MediaTypeShortForm MediaType = "short-form"
	MediaTypeSpecial   MediaType = "special"
	MediaTypeLive      MediaType = "live"
)

// SupportedMediaTypes lists every deep link media type the device accepts
var SupportedMediaTypes = []MediaType{
	MediaTypeSeason, MediaTypeEpisode, MediaTypeMovie,
	MediaTypeShortForm, MediaTypeSpecial, MediaTypeLive,
}

// Valid reports whether the media type is one of SupportedMediaTypes
func (m MediaType) Valid() bool {
	for _, supported := range SupportedMediaTypes {
		if m == supported {
			return true
		}
	}
	return false
}

// device-info fields the client reads
const (
	FieldPowerMode      = "power-mode"
	FieldSerialNumber   = "serial-number"
	FieldModelName      = "model-name"
	FieldFriendlyName   = "friendly-device-name"
	FieldUserDeviceName = "user-device-name"

	PowerModeOn = "PowerOn"
)

// PlaybackState is the state attribute of a media-player response
type PlaybackState string

const (
	StateClose   PlaybackState = "close"
	StateOpen    PlaybackState = "open"
	StateStartup PlaybackState = "startup"
	StatePlay    PlaybackState = "play"
	StatePause   PlaybackState = "pause"
	StateBuffer  PlaybackState = "buffer"
	StateStop    PlaybackState = "stop"
)
