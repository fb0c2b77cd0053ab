package ecp

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

// KeyPress sends a single press of key
func (c *Client) KeyPress(ctx context.Context, key Key) error {
	return c.command(ctx, CommandPath{string(CommandKeyPress), string(key)})
}

// KeyDown sends a key-down event
func (c *Client) KeyDown(ctx context.Context, key Key) error {
	return c.command(ctx, CommandPath{string(CommandKeyDown), string(key)})
}

// KeyUp sends a key-up event
func (c *Client) KeyUp(ctx context.Context, key Key) error {
	return c.command(ctx, CommandPath{string(CommandKeyUp), string(key)})
}

// KeyPressLetter types one character through the lit_ key.
// Only ASCII is known to be handled correctly by devices.
func (c *Client) KeyPressLetter(ctx context.Context, letter string) error {
	key, err := LiteralKey(letter)
	if err != nil {
		return err
	}
	return c.KeyPress(ctx, key)
}

// LiteralKey returns the lit_ key for a single character
func LiteralKey(letter string) (Key, error) {
	if utf8.RuneCountInString(letter) != 1 {
		return "", invalidArgument("exactly one letter must be provided, got %q", letter)
	}
	return Key("lit_" + encodeURIComponent(letter)), nil
}

// HoldKey presses key down, waits for duration and releases it.
// Only the calling goroutine waits. If ctx ends during the wait the key is still released.
func (c *Client) HoldKey(ctx context.Context, key Key, duration time.Duration) error {
	if duration < 0 {
		return invalidArgument("hold duration must not be negative, got %s", duration)
	}

	if err := c.KeyDown(ctx, key); err != nil {
		return err
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return c.KeyUp(ctx, key)
	case <-ctx.Done():
		releaseErr := c.KeyUp(context.WithoutCancel(ctx), key)
		return errors.Join(ctx.Err(), releaseErr)
	}
}

// Launch starts an application, optionally deep linking into content
func (c *Client) Launch(ctx context.Context, appID string, options ...LaunchOption) error {
	token, err := LaunchCommand(appID, options...)
	if err != nil {
		return err
	}
	return c.command(ctx, CommandPath{string(CommandLaunch), token})
}

// SwitchToInput changes the TV input
func (c *Client) SwitchToInput(ctx context.Context, input Input) error {
	if !input.Valid() {
		return invalidArgument("not a supported TV input: %q", string(input))
	}
	return c.KeyPress(ctx, input.Key())
}

func (c *Client) PowerOn(ctx context.Context) error  { return c.KeyPress(ctx, KeyPowerOn) }
func (c *Client) PowerOff(ctx context.Context) error { return c.KeyPress(ctx, KeyPowerOff) }

// PowerToggle reads the current power mode and sends the opposite command.
// Devices that do not report a power mode return ErrUnsupportedOperation.
func (c *Client) PowerToggle(ctx context.Context) error {
	info, err := c.DeviceInfo(ctx)
	if err != nil {
		return err
	}

	mode, ok := info.PowerMode()
	if !ok {
		return fmt.Errorf("%w: device does not report %s", ErrUnsupportedOperation, FieldPowerMode)
	}

	if mode == PowerModeOn {
		return c.PowerOff(ctx)
	}
	return c.PowerOn(ctx)
}

// Key aliases

func (c *Client) Home(ctx context.Context) error          { return c.KeyPress(ctx, KeyHome) }
func (c *Client) Back(ctx context.Context) error          { return c.KeyPress(ctx, KeyBack) }
func (c *Client) Up(ctx context.Context) error            { return c.KeyPress(ctx, KeyUp) }
func (c *Client) Down(ctx context.Context) error          { return c.KeyPress(ctx, KeyDown) }
func (c *Client) Left(ctx context.Context) error          { return c.KeyPress(ctx, KeyLeft) }
func (c *Client) Right(ctx context.Context) error         { return c.KeyPress(ctx, KeyRight) }
func (c *Client) Select(ctx context.Context) error        { return c.KeyPress(ctx, KeySelect) }
func (c *Client) Play(ctx context.Context) error          { return c.KeyPress(ctx, KeyPlay) }
func (c *Client) Reverse(ctx context.Context) error       { return c.KeyPress(ctx, KeyReverse) }
func (c *Client) Forward(ctx context.Context) error       { return c.KeyPress(ctx, KeyForward) }
func (c *Client) InstantReplay(ctx context.Context) error { return c.KeyPress(ctx, KeyInstantReplay) }
func (c *Client) Options(ctx context.Context) error       { return c.KeyPress(ctx, KeyInfo) }
func (c *Client) Search(ctx context.Context) error        { return c.KeyPress(ctx, KeySearch) }
func (c *Client) Backspace(ctx context.Context) error     { return c.KeyPress(ctx, KeyBackspace) }
func (c *Client) Enter(ctx context.Context) error         { return c.KeyPress(ctx, KeyEnter) }
func (c *Client) VolumeUp(ctx context.Context) error      { return c.KeyPress(ctx, KeyVolumeUp) }
func (c *Client) VolumeDown(ctx context.Context) error    { return c.KeyPress(ctx, KeyVolumeDown) }
func (c *Client) VolumeMute(ctx context.Context) error    { return c.KeyPress(ctx, KeyVolumeMute) }
