package internal

import "time"

// DefaultTimeout bounds a single ECP request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

type FnModeOptions struct {
	Debug   bool
	Test    bool
	Timeout time.Duration
}

type FnModeOption func(*FnModeOptions)

func WithDebug(debug bool) FnModeOption {
	return func(opts *FnModeOptions) {
		opts.Debug = debug
	}
}

// WithTest routes device traffic to the in-memory simulator instead of the network.
func WithTest(test bool) FnModeOption {
	return func(opts *FnModeOptions) {
		opts.Test = test
	}
}

func WithTimeout(timeout time.Duration) FnModeOption {
	return func(opts *FnModeOptions) {
		if timeout > 0 {
			opts.Timeout = timeout
		}
	}
}

func NewModeOptions(options ...FnModeOption) *FnModeOptions {
	opts := &FnModeOptions{
		Debug:   false,
		Test:    false,
		Timeout: DefaultTimeout,
	}
	for _, option := range options {
		option(opts)
	}
	return opts
}
