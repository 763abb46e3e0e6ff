package faucet

import (
	"context"

	"github.com/rs/zerolog"
)

// ErrorHandler is a user-provided callback for payloads that fail to
// decode or execute. data is the raw payload as received.
type ErrorHandler func(ctx context.Context, data []byte, err error)
type Option func(*Options)

type Options struct {
	MsgBufferSize int
	OnError       ErrorHandler
	Logger        zerolog.Logger
}

func defaultOptions() Options {
	return Options{
		MsgBufferSize: 100,
		OnError: func(ctx context.Context, data []byte, err error) {
			// Default: no-op
		},
		Logger: zerolog.Nop(),
	}
}

func applyOptions(opts []Option) Options {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

func WithMsgBufferSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.MsgBufferSize = size
		}
	}
}

func WithOnError(handler ErrorHandler) Option {
	return func(o *Options) {
		if handler != nil {
			o.OnError = handler
		}
	}
}

// WithLogger sets the logger used by transports and the dispatcher.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
