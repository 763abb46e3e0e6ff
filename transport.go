package faucet

import "context"

// Transport moves packed instructions between processes. It knows nothing
// about the instruction layout; decoding happens in the Dispatcher.
type Transport interface {
	// Publish sends one packed instruction
	Publish(ctx context.Context, data []byte) error

	// Subscribe starts listening for instructions on the transport
	Subscribe(ctx context.Context) error

	// Messages returns a channel of raw payloads received from the transport.
	// The channel is closed when the transport is closed
	Messages() <-chan []byte

	// Close shuts down the transport and releases resources
	Close() error

	// IsConnected returns true if the transport is connected and ready
	IsConnected() bool
}
