package faucet

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSTransport carries packed instructions on a core NATS subject.
type NATSTransport struct {
	nc        *nats.Conn
	subject   string
	sub       *nats.Subscription
	mu        sync.RWMutex
	connected bool
	ownsConn  bool
	msgChan   chan []byte
	once      sync.Once
	logger    zerolog.Logger
}

// Publish sends a packed instruction on the subject
func (n *NATSTransport) Publish(ctx context.Context, data []byte) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if !n.connected {
		return ErrTransportNotConnected
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := n.nc.Publish(n.subject, data); err != nil {
		n.logger.Error().Err(err).Msg("publish failed")
		return ErrPublishFailed
	}
	return nil
}

// Subscribe starts delivering messages from the subject to Messages
func (n *NATSTransport) Subscribe(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.sub != nil {
		return nil
	}
	if !n.connected {
		return ErrTransportNotConnected
	}

	sub, err := n.nc.Subscribe(n.subject, n.handleMessage)
	if err != nil {
		n.logger.Error().Err(err).Msg("subscribe failed")
		return fmt.Errorf("%w: %v", ErrSubscribeFailed, err)
	}
	n.sub = sub
	return nil
}

func (n *NATSTransport) handleMessage(msg *nats.Msg) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	// msgChan is closed under the write lock, so the check and the send
	// below cannot race with Close.
	if !n.connected {
		return
	}

	select {
	case n.msgChan <- msg.Data:
	default:
		n.logger.Warn().Int("len", len(msg.Data)).Msg("message buffer full, dropping instruction")
	}
}

// Messages returns a channel of payloads received from the subject
func (n *NATSTransport) Messages() <-chan []byte {
	return n.msgChan
}

// Close unsubscribes and closes the message channel. The connection is
// closed only if the transport dialed it.
func (n *NATSTransport) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.connected {
		return nil
	}

	var err error
	n.once.Do(func() {
		if n.sub != nil {
			err = n.sub.Unsubscribe()
		}
		if n.ownsConn {
			n.nc.Close()
		}
		n.connected = false
		close(n.msgChan)
	})
	return err
}

// IsConnected returns true if the transport is open and NATS is connected
func (n *NATSTransport) IsConnected() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.connected && !n.nc.IsClosed()
}

// NewNATSTransport creates a transport on an existing connection.
func NewNATSTransport(nc *nats.Conn, subject string, opts ...Option) Transport {
	return newNATSTransport(nc, subject, false, opts)
}

// NewNATSTransportURL dials url and creates a transport that owns the
// connection.
func NewNATSTransportURL(url, subject string, opts ...Option) (Transport, error) {
	options := applyOptions(opts)
	logger := options.Logger.With().Str("transport", "nats").Str("subject", subject).Logger()

	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info().Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return newNATSTransport(nc, subject, true, opts), nil
}

func newNATSTransport(nc *nats.Conn, subject string, owns bool, opts []Option) *NATSTransport {
	options := applyOptions(opts)
	return &NATSTransport{
		nc:        nc,
		subject:   subject,
		connected: true,
		ownsConn:  owns,
		msgChan:   make(chan []byte, options.MsgBufferSize),
		logger:    options.Logger.With().Str("transport", "nats").Str("subject", subject).Logger(),
	}
}
