package faucet

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/valkey-io/valkey-go"
)

const (
	minRetryDelay = 100 * time.Millisecond
	maxRetryDelay = 30 * time.Second
)

type ValkeyTransport struct {
	client       valkey.Client
	channel      string
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	isSubscribed bool
	connected    bool
	msgChan      chan []byte
	closedChan   chan struct{}
	once         sync.Once
	options      Options
	logger       zerolog.Logger
}

// Publish publishes a packed instruction to the valkey channel
func (v *ValkeyTransport) Publish(ctx context.Context, data []byte) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if !v.connected {
		return ErrTransportNotConnected
	}

	cmd := v.client.B().Publish().Channel(v.channel).Message(valkey.BinaryString(data)).Build()
	if err := v.client.Do(ctx, cmd).Error(); err != nil {
		v.logger.Error().Err(err).Msg("publish failed")
		return ErrPublishFailed
	}

	return nil
}

// Subscribe starts subscribing to the valkey channel
func (v *ValkeyTransport) Subscribe(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.isSubscribed {
		return nil
	}

	if !v.connected {
		return ErrTransportNotConnected
	}

	go v.subscriptionLoop()

	v.isSubscribed = true
	return nil
}

// subscriptionLoop keeps a subscription open, reconnecting with backoff
func (v *ValkeyTransport) subscriptionLoop() {
	defer func() {
		v.mu.Lock()
		v.isSubscribed = false
		close(v.msgChan)
		v.mu.Unlock()
	}()

	retryDelay := minRetryDelay
	subscriber := v.client.B().Subscribe().Channel(v.channel).Build()

	for {
		if v.shouldStop() {
			return
		}

		// Blocks until an error occurs or the context is cancelled.
		err := v.client.Receive(v.ctx, subscriber, v.handleMessage)

		if v.shouldStop() {
			return
		}

		if err != nil {
			v.logger.Warn().Err(err).Dur("retry_in", retryDelay).Msg("subscription lost")
			if !v.sleep(retryDelay) {
				return
			}
			retryDelay *= 2
			if retryDelay > maxRetryDelay {
				retryDelay = maxRetryDelay
			}
			continue
		}

		retryDelay = minRetryDelay
		if !v.sleep(minRetryDelay) {
			return
		}
	}
}

// sleep waits for d and reports false if the transport closed meanwhile.
func (v *ValkeyTransport) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-v.closedChan:
		return false
	case <-v.ctx.Done():
		return false
	}
}

// handleMessage forwards one pub/sub message to the message channel
func (v *ValkeyTransport) handleMessage(msg valkey.PubSubMessage) {
	if msg.Channel != v.channel {
		return
	}

	data := []byte(msg.Message)

	select {
	case v.msgChan <- data:
	case <-v.closedChan:
	case <-v.ctx.Done():
	default:
		v.logger.Warn().Int("len", len(data)).Msg("message buffer full, dropping instruction")
	}
}

// Messages returns a channel of payloads received from the transport
func (v *ValkeyTransport) Messages() <-chan []byte {
	return v.msgChan
}

// Close shuts down the valkey transport and cleans up resources
func (v *ValkeyTransport) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.connected {
		return nil
	}

	v.once.Do(func() {
		close(v.closedChan)
		v.cancel()
		v.client.Close()
		v.connected = false
		// Without a running subscription nobody else closes msgChan.
		if !v.isSubscribed {
			close(v.msgChan)
		}
	})

	return nil
}

// IsConnected returns true if the transport is connected and ready
func (v *ValkeyTransport) IsConnected() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.connected
}

func (v *ValkeyTransport) shouldStop() bool {
	select {
	case <-v.closedChan:
		return true
	case <-v.ctx.Done():
		return true
	default:
		return false
	}
}

// NewValkeyClient creates a new valkey client with common configuration
func NewValkeyClient(address string, options ...valkey.ClientOption) (valkey.Client, error) {
	var clientOption valkey.ClientOption
	if len(options) > 0 {
		clientOption = options[0]
	}
	if len(clientOption.InitAddress) == 0 {
		clientOption.InitAddress = []string{address}
	}

	return valkey.NewClient(clientOption)
}

// NewValkeyTransport creates a new valkey transport instance
func NewValkeyTransport(client valkey.Client, channel string, opts ...Option) Transport {
	ctx, cancel := context.WithCancel(context.Background())
	options := applyOptions(opts)

	return &ValkeyTransport{
		client:     client,
		channel:    channel,
		ctx:        ctx,
		cancel:     cancel,
		connected:  true,
		msgChan:    make(chan []byte, options.MsgBufferSize),
		closedChan: make(chan struct{}),
		options:    options,
		logger:     options.Logger.With().Str("transport", "valkey").Str("channel", channel).Logger(),
	}
}
