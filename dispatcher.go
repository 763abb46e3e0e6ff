package faucet

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/valkey-io/valkey-go"
)

// Dispatcher decodes instructions arriving on a Transport and routes them
// to registered handlers.
type Dispatcher interface {
	RegisterHandler(kind InstructionKind, handler Handler) error
	Submit(ctx context.Context, ix Instruction) error
	Start(ctx context.Context) error
	Shutdown() error
	IsRunning() bool
}

type dispatcherImpl struct {
	registry  Registry
	transport Transport
	options   Options
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	started   bool
	mu        sync.RWMutex
}

// RegisterHandler registers an instruction handler with the registry
func (d *dispatcherImpl) RegisterHandler(kind InstructionKind, handler Handler) error {
	return d.registry.Register(kind, handler)
}

// Submit packs ix and publishes it through the transport
func (d *dispatcherImpl) Submit(ctx context.Context, ix Instruction) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.started {
		return ErrDispatcherNotStarted
	}

	return d.transport.Publish(ctx, Pack(ix))
}

// Start begins listening for instructions from the transport
func (d *dispatcherImpl) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started {
		return ErrDispatcherAlreadyStarted
	}

	if !d.transport.IsConnected() {
		return ErrTransportNotConnected
	}

	if err := d.transport.Subscribe(ctx); err != nil {
		return err
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.processMessages()
	}()

	d.started = true
	d.logger.Debug().Msg("dispatcher started")
	return nil
}

// processMessages decodes payloads from the transport until it closes
func (d *dispatcherImpl) processMessages() {
	msgChan := d.transport.Messages()

	for {
		select {
		case data, ok := <-msgChan:
			if !ok {
				return
			}

			ix, err := Unpack(data)
			if err != nil {
				d.logger.Warn().Err(err).Int("len", len(data)).Msg("dropping undecodable instruction")
				d.options.OnError(d.ctx, data, err)
				continue
			}

			// Handlers run on their own goroutine so a slow one does not
			// stall decoding.
			d.wg.Add(1)
			go func(data []byte, ix Instruction) {
				defer d.wg.Done()
				if err := d.registry.Execute(d.ctx, ix); err != nil {
					d.logger.Warn().Err(err).Stringer("kind", ix.Kind()).Msg("instruction failed")
					d.options.OnError(d.ctx, data, err)
				}
			}(data, ix)

		case <-d.ctx.Done():
			return
		}
	}
}

// IsRunning returns true if the dispatcher is currently running
func (d *dispatcherImpl) IsRunning() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.started
}

// Shutdown stops processing, closes the transport and waits for in-flight
// handlers. Handlers still running may call Submit; it returns
// ErrDispatcherNotStarted.
func (d *dispatcherImpl) Shutdown() error {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return nil
	}
	d.started = false
	d.cancel()
	d.mu.Unlock()

	// The lock is released before waiting so handlers are never blocked on it.
	err := d.transport.Close()
	d.wg.Wait()
	if err != nil {
		return err
	}

	d.logger.Debug().Msg("dispatcher stopped")
	return nil
}

// NewDispatcher creates a dispatcher reading from transport.
func NewDispatcher(transport Transport, opts ...Option) Dispatcher {
	options := applyOptions(opts)
	ctx, cancel := context.WithCancel(context.Background())
	return &dispatcherImpl{
		registry:  NewRegistry(),
		transport: transport,
		options:   options,
		logger:    options.Logger.With().Str("component", "dispatcher").Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// NewDispatcherWithValkey creates a dispatcher over a Valkey channel.
func NewDispatcherWithValkey(client valkey.Client, channel string, opts ...Option) Dispatcher {
	return NewDispatcher(NewValkeyTransport(client, channel, opts...), opts...)
}

// NewDispatcherWithValkeyAddress dials Valkey at address and creates a
// dispatcher over channel.
func NewDispatcherWithValkeyAddress(address, channel string, opts ...Option) (Dispatcher, error) {
	client, err := NewValkeyClient(address)
	if err != nil {
		return nil, err
	}
	return NewDispatcherWithValkey(client, channel, opts...), nil
}
