package faucet

import (
	"context"
	"sync"
)

type Registry interface {
	Register(kind InstructionKind, h Handler) error
	Execute(ctx context.Context, ix Instruction) error
}

type registryImpl struct {
	handlers map[InstructionKind]Handler
	mu       sync.RWMutex
}

func (r *registryImpl) Register(kind InstructionKind, h Handler) error {
	if !kind.Valid() {
		return ErrInvalidKind
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[kind]; exists {
		return ErrHandlerAlreadyExists
	}
	r.handlers[kind] = h
	return nil
}

func (r *registryImpl) Execute(ctx context.Context, ix Instruction) error {
	r.mu.RLock()
	h, ok := r.handlers[ix.Kind()]
	r.mu.RUnlock()
	if !ok {
		return ErrHandlerNotFound
	}
	return h(ctx, ix)
}

func NewRegistry() Registry {
	return &registryImpl{handlers: make(map[InstructionKind]Handler)}
}
