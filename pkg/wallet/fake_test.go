package wallet

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// fakeChain is a chain stub pinned at a fixed height.
type fakeChain struct {
	height int64
}

func (c *fakeChain) Height(ctx context.Context) (int64, error) {
	return c.height, nil
}

// fakeHandle records every lifecycle call so tests can assert ordering.
type fakeHandle struct {
	name string
	path string
	id   uuid.UUID

	mu             sync.Mutex
	postInits      int
	flushes        int
	terminalFlushes int
	released       int

	postInitErr error
	flushErr    error
	releaseErr  error
}

func newFakeHandle(name, path string) *fakeHandle {
	return &fakeHandle{name: name, path: path, id: uuid.New()}
}

func (h *fakeHandle) Name() string  { return h.name }
func (h *fakeHandle) Path() string  { return h.path }
func (h *fakeHandle) ID() uuid.UUID { return h.id }

func (h *fakeHandle) PostInit(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.postInits++
	return h.postInitErr
}

func (h *fakeHandle) Flush(ctx context.Context, shutdown bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.flushes++
	if shutdown {
		h.terminalFlushes++
	}
	return h.flushErr
}

func (h *fakeHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released++
	return h.releaseErr
}

func (h *fakeHandle) releaseCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

func (h *fakeHandle) terminalFlushCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.terminalFlushes
}

// fakeEngine is an Engine whose per-wallet behavior is scripted by name.
type fakeEngine struct {
	mu       sync.Mutex
	verified []string
	opened   []*fakeHandle
	compacts int

	warnings   map[string]string
	verifyErrs map[string]error
	openErrs   map[string]error
	compactErr error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		warnings:   make(map[string]string),
		verifyErrs: make(map[string]error),
		openErrs:   make(map[string]error),
	}
}

func (e *fakeEngine) Verify(ctx context.Context, loc Location, salvage bool) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.verified = append(e.verified, loc.Name())
	return e.warnings[loc.Name()], e.verifyErrs[loc.Name()]
}

func (e *fakeEngine) Open(ctx context.Context, chain Chain, loc Location) (Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.openErrs[loc.Name()]; err != nil {
		return nil, err
	}
	h := newFakeHandle(loc.Name(), loc.Path())
	e.opened = append(e.opened, h)
	return h, nil
}

func (e *fakeEngine) Compact(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compacts++
	return e.compactErr
}

func (e *fakeEngine) compactCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.compacts
}
