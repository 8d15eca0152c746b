// Package di assembles the swapd daemon from its configuration.
package di

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Container is the dependency injection container.
// It manages service registration and resolution.
type Container struct {
	mu       sync.RWMutex
	services map[string]interface{}
	builders map[string]Builder
	building map[string]bool
	closers  []namedCloser
}

type namedCloser struct {
	name   string
	closer io.Closer
}

// Builder is a function that creates a service instance.
type Builder func(c *Container) (interface{}, error)

// ErrCycle is returned when a builder depends on itself.
var ErrCycle = errors.New("dependency cycle")

// New creates a new dependency injection container.
func New() *Container {
	return &Container{
		services: make(map[string]interface{}),
		builders: make(map[string]Builder),
		building: make(map[string]bool),
	}
}

// Register registers a service instance.
func (c *Container) Register(name string, service interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[name] = service
}

// RegisterBuilder registers a builder function for lazy instantiation.
func (c *Container) RegisterBuilder(name string, builder Builder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builders[name] = builder
}

// Get retrieves a service by name, building it on first use. Builders run
// without the container lock held so they may resolve their own
// dependencies.
func (c *Container) Get(name string) (interface{}, error) {
	c.mu.Lock()
	if service, exists := c.services[name]; exists {
		c.mu.Unlock()
		return service, nil
	}
	builder, hasBuilder := c.builders[name]
	if !hasBuilder {
		c.mu.Unlock()
		return nil, errors.New("service not found: " + name)
	}
	if c.building[name] {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrCycle, name)
	}
	c.building[name] = true
	c.mu.Unlock()

	service, err := builder(c)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.building, name)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", name, err)
	}
	c.services[name] = service
	if closer, ok := service.(io.Closer); ok && closer != nil {
		c.closers = append(c.closers, namedCloser{name: name, closer: closer})
	}
	return service, nil
}

// MustGet retrieves a service or panics if not found.
func (c *Container) MustGet(name string) interface{} {
	service, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return service
}

// Has checks if a service is registered.
func (c *Container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, exists := c.services[name]
	if exists {
		return true
	}
	_, exists = c.builders[name]
	return exists
}

// Close closes every built service implementing io.Closer, most recently
// built first, and forgets them.
func (c *Container) Close() error {
	c.mu.Lock()
	closers := c.closers
	c.closers = nil
	c.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", closers[i].name, err))
		}
	}
	return errors.Join(errs...)
}

// Service names constants for type-safe access.
const (
	ServiceConfig    = "config"
	ServiceLogger    = "logger"
	ServiceStorage   = "storage.manager"
	ServiceStateDB   = "storage.state"
	ServiceJournal   = "journal"
	ServiceTxStore   = "storage.txs"
	ServiceHub       = "rpc.hub"
	ServiceSink      = "event.sink"
	ServiceLedger    = "ledger"
	ServiceRPCServer = "rpc.server"
	ServiceGRPC      = "grpc.server"
)
