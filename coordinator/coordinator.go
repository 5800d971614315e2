// Package coordinator keeps a polled cache of the wall controller's state
// document and fires events when watched fields change. All commands to the
// device also flow through it so the cache stays consistent.
package coordinator

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"advantageair2mqtt/aa"
)

// Device is the transport to the wall controller
type Device interface {
	GetSystemData(ctx context.Context) (*aa.SystemData, error)
	SetAircon(ctx context.Context, req aa.Request) error
}

// Config contains the configuration parameters for a new Coordinator instance
type Config struct {
	Device Device
}

// Coordinator represents a cache of the controller state document
type Coordinator struct {
	Config
	data      *aa.SystemData               // current view of the controller state
	flat      map[string]string            // flattened view used for diffing
	callbacks map[string]func(path string) // set of callbacks, keyed by field path
	lock      *sync.RWMutex
}

var ErrUninitialized = errors.New("state uninitialized, call Poll() first")

// New returns a new Coordinator instance
func New(config *Config) *Coordinator {
	return &Coordinator{
		Config:    *config,
		callbacks: make(map[string]func(path string)),
		lock:      &sync.RWMutex{},
	}
}

// RegisterCallback registers a callback that fires when the field at the
// given path changes value. Paths follow SystemData.Flatten, e.g.
// "ac1/info/mode" or "ac1/zones/z01/state".
func (c *Coordinator) RegisterCallback(path string, callback func(path string)) {
	c.callbacks[path] = callback
}

// Poll refreshes the cache from the device and fires callbacks for every
// watched field that changed. On the first poll all watched fields fire.
func (c *Coordinator) Poll(ctx context.Context) error {
	start := time.Now()
	newData, err := c.Device.GetSystemData(ctx)
	pollDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		pollErrors.Inc()
		return err
	}
	polls.Inc()
	lastPollSuccess.SetToCurrentTime()

	c.lock.Lock()
	oldFlat := c.flat
	c.data = newData
	c.flat = newData.Flatten()
	first := oldFlat == nil
	var changed []string
	for path := range c.callbacks {
		if first || oldFlat[path] != c.flat[path] {
			changed = append(changed, path)
		}
	}
	c.lock.Unlock()

	c.fire(changed)
	return nil
}

// Data returns the cached state document. Reading before the first
// successful Poll is a programming error.
func (c *Coordinator) Data() *aa.SystemData {
	c.lock.RLock()
	defer c.lock.RUnlock()
	if c.data == nil {
		panic(ErrUninitialized)
	}
	return c.data
}

// Aircon sends a change request to the device and, once acknowledged,
// applies it to the cache and fires the affected callbacks. The next poll
// confirms the final state.
func (c *Coordinator) Aircon(ctx context.Context, req aa.Request) error {
	err := c.Device.SetAircon(ctx, req)
	if err != nil {
		commandErrors.Inc()
		return err
	}
	commands.Inc()

	c.lock.Lock()
	var changed []string
	if c.data != nil {
		c.data.Apply(req)
		newFlat := c.data.Flatten()
		for path := range c.callbacks {
			if c.flat[path] != newFlat[path] {
				changed = append(changed, path)
			}
		}
		c.flat = newFlat
	}
	c.lock.Unlock()

	c.fire(changed)
	return nil
}

// TriggerCallbacks fires all registered callbacks with the current state
func (c *Coordinator) TriggerCallbacks() {
	var paths []string
	for path := range c.callbacks {
		paths = append(paths, path)
	}
	c.fire(paths)
}

func (c *Coordinator) fire(paths []string) {
	sort.Strings(paths)
	for _, path := range paths {
		callback := c.callbacks[path]
		if callback != nil {
			callback(path)
		}
	}
}
