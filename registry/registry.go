// Package registry tracks the devices found on a shared 1-Wire bus.
//
// Devices live in a fixed arena and are referenced by a slot Handle.
// A device that stops answering is only reported absent after it misses
// EvictionThreshold consecutive scans, so a single glitched search does
// not flap it on and off the protocol stream.
//
// Absent devices keep their slot until the arena is full. A new address
// that finds no free slot takes over the absent slot with the highest
// MissingCount, the lowest handle winning ties. A device evicted during a
// Reconcile call only becomes reusable on the next call.
package registry

import (
	"errors"

	"kegboard/core"
	"kegboard/onewire"
	"kegboard/thermo"
)

const (
	// MaxDevices is the arena size
	MaxDevices = 8

	// DefaultEvictionThreshold is the number of consecutive missed scans
	// after which a device is marked absent
	DefaultEvictionThreshold = 3
)

// ErrRegistryFull is reported when a discovered device cannot be tracked.
// Already tracked devices are unaffected.
var ErrRegistryFull = errors.New("device registry full")

// Handle identifies a registry slot. The handle of a present device is
// stable, but once the device is absent its slot may be rebound to a
// different address.
type Handle uint8

// Entry is one tracked device
type Entry struct {
	Address      onewire.Address
	MissingCount uint8 // consecutive scans without a response
	Present      bool
	Sensor       thermo.Sensor
}

// Config controls registry capacity and eviction
type Config struct {
	Capacity          int           `yaml:"capacity"`
	EvictionThreshold uint8         `yaml:"eviction_threshold"`
	Sensor            thermo.Config `yaml:"sensor"`
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 || c.Capacity > MaxDevices {
		c.Capacity = MaxDevices
	}
	if c.EvictionThreshold == 0 {
		c.EvictionThreshold = DefaultEvictionThreshold
	}
	return c
}

// Changes describes what one Reconcile call did. The handle slices are
// owned by the registry and are only valid until the next Reconcile.
type Changes struct {
	Appeared []Handle // new or returning devices
	Vanished []Handle // devices that crossed the eviction threshold
	Dropped  int      // discovered devices that did not fit
	Err      error    // ErrRegistryFull when Dropped > 0
}

// Empty reports whether nothing changed
func (c Changes) Empty() bool {
	return len(c.Appeared) == 0 && len(c.Vanished) == 0 && c.Dropped == 0
}

// Stats are cumulative counters for diagnostics
type Stats struct {
	Scans      uint32
	ScanErrors uint32
	Dropped    uint32
}

// Registry is a fixed-capacity cache of devices seen on one bus.
// It is owned by the main loop and not safe for concurrent use.
type Registry struct {
	bus onewire.Bus
	cfg Config

	entries [MaxDevices]Entry
	n       int

	seen     [MaxDevices]bool
	found    [2 * MaxDevices]onewire.Address
	appeared [MaxDevices]Handle
	vanished [MaxDevices]Handle

	stats Stats
}

// New creates an empty registry for bus
func New(bus onewire.Bus, cfg Config) *Registry {
	return &Registry{
		bus: bus,
		cfg: cfg.withDefaults(),
	}
}

// Config returns the effective configuration
func (r *Registry) Config() Config {
	return r.cfg
}

// Scan searches the bus and reconciles the result. A failed search
// leaves the registry untouched.
func (r *Registry) Scan() (Changes, error) {
	r.stats.Scans++
	found, err := r.bus.Search(r.found[:0])
	if err != nil {
		r.stats.ScanErrors++
		return Changes{}, err
	}
	return r.Reconcile(found), nil
}

// Reconcile updates presence bookkeeping from one scan result.
//
// Tracked devices in discovered have their miss count cleared and are
// marked present again. Tracked devices not in discovered have their
// miss count incremented, and a present device whose count reaches the
// eviction threshold is marked absent and its sensor reset. Untracked
// addresses are appended in discovery order while there is room; when
// the registry is full they reuse an absent slot, and are dropped and
// counted only when every slot holds a present device.
// Repeated addresses within one call count once.
func (r *Registry) Reconcile(discovered []onewire.Address) Changes {
	var c Changes
	appeared := r.appeared[:0]
	vanished := r.vanished[:0]

	for i := range r.seen {
		r.seen[i] = false
	}

	for i, addr := range discovered {
		if seenBefore(discovered[:i], addr) {
			continue
		}

		if h, ok := r.Lookup(addr); ok {
			e := &r.entries[h]
			r.seen[h] = true
			e.MissingCount = 0
			if !e.Present {
				e.Present = true
				e.Sensor.Bind(r.bus, addr, r.cfg.Sensor)
				appeared = append(appeared, h)
				core.RecordEvent(core.EvtDeviceAppeared, uint8(h), 0, 0)
			}
			continue
		}

		var h Handle
		if r.n < r.cfg.Capacity {
			h = Handle(r.n)
			r.n++
		} else if victim, ok := r.reusable(); ok {
			h = victim
			core.DebugPrintln("[REGISTRY] slot " + core.Itoa(int(h)) + " reused by " + addr.String())
		} else {
			c.Dropped++
			r.stats.Dropped++
			core.RecordEvent(core.EvtRegistryFull, uint8(r.n), 0, uint32(c.Dropped))
			core.DebugPrintln("[REGISTRY] full, dropped " + addr.String())
			continue
		}

		e := &r.entries[h]
		*e = Entry{Address: addr, Present: true}
		e.Sensor.Bind(r.bus, addr, r.cfg.Sensor)
		r.seen[h] = true
		appeared = append(appeared, h)
		core.RecordEvent(core.EvtDeviceAppeared, uint8(h), 0, 0)
	}

	for h := 0; h < r.n; h++ {
		if r.seen[h] {
			continue
		}
		e := &r.entries[h]
		if e.MissingCount < 0xFF {
			e.MissingCount++
		}
		if e.Present && e.MissingCount >= r.cfg.EvictionThreshold {
			e.Present = false
			e.Sensor.Reset()
			vanished = append(vanished, Handle(h))
			core.RecordEvent(core.EvtDeviceVanished, uint8(h), 0, uint32(e.MissingCount))
		}
	}

	if len(appeared) > 0 {
		c.Appeared = appeared
	}
	if len(vanished) > 0 {
		c.Vanished = vanished
	}
	if c.Dropped > 0 {
		c.Err = ErrRegistryFull
	}
	return c
}

// reusable picks the absent slot that has been missing longest
func (r *Registry) reusable() (Handle, bool) {
	best := -1
	for i := 0; i < r.n; i++ {
		e := &r.entries[i]
		if e.Present || r.seen[i] {
			continue
		}
		if best < 0 || e.MissingCount > r.entries[best].MissingCount {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return Handle(best), true
}

func seenBefore(addrs []onewire.Address, addr onewire.Address) bool {
	for _, a := range addrs {
		if a == addr {
			return true
		}
	}
	return false
}

// Lookup finds the handle of a tracked address
func (r *Registry) Lookup(addr onewire.Address) (Handle, bool) {
	for i := 0; i < r.n; i++ {
		if r.entries[i].Address == addr {
			return Handle(i), true
		}
	}
	return 0, false
}

// Get returns the entry for h, or nil if h is not in use
func (r *Registry) Get(h Handle) *Entry {
	if int(h) >= r.n {
		return nil
	}
	return &r.entries[h]
}

// Each calls fn for every tracked entry in insertion order until fn
// returns false
func (r *Registry) Each(fn func(h Handle, e *Entry) bool) {
	for i := 0; i < r.n; i++ {
		if !fn(Handle(i), &r.entries[i]) {
			return
		}
	}
}

// Len returns the number of tracked devices, present or not
func (r *Registry) Len() int {
	return r.n
}

// PresentCount returns the number of present devices
func (r *Registry) PresentCount() int {
	count := 0
	for i := 0; i < r.n; i++ {
		if r.entries[i].Present {
			count++
		}
	}
	return count
}

// Stats returns cumulative counters
func (r *Registry) Stats() Stats {
	return r.stats
}
