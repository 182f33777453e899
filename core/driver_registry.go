package core

import (
	"errors"

	"cetimer/dtree"

	"golang.org/x/exp/slices"
)

// DeviceType identifies the class of a registered device
type DeviceType uint8

const (
	DeviceTypeClockEvent DeviceType = iota
	DeviceTypeClockSource
	DeviceTypeCustom
)

// Driver is the lifecycle contract every hardware driver implements.
// The registry holds drivers behind this interface and calls Probe once
// per matching configuration node.
type Driver interface {
	// Name is matched against the driver part of a node name ("name@id")
	Name() string

	// Probe creates a device from a configuration node.
	// On failure Probe must release everything it acquired and return nil.
	Probe(node dtree.Node) (*Device, error)

	// Remove tears down a device returned by Probe
	Remove(dev *Device)

	Suspend(dev *Device)
	Resume(dev *Device)
}

// Device represents a registered device instance
type Device struct {
	Name   string     // Unique device name
	Type   DeviceType // Device class
	Driver Driver     // Owning driver
	Priv   any        // Class-specific object (e.g. *clockevent.ClockEvent)
}

var (
	ErrDriverNil       = errors.New("driver is nil")
	ErrDriverName      = errors.New("driver name is required")
	ErrDriverExists    = errors.New("driver name already registered")
	ErrDriverNotFound  = errors.New("driver not found")
	ErrDeviceNil       = errors.New("device is nil")
	ErrDeviceName      = errors.New("device name is required")
	ErrDeviceExists    = errors.New("device name already registered")
	ErrDeviceNotFound  = errors.New("device not found")
	ErrNoMatchingProbe = errors.New("no driver matches node")
)

// Registry tracks drivers, devices and allocated device names
type Registry struct {
	drivers     map[string]Driver
	driverOrder []string
	devices     map[string]*Device
	deviceOrder []string
	names       map[string]bool
}

// Global registry used by firmware code
var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		drivers: make(map[string]Driver),
		devices: make(map[string]*Device),
		names:   make(map[string]bool),
	}
}

// Default returns the global registry
func Default() *Registry {
	return globalRegistry
}

// RegisterDriver registers a driver with the global registry
func RegisterDriver(drv Driver) error {
	return globalRegistry.RegisterDriver(drv)
}

// UnregisterDriver removes a driver from the global registry
func UnregisterDriver(drv Driver) error {
	return globalRegistry.UnregisterDriver(drv)
}

// RegisterDriver adds a driver. Driver names must be unique.
func (r *Registry) RegisterDriver(drv Driver) error {
	if drv == nil {
		return ErrDriverNil
	}
	name := drv.Name()
	if name == "" {
		return ErrDriverName
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	if _, exists := r.drivers[name]; exists {
		return ErrDriverExists
	}
	r.drivers[name] = drv
	r.driverOrder = append(r.driverOrder, name)
	return nil
}

// UnregisterDriver removes every device the driver owns, newest first,
// and then the driver itself.
func (r *Registry) UnregisterDriver(drv Driver) error {
	if drv == nil {
		return ErrDriverNil
	}
	name := drv.Name()
	if _, exists := r.drivers[name]; !exists {
		return ErrDriverNotFound
	}

	for i := len(r.deviceOrder) - 1; i >= 0; i-- {
		dev := r.devices[r.deviceOrder[i]]
		if dev != nil && dev.Driver == drv {
			drv.Remove(dev)
		}
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	delete(r.drivers, name)
	if i := slices.Index(r.driverOrder, name); i >= 0 {
		r.driverOrder = slices.Delete(r.driverOrder, i, i+1)
	}
	return nil
}

// SearchDriver retrieves a registered driver by name
func (r *Registry) SearchDriver(name string) (Driver, bool) {
	drv, exists := r.drivers[name]
	return drv, exists
}

// RegisterDevice adds a device. The device name must be unique.
func (r *Registry) RegisterDevice(dev *Device) error {
	if dev == nil {
		return ErrDeviceNil
	}
	if dev.Name == "" {
		return ErrDeviceName
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	if _, exists := r.devices[dev.Name]; exists {
		return ErrDeviceExists
	}
	r.devices[dev.Name] = dev
	r.deviceOrder = append(r.deviceOrder, dev.Name)
	return nil
}

// UnregisterDevice removes a device from the registry
func (r *Registry) UnregisterDevice(dev *Device) error {
	if dev == nil {
		return ErrDeviceNil
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	if r.devices[dev.Name] != dev {
		return ErrDeviceNotFound
	}
	delete(r.devices, dev.Name)
	if i := slices.Index(r.deviceOrder, dev.Name); i >= 0 {
		r.deviceOrder = slices.Delete(r.deviceOrder, i, i+1)
	}
	return nil
}

// SearchDevice finds a device by name and type
func (r *Registry) SearchDevice(name string, typ DeviceType) (*Device, bool) {
	dev, exists := r.devices[name]
	if !exists || dev.Type != typ {
		return nil, false
	}
	return dev, true
}

// ListDevices returns all devices of a type in registration order
func (r *Registry) ListDevices(typ DeviceType) []*Device {
	var out []*Device
	for _, name := range r.deviceOrder {
		if dev := r.devices[name]; dev.Type == typ {
			out = append(out, dev)
		}
	}
	return out
}

// AllocDeviceName reserves a unique device name of the form "name.id".
// A negative id picks the lowest free id.
func (r *Registry) AllocDeviceName(name string, id int) (string, error) {
	if name == "" {
		return "", ErrDeviceName
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	if id >= 0 {
		full := name + "." + itoa(id)
		if r.names[full] {
			return "", ErrDeviceExists
		}
		r.names[full] = true
		return full, nil
	}

	for i := 0; ; i++ {
		full := name + "." + itoa(i)
		if !r.names[full] {
			r.names[full] = true
			return full, nil
		}
	}
}

// FreeDeviceName releases a name returned by AllocDeviceName
func (r *Registry) FreeDeviceName(name string) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	delete(r.names, name)
}

// NameAllocated reports whether a device name is currently reserved
func (r *Registry) NameAllocated(name string) bool {
	return r.names[name]
}

// ProbeNode hands a configuration node to the driver named by the node.
func (r *Registry) ProbeNode(node dtree.Node) (*Device, error) {
	drv, exists := r.drivers[dtree.ReadName(node)]
	if !exists {
		return nil, ErrNoMatchingProbe
	}

	dev, err := drv.Probe(node)
	if err != nil {
		DebugPrintln("[PROBE] " + node.Name() + " failed: " + err.Error())
		return nil, err
	}
	DebugPrintln("[PROBE] " + node.Name() + " -> " + dev.Name)
	return dev, nil
}

// ProbeTree probes every node and returns the devices that were created.
// Nodes without a matching driver or that fail to probe are skipped.
func (r *Registry) ProbeTree(nodes []dtree.Node) []*Device {
	var devs []*Device
	for _, n := range nodes {
		if dev, err := r.ProbeNode(n); err == nil {
			devs = append(devs, dev)
		}
	}
	return devs
}

// SuspendAll suspends devices in reverse registration order
func (r *Registry) SuspendAll() {
	for i := len(r.deviceOrder) - 1; i >= 0; i-- {
		dev := r.devices[r.deviceOrder[i]]
		if dev.Driver != nil {
			dev.Driver.Suspend(dev)
		}
	}
}

// ResumeAll resumes devices in registration order
func (r *Registry) ResumeAll() {
	for _, name := range r.deviceOrder {
		dev := r.devices[name]
		if dev.Driver != nil {
			dev.Driver.Resume(dev)
		}
	}
}
