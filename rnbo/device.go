package rnbo

import (
	"context"
	"fmt"

	"github.com/peragwin/vuzicscene/control"
)

// Device is a running instance of a patch.
type Device interface {
	// OutputChannels is the number of audio channels the device produces.
	OutputChannels() int
	LoadDependencies(ctx context.Context, deps []Dependency) error
	Messages() <-chan control.Message
	Params() <-chan control.ParamChange
	Close() error
}

// DeviceOptions describe the device to create.
type DeviceOptions struct {
	Patcher  *Patcher
	Runtime  string
	Channels int
}

// Factory creates devices.
type Factory func(ctx context.Context, opts DeviceOptions) (Device, error)

// RemoteDevice is a device hosted by an external runner. Its audio reaches
// the visualizer through a capture device and its events through a Link.
type RemoteDevice struct {
	link     Link
	channels int
}

// NewRemoteFactory returns a Factory that dials a link per device.
func NewRemoteFactory(dial func(ctx context.Context) (Link, error)) Factory {
	return func(ctx context.Context, opts DeviceOptions) (Device, error) {
		link, err := dial(ctx)
		if err != nil {
			return nil, err
		}
		d, err := NewRemoteDevice(ctx, link, opts)
		if err != nil {
			link.Close()
			return nil, err
		}
		return d, nil
	}
}

// NewRemoteDevice asks the runner behind link to create the device.
func NewRemoteDevice(ctx context.Context, link Link, opts DeviceOptions) (*RemoteDevice, error) {
	if opts.Patcher == nil {
		return nil, fmt.Errorf("creating device: no patcher")
	}
	err := link.Request(ctx, &Request{
		Type:    RequestCreate,
		Patcher: opts.Patcher.Raw,
		Runtime: opts.Runtime,
	})
	if err != nil {
		return nil, fmt.Errorf("creating device: %w", err)
	}
	channels := opts.Channels
	if channels == 0 {
		channels = opts.Patcher.Desc.NumOutputChannels
	}
	return &RemoteDevice{link: link, channels: channels}, nil
}

// OutputChannels implements Device.
func (d *RemoteDevice) OutputChannels() int { return d.channels }

// LoadDependencies implements Device.
func (d *RemoteDevice) LoadDependencies(ctx context.Context, deps []Dependency) error {
	if len(deps) == 0 {
		return nil
	}
	return d.link.Request(ctx, &Request{Type: RequestDependencies, Dependencies: deps})
}

// Messages implements Device.
func (d *RemoteDevice) Messages() <-chan control.Message { return d.link.Messages() }

// Params implements Device.
func (d *RemoteDevice) Params() <-chan control.ParamChange { return d.link.Params() }

// Close implements Device.
func (d *RemoteDevice) Close() error { return d.link.Close() }
