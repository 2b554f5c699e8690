package scene

import (
	"context"
	"fmt"

	"github.com/golang/glog"
)

// AssetState is the state of an asynchronous load.
type AssetState int

// Asset states
const (
	Pending AssetState = iota
	Loaded
	Failed
)

func (s AssetState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("AssetState(%d)", int(s))
}

// Asset is the future result of loading one resource.
type Asset[T any] struct {
	name string
	done chan struct{}
	val  T
	err  error
}

// Load starts fn on its own goroutine and returns its future.
func Load[T any](ctx context.Context, name string, fn func(context.Context) (T, error)) *Asset[T] {
	a := &Asset[T]{name: name, done: make(chan struct{})}
	go func() {
		defer close(a.done)
		a.val, a.err = fn(ctx)
	}()
	return a
}

// Name is the resource the asset was loaded from.
func (a *Asset[T]) Name() string { return a.name }

// Poll returns the current state without blocking. The value and error are
// only meaningful once the state is not Pending.
func (a *Asset[T]) Poll() (T, AssetState, error) {
	select {
	case <-a.done:
		if a.err != nil {
			return a.val, Failed, a.err
		}
		return a.val, Loaded, nil
	default:
		var zero T
		return zero, Pending, nil
	}
}

// Wait blocks until the asset resolves or ctx is done.
func (a *Asset[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-a.done:
		return a.val, a.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Installer adds a resolved asset to the scene.
type Installer interface {
	Name() string
	// TryInstall reports whether the asset resolved. Loaded assets are
	// installed and failed ones logged, both exactly once.
	TryInstall() bool
}

type binding[T any] struct {
	asset   *Asset[T]
	install func(T)
}

// Bind returns an Installer that calls install with the loaded value.
func Bind[T any](a *Asset[T], install func(T)) Installer {
	return &binding[T]{asset: a, install: install}
}

func (b *binding[T]) Name() string { return b.asset.Name() }

func (b *binding[T]) TryInstall() bool {
	val, state, err := b.asset.Poll()
	switch state {
	case Loaded:
		b.install(val)
		glog.Infof("installed %s", b.asset.Name())
		return true
	case Failed:
		glog.Warningf("failed to load %s: %v", b.asset.Name(), err)
		return true
	}
	return false
}
