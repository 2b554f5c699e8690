package rnbo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peragwin/vuzicscene/audio/fft"
	"github.com/peragwin/vuzicscene/control"
)

const testPatch = `{"desc":{"meta":{"rnboversion":"1.3.4"},"numOutputChannels":4},"src":[]}`

func TestCheckVersion(t *testing.T) {
	cases := []struct {
		version string
		err     error
	}{
		{"1.3.4", nil},
		{"1.3.4-beta.1", nil},
		{"1.3.4-dev", ErrDebugBuild},
		{"12.0.10-dev", ErrDebugBuild},
		{"", ErrNoPatchVersion},
	}
	for _, c := range cases {
		err := CheckVersion(c.version)
		if c.err == nil {
			assert.NoError(t, err, c.version)
		} else {
			assert.ErrorIs(t, err, c.err, c.version)
		}
	}
}

func TestParsePatcher(t *testing.T) {
	p, err := ParsePatcher([]byte(testPatch))
	require.NoError(t, err)
	assert.Equal(t, "1.3.4", p.Version())
	assert.Equal(t, 4, p.Desc.NumOutputChannels)
	assert.JSONEq(t, testPatch, string(p.Raw))

	_, err = ParsePatcher([]byte("{"))
	assert.Error(t, err)
}

func TestRebaseDependencies(t *testing.T) {
	deps := []Dependency{{ID: "a", File: "media/a.wav"}, {ID: "b", URL: "http://x/b.wav"}}
	out := RebaseDependencies(deps, "six/")
	assert.Equal(t, "six/media/a.wav", out[0].File)
	assert.Equal(t, "", out[1].File)
	assert.Equal(t, "media/a.wav", deps[0].File)
}

func TestLoadDependenciesTolerant(t *testing.T) {
	dir := t.TempDir()
	assert.Nil(t, LoadDependencies(context.Background(), nil, filepath.Join(dir, "missing.json"), ""))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("not json"), 0o644))
	assert.Nil(t, LoadDependencies(context.Background(), nil, bad, ""))

	good := filepath.Join(dir, "deps.json")
	require.NoError(t, os.WriteFile(good, []byte(`[{"id":"kick","file":"kick.wav"}]`), 0o644))
	deps := LoadDependencies(context.Background(), nil, good, "six/")
	require.Len(t, deps, 1)
	assert.Equal(t, "six/kick.wav", deps[0].File)
}

func TestParseScalar(t *testing.T) {
	v, err := parseScalar([]byte(" 3 "))
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)
	v, err = parseScalar([]byte("[0.25, 1]"))
	require.NoError(t, err)
	assert.Equal(t, 0.25, v)
	_, err = parseScalar([]byte("loud"))
	assert.Error(t, err)
	assert.Equal(t, "six", lastSegment("vuzic/messages/six"))
}

func TestRuntimeInstaller(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/rnbo/1.3.4/rnbo.min.js" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("runtime"))
	}))
	defer srv.Close()

	inst, err := NewRuntimeInstaller(srv.URL+"/rnbo/", t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/rnbo/1.3.4/rnbo.min.js", inst.RuntimeURL("1.3.4"))

	path, err := inst.Ensure(context.Background(), "1.3.4")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "runtime", string(data))

	// second call hits the cache
	_, err = inst.Ensure(context.Background(), "1.3.4")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	_, err = inst.Ensure(context.Background(), "9.9.9")
	assert.Error(t, err)
	_, err = inst.Ensure(context.Background(), "1.3.4-dev")
	assert.ErrorIs(t, err, ErrDebugBuild)
}

type fakeLink struct {
	requests []*Request
	fail     error
	msgs     chan control.Message
	params   chan control.ParamChange
	closed   bool
}

func newFakeLink() *fakeLink {
	return &fakeLink{
		msgs:   make(chan control.Message, 1),
		params: make(chan control.ParamChange, 1),
	}
}

func (f *fakeLink) Request(ctx context.Context, req *Request) error {
	f.requests = append(f.requests, req)
	return f.fail
}
func (f *fakeLink) Messages() <-chan control.Message   { return f.msgs }
func (f *fakeLink) Params() <-chan control.ParamChange { return f.params }
func (f *fakeLink) Close() error                       { f.closed = true; return nil }

func patchServer(t *testing.T, patch string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/patch.export.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(patch))
	})
	mux.HandleFunc("/dependencies.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"kick","file":"kick.wav"}]`))
	})
	mux.HandleFunc("/rnbo/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("runtime"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestBootstrap(t *testing.T) {
	srv := patchServer(t, testPatch)
	inst, err := NewRuntimeInstaller(srv.URL+"/rnbo", t.TempDir())
	require.NoError(t, err)

	link := newFakeLink()
	s, err := Bootstrap(context.Background(), &Config{
		PatchURL:        srv.URL + "/patch.export.json",
		DependenciesURL: srv.URL + "/dependencies.json",
		DependencyBase:  "six/",
		Analyser:        fft.DefaultAnalyserConfig,
		Installer:       inst,
		Factory: NewRemoteFactory(func(context.Context) (Link, error) {
			return link, nil
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, 4, s.Channels())
	assert.Len(t, s.Analysers, 2)
	assert.NotNil(t, s.Tap(2))
	assert.NotNil(t, s.Tap(3))
	assert.Nil(t, s.Tap(0))

	require.Len(t, link.requests, 2)
	assert.Equal(t, RequestCreate, link.requests[0].Type)
	assert.Equal(t, inst.Path("1.3.4"), link.requests[0].Runtime)
	assert.Equal(t, RequestDependencies, link.requests[1].Type)
	assert.Equal(t, "six/kick.wav", link.requests[1].Dependencies[0].File)
}

func TestBootstrapFailures(t *testing.T) {
	dev := strings.Replace(testPatch, "1.3.4", "1.3.4-dev", 1)
	srv := patchServer(t, dev)
	factory := func(context.Context, DeviceOptions) (Device, error) {
		t.Fatal("device created for a debug build")
		return nil, nil
	}
	_, err := Bootstrap(context.Background(), &Config{
		PatchURL: srv.URL + "/patch.export.json",
		Factory:  factory,
	})
	assert.ErrorIs(t, err, ErrDebugBuild)

	_, err = Bootstrap(context.Background(), &Config{
		PatchURL: srv.URL + "/missing.json",
		Factory:  factory,
	})
	assert.Error(t, err)

	good := patchServer(t, testPatch)
	link := newFakeLink()
	link.fail = errors.New("no such patch")
	_, err = Bootstrap(context.Background(), &Config{
		PatchURL: good.URL + "/patch.export.json",
		Factory: NewRemoteFactory(func(context.Context) (Link, error) {
			return link, nil
		}),
	})
	assert.Error(t, err)
	assert.True(t, link.closed)
}

func TestWebSocketLink(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var req Request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		conn.WriteJSON(map[string]interface{}{"type": "message", "tag": "six", "payload": 3})
		conn.WriteJSON(map[string]interface{}{"type": "parameter", "name": "Key 1", "value": 0.5})
		conn.WriteJSON(map[string]interface{}{"type": "ready"})
		// wait for the client to hang up
		conn.ReadMessage()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	link, err := DialWebSocket(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer link.Close()

	d, err := NewRemoteDevice(ctx, link, DeviceOptions{Patcher: &Patcher{Raw: []byte(testPatch)}, Channels: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, d.OutputChannels())

	select {
	case m := <-d.Messages():
		assert.Equal(t, control.Message{Tag: "six", Payload: 3}, m)
	case <-ctx.Done():
		t.Fatal("no message")
	}
	select {
	case p := <-d.Params():
		assert.Equal(t, control.ParamChange{Name: "Key 1", Value: 0.5}, p)
	case <-ctx.Done():
		t.Fatal("no parameter")
	}
}

func TestWebSocketLinkLost(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		// drop the runner before it answers
		conn.ReadMessage()
		conn.Close()
	}))
	defer srv.Close()

	link, err := DialWebSocket(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)
	defer link.Close()

	errc := make(chan error, 1)
	go func() {
		errc <- link.Request(context.Background(), &Request{Type: RequestCreate})
	}()
	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrLinkClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("request outlived the connection")
	}

	// later requests fail as well
	err = link.Request(context.Background(), &Request{Type: RequestDependencies})
	assert.Error(t, err)

	_, ok := <-link.Messages()
	assert.False(t, ok)
}
