package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/golang/glog"
	"github.com/gordonklaus/portaudio"

	"github.com/peragwin/vuzicscene/audio"
	"github.com/peragwin/vuzicscene/control"
	"github.com/peragwin/vuzicscene/engine"
	"github.com/peragwin/vuzicscene/gfx"
	"github.com/peragwin/vuzicscene/gfx/preview"
)

var (
	width  = flag.Int("width", 1200, "width of window")
	height = flag.Int("height", 800, "height of window")

	headless    = flag.Bool("headless", false, "run without initializing OpenGL display")
	configPath  = flag.String("config", "scene.toml", "scene and audio configuration file")
	httpAddr    = flag.String("http", ":8080", "address of the automation API, empty to disable")
	frameRate   = flag.Int("frame-rate", 30, "frame rate to target when running headless")
	snapshot    = flag.String("snapshot", "", "headless: write the preview to this PNG file")
	snapEvery   = flag.Duration("snapshot-every", time.Second, "headless: interval between snapshots")
	listDevices = flag.Bool("list-devices", false, "print audio devices and exit")
	noAudio     = flag.Bool("no-audio", false, "skip the audio device bootstrap")
)

func init() {
	// glfw and opengl calls must come from the main thread
	runtime.LockOSThread()
}

func printDevices() {
	if err := portaudio.Initialize(); err != nil {
		glog.Fatal("initializing portaudio: ", err)
	}
	defer portaudio.Terminate()
	if err := audio.PrintDevices(); err != nil {
		glog.Fatal(err)
	}
}

// checkFlags rejects values the render loops cannot run with.
func checkFlags(frameRate, width, height int, snapEvery time.Duration) error {
	if frameRate < 1 || frameRate > 1000 {
		return fmt.Errorf("-frame-rate %d not in [1, 1000]", frameRate)
	}
	if width < 1 || height < 1 {
		return fmt.Errorf("bad size %dx%d", width, height)
	}
	if snapEvery <= 0 {
		return fmt.Errorf("-snapshot-every %v must be positive", snapEvery)
	}
	return nil
}

func main() {
	flag.Parse()
	defer glog.Flush()

	if err := checkFlags(*frameRate, *width, *height, *snapEvery); err != nil {
		glog.Fatal(err)
	}

	if *listDevices {
		printDevices()
		return
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		glog.Fatal(err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	done := make(chan struct{})
	defer close(done)

	automation, err := control.NewAutomation(control.DefaultParameters)
	if err != nil {
		glog.Fatal(err)
	}
	e, r, err := build(ctx, cfg, automation)
	if err != nil {
		glog.Fatal("error building scene: ", err)
	}

	actx := audio.NewContext()
	if !*noAudio && cfg.Audio.Patch != "" {
		go startAudio(ctx, done, cfg.Audio, e, actx, r)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", control.NewHandler(automation))

	if *headless {
		// nothing to click
		actx.Resume()
		p := preview.New(e, *width, *height)
		mux.Handle("/preview.png", p)
		serve(mux)
		runHeadless(ctx, e, p)
		return
	}

	serve(mux)
	runWindow(ctx, e, actx)
}

func serve(mux *http.ServeMux) {
	if *httpAddr == "" {
		return
	}
	go func() {
		glog.Infof("serving automation api on %s", *httpAddr)
		if err := http.ListenAndServe(*httpAddr, mux); err != nil {
			glog.Errorf("http server: %v", err)
		}
	}()
}

func runWindow(ctx context.Context, e *engine.Engine, actx *audio.Context) {
	var renderer *gfx.Renderer
	c, err := gfx.NewContext(ctx, &gfx.WindowConfig{
		Width:  *width,
		Height: *height,
		Title:  "vuzicscene",
		OnResize: func(w, h int) {
			if renderer == nil {
				return
			}
			if err := renderer.Resize(w, h); err != nil {
				glog.Errorf("resize: %v", err)
			}
		},
		OnClick: actx.Resume,
	})
	if err != nil {
		glog.Fatal("error creating display: ", err)
	}
	defer c.Terminate()

	renderer, err = gfx.NewRenderer(c, e)
	if err != nil {
		glog.Fatal("error creating renderer: ", err)
	}

	start := time.Now()
	last := start
	c.EventLoop(func(*gfx.Context) {
		now := time.Now()
		e.Tick(float32(now.Sub(start).Seconds()), float32(now.Sub(last).Seconds()))
		last = now
		renderer.Render()
	})
}

func runHeadless(ctx context.Context, e *engine.Engine, p *preview.Preview) {
	ticker := time.NewTicker(time.Second / time.Duration(*frameRate))
	defer ticker.Stop()
	var snaps <-chan time.Time
	if *snapshot != "" {
		t := time.NewTicker(*snapEvery)
		defer t.Stop()
		snaps = t.C
	}

	start := time.Now()
	last := start
	for {
		select {
		case <-ctx.Done():
			if *snapshot != "" {
				if err := p.Snapshot(*snapshot); err != nil {
					glog.Error(err)
				}
			}
			return
		case now := <-ticker.C:
			e.Tick(float32(now.Sub(start).Seconds()), float32(now.Sub(last).Seconds()))
			last = now
			p.Render()
		case <-snaps:
			if err := p.Snapshot(*snapshot); err != nil {
				glog.Error(err)
			}
		}
	}
}
