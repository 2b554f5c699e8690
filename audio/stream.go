package audio

import (
	"context"
	"fmt"

	"github.com/golang/glog"
	"github.com/gordonklaus/portaudio"
)

// Config represents a config that is used to open a new Stream.
type Config struct {
	// BlockSize refers to the buffer size for each block
	BlockSize int
	// Channels is the number of input channels captured from the device.
	Channels int
	// OutputChannels are copied from the first input channels to the audible
	// output. Zero disables playback.
	OutputChannels int
	// SampleRate is the sample rate (Fs).
	SampleRate float64
	// Device selects an input device by name. Empty uses the default device.
	Device string
}

// NewSource opens a duplex portaudio stream and returns a channel of
// interleaved input frames. While actx is suspended the output is silent and
// no frames are delivered.
func NewSource(ctx context.Context, cfg *Config, actx *Context) (<-chan []float32, <-chan error) {
	out := make(chan []float32, 4)
	errc := make(chan error, 1)
	done := ctx.Done()

	go func() {
		defer close(out)

		if err := portaudio.Initialize(); err != nil {
			errc <- fmt.Errorf("initializing portaudio: %w", err)
			return
		}
		defer portaudio.Terminate()

		params, err := streamParameters(cfg)
		if err != nil {
			errc <- err
			return
		}

		in := make([]float32, cfg.BlockSize*cfg.Channels)
		var play []float32
		args := []interface{}{in}
		if cfg.OutputChannels > 0 {
			play = make([]float32, cfg.BlockSize*cfg.OutputChannels)
			args = append(args, play)
		}
		stream, err := portaudio.OpenStream(params, args...)
		if err != nil {
			errc <- fmt.Errorf("opening stream: %w", err)
			return
		}
		defer stream.Close()
		if err := stream.Start(); err != nil {
			errc <- fmt.Errorf("starting stream: %w", err)
			return
		}

		for {
			select {
			case <-done:
				return
			default:
			}

			if err := stream.Read(); err != nil {
				errc <- fmt.Errorf("reading from stream: %w", err)
				return
			}

			suspended := actx.Suspended()
			if play != nil {
				mix(play, in, cfg.Channels, cfg.OutputChannels, suspended)
				if err := stream.Write(); err != nil {
					errc <- fmt.Errorf("writing to stream: %w", err)
					return
				}
			}
			if suspended {
				continue
			}

			frame := make([]float32, len(in))
			copy(frame, in)
			select {
			case out <- frame:
			default:
				glog.Warning("input buffer overrun, frame was dropped")
			}
		}
	}()

	return out, errc
}

// mix copies the first outCh of inCh interleaved channels into play.
func mix(play, in []float32, inCh, outCh int, silent bool) {
	frames := len(play) / outCh
	for i := 0; i < frames; i++ {
		for c := 0; c < outCh; c++ {
			if silent || c >= inCh {
				play[i*outCh+c] = 0
				continue
			}
			play[i*outCh+c] = in[i*inCh+c]
		}
	}
}

func streamParameters(cfg *Config) (portaudio.StreamParameters, error) {
	var input *portaudio.DeviceInfo
	var err error
	if cfg.Device == "" {
		input, err = portaudio.DefaultInputDevice()
	} else {
		input, err = FindDevice(cfg.Device)
	}
	if err != nil {
		return portaudio.StreamParameters{}, fmt.Errorf("input device: %w", err)
	}
	var output *portaudio.DeviceInfo
	if cfg.OutputChannels > 0 {
		if output, err = portaudio.DefaultOutputDevice(); err != nil {
			return portaudio.StreamParameters{}, fmt.Errorf("output device: %w", err)
		}
	}

	p := portaudio.HighLatencyParameters(input, output)
	p.Input.Channels = cfg.Channels
	if output != nil {
		p.Output.Channels = cfg.OutputChannels
	}
	p.SampleRate = cfg.SampleRate
	p.FramesPerBuffer = cfg.BlockSize
	return p, nil
}
