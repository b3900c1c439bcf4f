package audio_device

import (
	"context"
	"fmt"

	"voice-assistant/logger"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

// Device reads from the default input device and writes to the default
// output device, one blocking stream at a time.
type Device struct {
	log          *logger.Logger
	audioRunning bool
}

func New(log *logger.Logger) *Device {
	if log == nil {
		log = logger.NewNop()
	}

	return &Device{log: log}
}

func (d *Device) initAudio() error {
	if !d.audioRunning {
		if err := portaudio.Initialize(); err != nil {
			return fmt.Errorf("initialize portaudio: %w", err)
		}

		d.audioRunning = true
	}

	return nil
}

// Close releases PortAudio. The device can be reused afterwards.
func (d *Device) Close() error {
	if !d.audioRunning {
		return nil
	}

	d.audioRunning = false

	if err := portaudio.Terminate(); err != nil {
		d.log.Errorw("error while freeing audio", "error", err)

		return err
	}

	return nil
}

// Capture records numSamples mono 16-bit samples at sampleRate.
func (d *Device) Capture(ctx context.Context, numSamples int, sampleRate int) ([]int16, error) {
	if numSamples <= 0 {
		return nil, fmt.Errorf("invalid sample count %d", numSamples)
	}

	if err := d.initAudio(); err != nil {
		return nil, err
	}

	in := make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), len(in), in)
	if err != nil {
		return nil, fmt.Errorf("open input stream: %w", err)
	}

	defer stream.Close()

	if err = stream.Start(); err != nil {
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	samples := make([]int16, 0, numSamples)

	for len(samples) < numSamples {
		if err = ctx.Err(); err != nil {
			_ = stream.Stop()

			return nil, err
		}

		if err = stream.Read(); err != nil {
			_ = stream.Stop()

			return nil, fmt.Errorf("read input stream: %w", err)
		}

		remaining := numSamples - len(samples)
		if remaining < len(in) {
			samples = append(samples, in[:remaining]...)
		} else {
			samples = append(samples, in...)
		}
	}

	if err = stream.Stop(); err != nil {
		return nil, fmt.Errorf("stop input stream: %w", err)
	}

	return samples, nil
}

// Play writes mono 16-bit samples to the default output device and blocks
// until they have been handed to the device.
func (d *Device) Play(ctx context.Context, samples []int16, sampleRate int) error {
	if len(samples) == 0 {
		return nil
	}

	if err := d.initAudio(); err != nil {
		return err
	}

	out := make([]int16, framesPerBuffer)

	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), len(out), out)
	if err != nil {
		return fmt.Errorf("open output stream: %w", err)
	}

	defer stream.Close()

	if err = stream.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}

	for offset := 0; offset < len(samples); offset += len(out) {
		if err = ctx.Err(); err != nil {
			_ = stream.Stop()

			return err
		}

		n := copy(out, samples[offset:])

		// pad the last buffer with silence
		for i := n; i < len(out); i++ {
			out[i] = 0
		}

		if err = stream.Write(); err != nil {
			_ = stream.Stop()

			return fmt.Errorf("write output stream: %w", err)
		}
	}

	return stream.Stop()
}
