package recorder

import (
	"context"
	"fmt"

	"voice-assistant/logger"

	"github.com/spf13/afero"
	"github.com/zenwerk/go-wave"
)

const (
	DefaultDuration   = 4.0
	DefaultSampleRate = 44100
	DefaultPath       = "temp_audio.wav"

	bitsPerSample = 16
)

type recorderImpl struct {
	fileSys    afero.Fs
	capturer   Capturer
	sampleRate int
	path       string
	log        *logger.Logger
}

type Config struct {
	FileSys    afero.Fs
	Capturer   Capturer
	SampleRate int
	Path       string
	Log        *logger.Logger
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	if cfg.Capturer == nil {
		return nil, fmt.Errorf("capturer is nil")
	}

	r := &recorderImpl{
		fileSys:    cfg.FileSys,
		capturer:   cfg.Capturer,
		sampleRate: cfg.SampleRate,
		path:       cfg.Path,
		log:        cfg.Log,
	}

	if r.sampleRate == 0 {
		r.sampleRate = DefaultSampleRate
	}

	if r.path == "" {
		r.path = DefaultPath
	}

	if r.log == nil {
		r.log = logger.NewNop()
	}

	return r, nil
}

// Record captures durationSeconds of mono audio and writes it as a WAV file at
// the recorder's fixed path, replacing the previous capture. The returned path
// is empty whenever err is not nil.
func (r *recorderImpl) Record(ctx context.Context, durationSeconds float64) (string, error) {
	path, err := r.record(ctx, durationSeconds)
	if err != nil {
		r.log.Errorw("error during audio recording", "error", err)

		return "", err
	}

	return path, nil
}

func (r *recorderImpl) record(ctx context.Context, durationSeconds float64) (string, error) {
	numSamples := int(durationSeconds * float64(r.sampleRate))
	if numSamples <= 0 {
		return "", fmt.Errorf("invalid duration %v", durationSeconds)
	}

	samples, err := r.capturer.Capture(ctx, numSamples, r.sampleRate)
	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}

	waveFile, err := r.fileSys.Create(r.path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", r.path, err)
	}

	param := wave.WriterParam{
		Out:           waveFile,
		Channel:       1,
		SampleRate:    r.sampleRate,
		BitsPerSample: bitsPerSample,
	}

	waveWriter, err := wave.NewWriter(param)
	if err != nil {
		waveFile.Close()

		return "", fmt.Errorf("wave writer: %w", err)
	}

	if _, err = waveWriter.WriteSample16(samples); err != nil {
		waveWriter.Close()

		return "", fmt.Errorf("write samples: %w", err)
	}

	// closes waveFile too
	if err = waveWriter.Close(); err != nil {
		return "", fmt.Errorf("finish %s: %w", r.path, err)
	}

	return r.path, nil
}
