package speech_to_text

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"voice-assistant/logger"
	"voice-assistant/recorder"
	"voice-assistant/vad"

	"github.com/spf13/afero"
)

type transcriberImpl struct {
	recorder         recorder.Interface
	recognizer       Recognizer
	fileSys          afero.Fs
	duration         float64
	silenceGate      bool
	silenceThreshold float64
	log              *logger.Logger
}

type Config struct {
	Recorder   recorder.Interface
	Recognizer Recognizer
	// FileSys is where the recorder writes; only read by the silence gate.
	FileSys          afero.Fs
	DurationSeconds  float64
	SilenceGate      bool
	SilenceThreshold float64
	Log              *logger.Logger
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Recorder == nil {
		return nil, fmt.Errorf("recorder is nil")
	}

	if cfg.Recognizer == nil {
		return nil, fmt.Errorf("recognizer is nil")
	}

	if cfg.SilenceGate && cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil but the silence gate is enabled")
	}

	t := &transcriberImpl{
		recorder:         cfg.Recorder,
		recognizer:       cfg.Recognizer,
		fileSys:          cfg.FileSys,
		duration:         cfg.DurationSeconds,
		silenceGate:      cfg.SilenceGate,
		silenceThreshold: cfg.SilenceThreshold,
		log:              cfg.Log,
	}

	if t.duration <= 0 {
		t.duration = recorder.DefaultDuration
	}

	if t.log == nil {
		t.log = logger.NewNop()
	}

	return t, nil
}

// Transcribe records one clip and recognizes it. It never panics; every
// failure is reported through the Result.
func (t *transcriberImpl) Transcribe(ctx context.Context) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("recognizer panic: %v", r)
			t.log.Errorw("unexpected error during transcription", "error", err)

			res = Result{Outcome: OtherFailure, Err: err}
		}
	}()

	path, err := t.recorder.Record(ctx, t.duration)
	if err != nil {
		return Result{Outcome: OtherFailure, Err: err}
	}

	if t.silenceGate {
		silent, err := t.isSilent(path)
		if err != nil {
			t.log.Errorw("unexpected error during transcription", "error", err)

			return Result{Outcome: OtherFailure, Err: err}
		}

		if silent {
			t.log.Debugw("skipping silent clip", "path", path)

			return Result{Outcome: NoSpeechDetected, Err: ErrNoSpeech}
		}
	}

	text, err := t.recognizer.Recognize(ctx, path)

	switch {
	case err == nil:
	case ctx.Err() != nil:
		return Result{Outcome: OtherFailure, Err: ctx.Err()}
	case errors.Is(err, ErrNoSpeech):
		return Result{Outcome: NoSpeechDetected, Err: err}
	case errors.Is(err, ErrServiceUnavailable):
		t.log.Warnw("speech recognition service unavailable", "error", err)

		return Result{Outcome: ServiceUnavailable, Err: err}
	default:
		t.log.Errorw("unexpected error during transcription", "error", err)

		return Result{Outcome: OtherFailure, Err: err}
	}

	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Result{Outcome: NoSpeechDetected, Err: ErrNoSpeech}
	}

	t.log.Infow("recognized", "text", text)

	return Result{Outcome: Recognized, Text: text}
}

func (t *transcriberImpl) isSilent(path string) (bool, error) {
	buf, err := ReadWAV(t.fileSys, path)
	if err != nil {
		return false, err
	}

	return !vad.ContainsSpeech(buf.Data, vad.DefaultFrameSize, t.silenceThreshold), nil
}
