package speech_to_text

import (
	"context"
	"errors"
)

var (
	// ErrNoSpeech means the service could not find any intelligible speech.
	ErrNoSpeech = errors.New("no speech detected")
	// ErrServiceUnavailable means the service could not be reached or failed.
	ErrServiceUnavailable = errors.New("speech recognition service unavailable")
)

// Recognizer turns a WAV file into text.
type Recognizer interface {
	Recognize(ctx context.Context, wavPath string) (string, error)
}

type Interface interface {
	Transcribe(ctx context.Context) Result
}
