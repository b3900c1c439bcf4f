package speech_synthesis

import (
	"context"
	"errors"
)

// ErrEngineFault marks a runtime failure of a synthesis engine. The
// synthesizer answers it by replacing the engine.
var ErrEngineFault = errors.New("speech engine fault")

// Engine speaks text and blocks until the utterance is finished.
type Engine interface {
	Say(ctx context.Context, text string) error
	Close() error
}

// Factory builds a fresh engine.
type Factory func() (Engine, error)

// Player plays mono 16-bit samples, normally on the default output device.
type Player interface {
	Play(ctx context.Context, samples []int16, sampleRate int) error
}
