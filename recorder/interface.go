package recorder

import "context"

type Interface interface {
	Record(ctx context.Context, durationSeconds float64) (string, error)
}

// Capturer is a source of mono 16-bit samples, normally the microphone.
type Capturer interface {
	Capture(ctx context.Context, numSamples int, sampleRate int) ([]int16, error)
}
