package speech_synthesis

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// Espeak speaks through the espeak command line synthesizer, one process
// per utterance.
type Espeak struct {
	Binary         string
	Voice          string
	WordsPerMinute int
}

func NewEspeak(binary, voice string, wordsPerMinute int) *Espeak {
	if binary == "" {
		binary = "espeak"
	}

	return &Espeak{
		Binary:         binary,
		Voice:          voice,
		WordsPerMinute: wordsPerMinute,
	}
}

func (e *Espeak) Say(ctx context.Context, text string) error {
	args := make([]string, 0, 5)

	if e.Voice != "" {
		args = append(args, "-v", e.Voice)
	}

	if e.WordsPerMinute > 0 {
		args = append(args, "-s", strconv.Itoa(e.WordsPerMinute))
	}

	args = append(args, "--", text)

	out, err := exec.CommandContext(ctx, e.Binary, args...).CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("%w: %s: %v (output %q)", ErrEngineFault, e.Binary, err, string(out))
	}

	return nil
}

func (e *Espeak) Close() error {
	return nil
}
