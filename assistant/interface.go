package assistant

import (
	"context"

	"voice-assistant/journal"
)

// Speaker is the synthesizer as seen by the loop.
type Speaker interface {
	Speak(ctx context.Context, message string) error
	Stop() error
}

type Searcher interface {
	Search(ctx context.Context, query string) error
}

type Launcher interface {
	Launch(ctx context.Context, appName string) error
}

type Journal interface {
	Record(ctx context.Context, e journal.Entry) error
}
