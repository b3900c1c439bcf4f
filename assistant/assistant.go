package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voice-assistant/actions"
	"voice-assistant/commands"
	"voice-assistant/console"
	"voice-assistant/journal"
	"voice-assistant/logger"
	"voice-assistant/speech_to_text"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
)

// The loop is an FSM with two states:
//
//	listening -> terminated   (stop keyword or interrupt)
const (
	StateListening  = "listening"
	StateTerminated = "terminated"

	EventStop      = "stop"
	EventInterrupt = "interrupt"
)

const (
	introduction      = "I am your assistant. How can I help you?"
	helloReply        = "Hello! How may I assist you?"
	searchPrompt      = "What would you like to search for?"
	openPrompt        = "Which application would you like me to open?"
	stopFarewell      = "Goodbye! Have a great day!"
	interruptFarewell = "Goodbye! See you soon."
	notUnderstood     = "I didn't quite understand that. Can you repeat it?"
	noSpeechApology   = "Sorry, I couldn't understand that. Please try again."
	unavailableNotice = "The speech recognition service is unavailable."
)

// ErrTerminated is returned by Run once the assistant has stopped.
var ErrTerminated = errors.New("assistant already terminated")

type Assistant struct {
	transcriber speech_to_text.Interface
	speaker     Speaker
	searcher    Searcher
	launcher    Launcher
	console     *console.Console
	journal     Journal
	now         func() time.Time
	log         *logger.Logger

	machine   *fsm.FSM
	sessionID uuid.UUID
}

type Config struct {
	Transcriber speech_to_text.Interface
	Speaker     Speaker
	Searcher    Searcher
	Launcher    Launcher
	// Console and Journal are optional.
	Console *console.Console
	Journal Journal
	Now     func() time.Time
	Log     *logger.Logger
}

func New(cfg *Config) (*Assistant, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Transcriber == nil {
		return nil, fmt.Errorf("transcriber is nil")
	}

	if cfg.Speaker == nil {
		return nil, fmt.Errorf("speaker is nil")
	}

	if cfg.Searcher == nil {
		return nil, fmt.Errorf("searcher is nil")
	}

	if cfg.Launcher == nil {
		return nil, fmt.Errorf("launcher is nil")
	}

	a := &Assistant{
		transcriber: cfg.Transcriber,
		speaker:     cfg.Speaker,
		searcher:    cfg.Searcher,
		launcher:    cfg.Launcher,
		console:     cfg.Console,
		journal:     cfg.Journal,
		now:         cfg.Now,
		log:         cfg.Log,
		sessionID:   uuid.New(),
	}

	if a.now == nil {
		a.now = time.Now
	}

	if a.log == nil {
		a.log = logger.NewNop()
	}

	a.machine = fsm.NewFSM(
		StateListening,
		fsm.Events{
			{Name: EventStop, Src: []string{StateListening}, Dst: StateTerminated},
			{Name: EventInterrupt, Src: []string{StateListening}, Dst: StateTerminated},
		},
		fsm.Callbacks{
			"enter_" + StateTerminated: func(_ context.Context, e *fsm.Event) {
				a.log.Infow("assistant terminated", "event", e.Event, "session", a.sessionID)
			},
		},
	)

	return a, nil
}

// State is the current FSM state.
func (a *Assistant) State() string {
	return a.machine.Current()
}

func (a *Assistant) SessionID() uuid.UUID {
	return a.sessionID
}

// Run greets the user and serves commands until a stop keyword is heard or
// ctx is cancelled. Cancellation is only noticed between commands. A speech
// error that survived the synthesizer's own recovery ends the loop and is
// returned.
func (a *Assistant) Run(ctx context.Context) error {
	if !a.machine.Is(StateListening) {
		return ErrTerminated
	}

	greeting := fmt.Sprintf("%s %s", actions.Greeting(a.now().Hour()), introduction)
	if err := a.speak(ctx, greeting); err != nil {
		if ctx.Err() != nil {
			return a.interrupt(ctx)
		}

		return err
	}

	for a.machine.Is(StateListening) {
		if ctx.Err() != nil {
			return a.interrupt(ctx)
		}

		if err := a.step(ctx); err != nil {
			if ctx.Err() != nil {
				return a.interrupt(ctx)
			}

			return err
		}
	}

	return nil
}

func (a *Assistant) step(ctx context.Context) error {
	text, err := a.listen(ctx)
	if err != nil || text == "" {
		return err
	}

	kind := commands.Classify(text)

	a.record(ctx, text, kind)

	return a.dispatch(ctx, kind)
}

func (a *Assistant) dispatch(ctx context.Context, kind commands.Kind) error {
	switch kind {
	case commands.Hello:
		return a.speak(ctx, helloReply)
	case commands.Time:
		return a.speak(ctx, actions.TimePhrase(a.now()))
	case commands.Date:
		return a.speak(ctx, actions.DatePhrase(a.now()))
	case commands.Search:
		if err := a.speak(ctx, searchPrompt); err != nil {
			return err
		}

		query, err := a.listen(ctx)
		if err != nil {
			return err
		}

		return a.searcher.Search(ctx, query)
	case commands.Open:
		if err := a.speak(ctx, openPrompt); err != nil {
			return err
		}

		appName, err := a.listen(ctx)
		if err != nil {
			return err
		}

		return a.launcher.Launch(ctx, appName)
	case commands.Stop:
		err := a.speak(ctx, stopFarewell)
		a.transition(ctx, EventStop)

		return err
	default:
		return a.speak(ctx, notUnderstood)
	}
}

// listen transcribes one clip. Failed recognitions come back as an empty
// transcript after the user has been told, where there is something to tell.
func (a *Assistant) listen(ctx context.Context) (string, error) {
	a.console.Listening()

	res := a.transcriber.Transcribe(ctx)

	switch res.Outcome {
	case speech_to_text.Recognized:
		a.console.Recognized(res.Text)

		return res.Text, nil
	case speech_to_text.NoSpeechDetected:
		return "", a.speak(ctx, noSpeechApology)
	case speech_to_text.ServiceUnavailable:
		return "", a.speak(ctx, unavailableNotice)
	default:
		a.log.Debugw("no usable input", "error", res.Err)

		return "", nil
	}
}

func (a *Assistant) interrupt(ctx context.Context) error {
	// the farewell must outlive the cancelled context
	ctx = context.WithoutCancel(ctx)

	if err := a.speak(ctx, interruptFarewell); err != nil {
		a.log.Errorw("error saying goodbye", "error", err)
	}

	if stopErr := a.speaker.Stop(); stopErr != nil {
		a.log.Warnw("error stopping speech engine", "error", stopErr)
	}

	a.console.Println("Assistant terminated.")
	a.transition(ctx, EventInterrupt)

	return nil
}

func (a *Assistant) transition(ctx context.Context, event string) {
	if err := a.machine.Event(context.WithoutCancel(ctx), event); err != nil {
		a.log.Errorw("invalid state transition", "event", event, "state", a.machine.Current(), "error", err)
	}
}

func (a *Assistant) speak(ctx context.Context, message string) error {
	a.console.Assistant(message)

	return a.speaker.Speak(ctx, message)
}

func (a *Assistant) record(ctx context.Context, text string, kind commands.Kind) {
	if a.journal == nil {
		return
	}

	err := a.journal.Record(ctx, journal.Entry{
		SessionID:  a.sessionID,
		Transcript: text,
		Command:    kind.String(),
		CreatedAt:  a.now(),
	})
	if err != nil {
		a.log.Warnw("error writing journal", "error", err)
	}
}
