package assistant

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"voice-assistant/actions"
	"voice-assistant/console"
	"voice-assistant/journal"
	"voice-assistant/speech_to_text"

	"github.com/google/go-cmp/cmp"
)

// scriptedTranscriber replays results; once they run out it reports
// OtherFailure. onCall, if set, runs before each call with its 1-based index.
type scriptedTranscriber struct {
	results []speech_to_text.Result
	calls   int
	onCall  func(n int)
}

func (s *scriptedTranscriber) Transcribe(_ context.Context) speech_to_text.Result {
	s.calls++

	if s.onCall != nil {
		s.onCall(s.calls)
	}

	if len(s.results) == 0 {
		return speech_to_text.Result{Outcome: speech_to_text.OtherFailure, Err: errors.New("script exhausted")}
	}

	res := s.results[0]
	s.results = s.results[1:]

	return res
}

type recordingSpeaker struct {
	lines  []string
	stops  int
	failAt int
	err    error
}

func (r *recordingSpeaker) Speak(_ context.Context, message string) error {
	r.lines = append(r.lines, message)

	if r.failAt > 0 && len(r.lines) == r.failAt {
		return r.err
	}

	return nil
}

func (r *recordingSpeaker) Stop() error {
	r.stops++

	return nil
}

type fakeBrowser struct{ urls []string }

func (f *fakeBrowser) OpenURL(url string) error {
	f.urls = append(f.urls, url)

	return nil
}

type fakeRunner struct{ commands []string }

func (f *fakeRunner) Start(command string) error {
	f.commands = append(f.commands, command)

	return nil
}

type memoryJournal struct{ entries []journal.Entry }

func (m *memoryJournal) Record(_ context.Context, e journal.Entry) error {
	m.entries = append(m.entries, e)

	return nil
}

func said(text string) speech_to_text.Result {
	return speech_to_text.Result{Outcome: speech_to_text.Recognized, Text: text}
}

func failed(outcome speech_to_text.Outcome) speech_to_text.Result {
	return speech_to_text.Result{Outcome: outcome, Err: errors.New(outcome.String())}
}

type harness struct {
	assistant   *Assistant
	transcriber *scriptedTranscriber
	speaker     *recordingSpeaker
	browser     *fakeBrowser
	runner      *fakeRunner
	journal     *memoryJournal
	out         *bytes.Buffer
}

// 2024-03-05 09:30, a Tuesday morning
var morning = time.Date(2024, time.March, 5, 9, 30, 0, 0, time.Local)

func newHarness(t *testing.T, results ...speech_to_text.Result) *harness {
	t.Helper()

	h := &harness{
		transcriber: &scriptedTranscriber{results: results},
		speaker:     &recordingSpeaker{},
		browser:     &fakeBrowser{},
		runner:      &fakeRunner{},
		journal:     &memoryJournal{},
		out:         &bytes.Buffer{},
	}

	searcher, err := actions.NewSearcher(&actions.SearchConfig{Speaker: h.speaker, Browser: h.browser})
	if err != nil {
		t.Fatalf("NewSearcher: %v", err)
	}

	launcher, err := actions.NewLauncher(&actions.LaunchConfig{Speaker: h.speaker, Runner: h.runner})
	if err != nil {
		t.Fatalf("NewLauncher: %v", err)
	}

	h.assistant, err = New(&Config{
		Transcriber: h.transcriber,
		Speaker:     h.speaker,
		Searcher:    searcher,
		Launcher:    launcher,
		Console:     console.New(h.out),
		Journal:     h.journal,
		Now:         func() time.Time { return morning },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return h
}

const greeting = "Good morning! I am your assistant. How can I help you?"

func TestRun(t *testing.T) {
	tests := []struct {
		name      string
		results   []speech_to_text.Result
		wantLines []string
	}{
		{
			name:      "hello wins over time",
			results:   []speech_to_text.Result{said("hello what time is it"), said("quit")},
			wantLines: []string{greeting, "Hello! How may I assist you?", "Goodbye! Have a great day!"},
		},
		{
			name:      "time",
			results:   []speech_to_text.Result{said("what time is it"), said("stop")},
			wantLines: []string{greeting, "The time is 09:30 AM", "Goodbye! Have a great day!"},
		},
		{
			name:      "date",
			results:   []speech_to_text.Result{said("what's the date"), said("exit")},
			wantLines: []string{greeting, "Today's date is Tuesday, March 05, 2024", "Goodbye! Have a great day!"},
		},
		{
			name:      "unknown command",
			results:   []speech_to_text.Result{said("sing a song"), said("quit")},
			wantLines: []string{greeting, "I didn't quite understand that. Can you repeat it?", "Goodbye! Have a great day!"},
		},
		{
			name:      "silent failure restarts the loop quietly",
			results:   []speech_to_text.Result{failed(speech_to_text.OtherFailure), said("quit")},
			wantLines: []string{greeting, "Goodbye! Have a great day!"},
		},
		{
			name:      "unintelligible audio is apologized for",
			results:   []speech_to_text.Result{failed(speech_to_text.NoSpeechDetected), said("quit")},
			wantLines: []string{greeting, "Sorry, I couldn't understand that. Please try again.", "Goodbye! Have a great day!"},
		},
		{
			name:      "unavailable service is announced",
			results:   []speech_to_text.Result{failed(speech_to_text.ServiceUnavailable), said("quit")},
			wantLines: []string{greeting, "The speech recognition service is unavailable.", "Goodbye! Have a great day!"},
		},
		{
			name:    "search with a follow-up query",
			results: []speech_to_text.Result{said("search something"), said("cats"), said("quit")},
			wantLines: []string{
				greeting,
				"What would you like to search for?",
				"Searching for cats",
				"Goodbye! Have a great day!",
			},
		},
		{
			name:    "search without a usable query",
			results: []speech_to_text.Result{said("search"), failed(speech_to_text.OtherFailure), said("quit")},
			wantLines: []string{
				greeting,
				"What would you like to search for?",
				"I need a search query.",
				"Goodbye! Have a great day!",
			},
		},
		{
			name:    "open an unknown application",
			results: []speech_to_text.Result{said("open"), said("xyz"), said("quit")},
			wantLines: []string{
				greeting,
				"Which application would you like me to open?",
				"Sorry, I cannot open xyz at the moment.",
				"Goodbye! Have a great day!",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.results...)

			if err := h.assistant.Run(context.Background()); err != nil {
				t.Fatalf("Run: %v", err)
			}

			if diff := cmp.Diff(tt.wantLines, h.speaker.lines); diff != "" {
				t.Errorf("spoken lines mismatch (-want +got):\n%s", diff)
			}

			if h.assistant.State() != StateTerminated {
				t.Errorf("expected %s, got %s", StateTerminated, h.assistant.State())
			}
		})
	}
}

func TestRun_GreetingFollowsTheClock(t *testing.T) {
	for _, tt := range []struct {
		hour int
		want string
	}{
		{8, "Good morning!"},
		{12, "Good afternoon!"},
		{17, "Good afternoon!"},
		{18, "Good evening!"},
	} {
		h := newHarness(t, said("quit"))
		h.assistant.now = func() time.Time { return time.Date(2024, 1, 1, tt.hour, 0, 0, 0, time.Local) }

		if err := h.assistant.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}

		if !strings.HasPrefix(h.speaker.lines[0], tt.want) {
			t.Errorf("hour %d: expected greeting %q, got %q", tt.hour, tt.want, h.speaker.lines[0])
		}
	}
}

func TestRun_OpenLaunchesAllowlistedApplication(t *testing.T) {
	h := newHarness(t, said("please open something"), said("open notepad please"), said("quit"))

	if err := h.assistant.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if diff := cmp.Diff([]string{"notepad"}, h.runner.commands); diff != "" {
		t.Errorf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_SearchOpensBrowser(t *testing.T) {
	h := newHarness(t, said("search"), said("cats"), said("quit"))

	if err := h.assistant.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if diff := cmp.Diff([]string{"https://www.google.com/search?q=cats"}, h.browser.urls); diff != "" {
		t.Errorf("urls mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_StopsExactlyOnce(t *testing.T) {
	h := newHarness(t, said("quit"), said("hello"), said("time"))

	if err := h.assistant.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if h.transcriber.calls != 1 {
		t.Errorf("expected no transcription after stopping, got %d calls", h.transcriber.calls)
	}

	if err := h.assistant.Run(context.Background()); !errors.Is(err, ErrTerminated) {
		t.Errorf("expected ErrTerminated on a second run, got %v", err)
	}

	if h.transcriber.calls != 1 {
		t.Errorf("a terminated assistant must not listen, got %d calls", h.transcriber.calls)
	}
}

func TestRun_Interrupt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness(t, said("hello"), failed(speech_to_text.OtherFailure), said("time"))
	h.transcriber.onCall = func(n int) {
		if n == 2 {
			cancel()
		}
	}

	if err := h.assistant.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{greeting, "Hello! How may I assist you?", "Goodbye! See you soon."}
	if diff := cmp.Diff(want, h.speaker.lines); diff != "" {
		t.Errorf("spoken lines mismatch (-want +got):\n%s", diff)
	}

	if h.speaker.stops != 1 {
		t.Errorf("expected the synthesizer to be stopped once, got %d", h.speaker.stops)
	}

	if h.transcriber.calls != 2 {
		t.Errorf("expected 2 transcriptions, got %d", h.transcriber.calls)
	}

	if h.assistant.State() != StateTerminated {
		t.Errorf("expected %s, got %s", StateTerminated, h.assistant.State())
	}

	if !strings.Contains(h.out.String(), "Assistant terminated.") {
		t.Error("expected the termination notice on the console")
	}
}

func TestRun_InterruptBeforeListening(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := newHarness(t, said("hello"))

	if err := h.assistant.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if h.transcriber.calls != 0 {
		t.Errorf("expected no transcription, got %d calls", h.transcriber.calls)
	}

	if last := h.speaker.lines[len(h.speaker.lines)-1]; last != "Goodbye! See you soon." {
		t.Errorf("expected interrupt farewell, got %q", last)
	}
}

func TestRun_SpeechErrorPropagates(t *testing.T) {
	speakErr := errors.New("engine faulted twice")

	h := newHarness(t, said("hello"), said("quit"))
	h.speaker.failAt = 2
	h.speaker.err = speakErr

	if err := h.assistant.Run(context.Background()); !errors.Is(err, speakErr) {
		t.Fatalf("expected the speech error, got %v", err)
	}

	if h.transcriber.calls != 1 {
		t.Errorf("loop should end on the failed utterance, got %d calls", h.transcriber.calls)
	}
}

func TestRun_Journal(t *testing.T) {
	h := newHarness(t, failed(speech_to_text.OtherFailure), said("hello"), said("quit"))

	if err := h.assistant.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var got [][2]string
	for _, e := range h.journal.entries {
		got = append(got, [2]string{e.Transcript, e.Command})

		if e.SessionID != h.assistant.SessionID() {
			t.Errorf("unexpected session %s", e.SessionID)
		}
	}

	want := [][2]string{{"hello", "hello"}, {"quit", "stop"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("journal mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_ConsoleEcho(t *testing.T) {
	h := newHarness(t, said("quit"))

	if err := h.assistant.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	out := h.out.String()

	for _, want := range []string{"Listening...", "Recognized: quit", greeting} {
		if !strings.Contains(out, want) {
			t.Errorf("console output is missing %q:\n%s", want, out)
		}
	}
}

func TestNew(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil config")
	}

	if _, err := New(&Config{Speaker: &recordingSpeaker{}}); err == nil {
		t.Error("expected error for nil transcriber")
	}
}

func TestRun_InterruptIgnoresFarewellFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := newHarness(t)
	h.speaker.failAt = 2
	h.speaker.err = errors.New("engine gone")

	if err := h.assistant.Run(ctx); err != nil {
		t.Errorf("expected a clean shutdown, got %v", err)
	}

	if h.speaker.stops != 1 || h.assistant.State() != StateTerminated {
		t.Error("expected the synthesizer stopped and the assistant terminated")
	}
}
