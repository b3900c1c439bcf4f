package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"voice-assistant/actions"
	"voice-assistant/assistant"
	"voice-assistant/audio_device"
	"voice-assistant/clients/asr"
	"voice-assistant/config"
	"voice-assistant/console"
	"voice-assistant/journal"
	"voice-assistant/logger"
	"voice-assistant/recorder"
	"voice-assistant/speech_synthesis"
	"voice-assistant/speech_to_text"
	"voice-assistant/speech_to_text/whisper_local"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "voice-assistant",
		Short:        "Listen for spoken commands and act on them",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}

	flags := cmd.Flags()
	flags.String("config", "", "path to a yaml config file")
	flags.Bool("debug", false, "development logging")
	flags.String("backend", "", "speech recognition backend: http, openai or whisper")
	flags.String("engine", "", "speech synthesis engine: espeak or piper")
	flags.Float64("duration", 0, "seconds of audio recorded per command")

	return cmd
}

func run(cmd *cobra.Command) error {
	settings, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	log := logger.New(settings.Debug)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fileSys := afero.NewOsFs()

	device := audio_device.New(log.Named("audio"))
	defer device.Close()

	rec, err := recorder.New(&recorder.Config{
		FileSys:    fileSys,
		Capturer:   device,
		SampleRate: settings.Recording.SampleRate,
		Path:       settings.Recording.Path,
		Log:        log.Named("recorder"),
	})
	if err != nil {
		return fmt.Errorf("error with recorder.New: %w", err)
	}

	recognizer, closeRecognizer, err := newRecognizer(settings, fileSys, log.Named("recognizer"))
	if err != nil {
		return err
	}
	defer closeRecognizer()

	transcriber, err := speech_to_text.New(&speech_to_text.Config{
		Recorder:         rec,
		Recognizer:       recognizer,
		FileSys:          fileSys,
		DurationSeconds:  settings.Recording.DurationSeconds,
		SilenceGate:      settings.Recognition.SilenceGate,
		SilenceThreshold: settings.Recognition.SilenceThreshold,
		Log:              log.Named("transcriber"),
	})
	if err != nil {
		return fmt.Errorf("error with speech_to_text.New: %w", err)
	}

	synth, err := speech_synthesis.New(&speech_synthesis.Config{
		Factory: engineFactory(settings.Synthesis, device),
		Log:     log.Named("tts"),
	})
	if err != nil {
		return fmt.Errorf("error with speech_synthesis.New: %w", err)
	}

	searcher, err := actions.NewSearcher(&actions.SearchConfig{
		Speaker: synth,
		Browser: actions.SystemBrowser{},
		BaseURL: settings.Search.BaseURL,
		Log:     log.Named("search"),
	})
	if err != nil {
		return fmt.Errorf("error with actions.NewSearcher: %w", err)
	}

	apps := make([]actions.App, 0, len(settings.Applications))
	for _, app := range settings.Applications {
		apps = append(apps, actions.App{Keyword: app.Keyword, Command: app.Command})
	}

	launcher, err := actions.NewLauncher(&actions.LaunchConfig{
		Speaker: synth,
		Runner:  actions.ExecRunner{Log: log.Named("launcher")},
		Apps:    apps,
		Log:     log.Named("launcher"),
	})
	if err != nil {
		return fmt.Errorf("error with actions.NewLauncher: %w", err)
	}

	assistantCfg := &assistant.Config{
		Transcriber: transcriber,
		Speaker:     synth,
		Searcher:    searcher,
		Launcher:    launcher,
		Console:     console.New(os.Stdout),
		Log:         log.Named("assistant"),
	}

	if settings.Journal.Path != "" {
		store, err := journal.Open(settings.Journal.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		assistantCfg.Journal = store
	}

	a, err := assistant.New(assistantCfg)
	if err != nil {
		return fmt.Errorf("error with assistant.New: %w", err)
	}

	log.Infow("assistant starting", "session", a.SessionID(), "backend", settings.Recognition.Backend, "engine", settings.Synthesis.Engine)

	return a.Run(ctx)
}

func newRecognizer(settings *config.Settings, fileSys afero.Fs, log *logger.Logger) (speech_to_text.Recognizer, func(), error) {
	noop := func() {}
	rc := settings.Recognition

	switch rc.Backend {
	case config.BackendOpenAI:
		r, err := asr.NewOpenAI(&asr.OpenAIConfig{
			APIKey:   rc.OpenAI.APIKey,
			Model:    rc.OpenAI.Model,
			Language: rc.Language,
			FileSys:  fileSys,
			Log:      log,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("error with asr.NewOpenAI: %w", err)
		}

		return r, noop, nil
	case config.BackendWhisper:
		model, err := whisper.New(rc.Whisper.Model)
		if err != nil {
			return nil, noop, fmt.Errorf("error loading model: %w", err)
		}

		r, err := whisper_local.New(&whisper_local.Config{
			Model:    model,
			FileSys:  fileSys,
			Language: rc.Language,
		})
		if err != nil {
			model.Close()

			return nil, noop, fmt.Errorf("error with whisper_local.New: %w", err)
		}

		return r, func() { model.Close() }, nil
	default:
		r, err := asr.NewClient(&asr.Config{
			ApiHost:  rc.HTTP.URL,
			Language: rc.Language,
			Timeout:  rc.HTTP.Timeout,
			FileSys:  fileSys,
			Log:      log,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("error with asr.NewClient: %w", err)
		}

		return r, noop, nil
	}
}

func engineFactory(cfg config.Synthesis, player speech_synthesis.Player) speech_synthesis.Factory {
	return func() (speech_synthesis.Engine, error) {
		switch cfg.Engine {
		case config.EnginePiper:
			return speech_synthesis.NewPiper(cfg.Piper.URL, cfg.Piper.Voice, player), nil
		default:
			return speech_synthesis.NewEspeak(cfg.Espeak.Binary, cfg.Espeak.Voice, cfg.Espeak.WordsPerMinute), nil
		}
	}
}
