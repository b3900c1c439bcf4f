package speech_synthesis

import (
	"context"
	"errors"
	"fmt"

	"voice-assistant/logger"
)

// Synthesizer owns the current engine and replaces it when it faults.
type Synthesizer struct {
	engine  Engine
	factory Factory
	log     *logger.Logger
}

type Config struct {
	Factory Factory
	Log     *logger.Logger
}

func New(cfg *Config) (*Synthesizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Factory == nil {
		return nil, fmt.Errorf("factory is nil")
	}

	s := &Synthesizer{
		factory: cfg.Factory,
		log:     cfg.Log,
	}

	if s.log == nil {
		s.log = logger.NewNop()
	}

	engine, err := s.factory()
	if err != nil {
		return nil, fmt.Errorf("create speech engine: %w", err)
	}

	s.engine = engine

	return s, nil
}

// Speak says message. An engine fault is answered once by replacing the
// engine and saying the message again; whatever the second attempt returns
// is returned as is.
func (s *Synthesizer) Speak(ctx context.Context, message string) error {
	err := s.say(ctx, message)
	if err == nil || !errors.Is(err, ErrEngineFault) {
		return err
	}

	s.log.Errorw("tts error, reinitializing tts engine", "error", err)

	if err = s.Reset(); err != nil {
		return err
	}

	return s.say(ctx, message)
}

func (s *Synthesizer) say(ctx context.Context, message string) error {
	if s.engine == nil {
		engine, err := s.factory()
		if err != nil {
			return fmt.Errorf("create speech engine: %w", err)
		}

		s.engine = engine
	}

	return s.engine.Say(ctx, message)
}

// Reset discards the current engine and creates a new one.
func (s *Synthesizer) Reset() error {
	s.closeEngine()

	engine, err := s.factory()
	if err != nil {
		return fmt.Errorf("recreate speech engine: %w", err)
	}

	s.engine = engine

	return nil
}

// Stop releases the engine. A later Speak creates a new one.
func (s *Synthesizer) Stop() error {
	if s.engine == nil {
		return nil
	}

	err := s.engine.Close()
	s.engine = nil

	return err
}

func (s *Synthesizer) closeEngine() {
	if s.engine == nil {
		return
	}

	if err := s.engine.Close(); err != nil {
		s.log.Warnw("error closing faulted speech engine", "error", err)
	}

	s.engine = nil
}
