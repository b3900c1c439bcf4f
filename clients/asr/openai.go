package asr

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"voice-assistant/logger"
	"voice-assistant/speech_to_text"

	openai "github.com/sashabaranov/go-openai"
	"github.com/spf13/afero"
)

type openAIImpl struct {
	client   *openai.Client
	model    string
	language string
	fileSys  afero.Fs
	log      *logger.Logger
}

type OpenAIConfig struct {
	APIKey string
	// BaseURL overrides the public endpoint, mostly for tests and proxies.
	BaseURL  string
	Model    string
	Language string
	FileSys  afero.Fs
	Log      *logger.Logger
}

// NewOpenAI returns a recognizer backed by the OpenAI transcription API.
func NewOpenAI(cfg *OpenAIConfig) (speech_to_text.Recognizer, error) {
	if cfg == nil {
		return nil, errors.New("missing parameter: cfg")
	}

	if cfg.APIKey == "" {
		return nil, errors.New("missing parameter: cfg.APIKey")
	}

	if cfg.FileSys == nil {
		return nil, errors.New("missing parameter: cfg.FileSys")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.Whisper1
	}

	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}

	return &openAIImpl{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    model,
		language: cfg.Language,
		fileSys:  cfg.FileSys,
		log:      log,
	}, nil
}

func (o *openAIImpl) Recognize(ctx context.Context, wavPath string) (string, error) {
	fd, err := o.fileSys.Open(wavPath)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", wavPath, err)
	}

	defer fd.Close()

	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: filepath.Base(wavPath),
		Reader:   fd,
		Language: o.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			o.log.Errorw("openai transcription error", "status", apiErr.HTTPStatusCode, "message", apiErr.Message)
		}

		return "", fmt.Errorf("%w: %v", speech_to_text.ErrServiceUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", speech_to_text.ErrNoSpeech
	}

	return text, nil
}
