package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"voice-assistant/logger"
	"voice-assistant/speech_to_text"

	"github.com/spf13/afero"
)

// TranscriptionResponse is the json answer of the whisper asr webservice.
type TranscriptionResponse struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language"`
	Segments []TranscriptionSegment `json:"segments,omitempty"`
}

type TranscriptionSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type clientImpl struct {
	apiHost    string
	language   string
	fileSys    afero.Fs
	httpClient *http.Client
	log        *logger.Logger
}

type Config struct {
	ApiHost  string
	Language string
	Timeout  time.Duration
	FileSys  afero.Fs
	Log      *logger.Logger
}

// NewClient returns a recognizer backed by a whisper asr webservice
// (POST /asr, multipart field audio_file).
func NewClient(cfg *Config) (speech_to_text.Recognizer, error) {
	if cfg == nil {
		return nil, errors.New("missing parameter: cfg")
	}

	if cfg.ApiHost == "" {
		return nil, errors.New("missing parameter: cfg.ApiHost")
	}

	if cfg.FileSys == nil {
		return nil, errors.New("missing parameter: cfg.FileSys")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	log := cfg.Log
	if log == nil {
		log = logger.NewNop()
	}

	return &clientImpl{
		apiHost:    strings.TrimRight(cfg.ApiHost, "/"),
		language:   cfg.Language,
		fileSys:    cfg.FileSys,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}, nil
}

func (client *clientImpl) Recognize(ctx context.Context, wavPath string) (string, error) {
	body, contentType, err := client.formBody(wavPath)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("task", "transcribe")
	q.Set("output", "json")
	q.Set("encode", "true")

	if client.language != "" {
		q.Set("language", client.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.apiHost+"/asr?"+q.Encode(), body)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", speech_to_text.ErrServiceUnavailable, err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", speech_to_text.ErrServiceUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		client.log.Errorw("asr service error", "status", resp.StatusCode, "body", string(respBody))

		return "", fmt.Errorf("%w: status %d", speech_to_text.ErrServiceUnavailable, resp.StatusCode)
	}

	var transcription TranscriptionResponse
	if err = json.Unmarshal(respBody, &transcription); err != nil {
		return "", fmt.Errorf("decode asr response: %w", err)
	}

	text := strings.TrimSpace(transcription.Text)
	if text == "" {
		return "", speech_to_text.ErrNoSpeech
	}

	client.log.Debugw("asr transcription", "text", text, "language", transcription.Language)

	return text, nil
}

func (client *clientImpl) formBody(wavPath string) (io.Reader, string, error) {
	fd, err := client.fileSys.Open(wavPath)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", wavPath, err)
	}

	defer fd.Close()

	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	fw, err := w.CreateFormFile("audio_file", filepath.Base(wavPath))
	if err != nil {
		return nil, "", err
	}

	if _, err = io.Copy(fw, fd); err != nil {
		return nil, "", fmt.Errorf("copy %s: %w", wavPath, err)
	}

	if err = w.Close(); err != nil {
		return nil, "", err
	}

	return &b, w.FormDataContentType(), nil
}
