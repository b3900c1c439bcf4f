package whisper_local

import (
	"context"
	"fmt"
	"io"
	"strings"

	"voice-assistant/speech_to_text"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/spf13/afero"
)

// whisper.cpp only accepts 16 kHz mono float samples
const modelSampleRate = 16000

type sttImpl struct {
	model    whisper.Model
	fileSys  afero.Fs
	language string
}

type Config struct {
	Model    whisper.Model
	FileSys  afero.Fs
	Language string
}

func New(cfg *Config) (speech_to_text.Recognizer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Model == nil {
		return nil, fmt.Errorf("model is nil")
	}

	if cfg.FileSys == nil {
		return nil, fmt.Errorf("fileSys is nil")
	}

	return &sttImpl{
		model:    cfg.Model,
		fileSys:  cfg.FileSys,
		language: cfg.Language,
	}, nil
}

func (stt *sttImpl) Recognize(ctx context.Context, wavPath string) (string, error) {
	buf, err := speech_to_text.ReadWAV(stt.fileSys, wavPath)
	if err != nil {
		return "", err
	}

	if err = ctx.Err(); err != nil {
		return "", err
	}

	whisperCtx, err := stt.model.NewContext()
	if err != nil {
		return "", err
	}

	if stt.language != "" {
		if err = whisperCtx.SetLanguage(stt.language); err != nil {
			return "", fmt.Errorf("set language %q: %w", stt.language, err)
		}
	}

	data := speech_to_text.Resample(speech_to_text.ToFloat32(buf.Data), buf.Format.SampleRate, modelSampleRate)

	var cb whisper.SegmentCallback

	if err = whisperCtx.Process(data, cb); err != nil {
		return "", err
	}

	segments, err := outputSegments(whisperCtx)
	if err != nil {
		return "", err
	}

	if len(segments) == 0 {
		return "", speech_to_text.ErrNoSpeech
	}

	texts := make([]string, 0, len(segments))
	for _, segment := range segments {
		texts = append(texts, strings.TrimSpace(segment.Text))
	}

	return strings.Join(texts, " "), nil
}

func outputSegments(whisperCtx whisper.Context) ([]whisper.Segment, error) {
	seenText := make(map[string]bool)

	segments := make([]whisper.Segment, 0)

	for {
		segment, err := whisperCtx.NextSegment()
		if err == io.EOF {
			return segments, nil
		} else if err != nil {
			return nil, err
		}

		text := strings.TrimSpace(segment.Text)

		// markers such as [BLANK_AUDIO] or (music) are not speech
		if text == "" || text[0] == '(' || text[0] == '[' ||
			text[len(text)-1] == ')' || text[len(text)-1] == ']' {
			continue
		}

		if seenText[text] {
			continue
		}

		seenText[text] = true

		segments = append(segments, segment)
	}
}
