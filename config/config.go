package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BackendHTTP    = "http"
	BackendOpenAI  = "openai"
	BackendWhisper = "whisper"

	EngineEspeak = "espeak"
	EnginePiper  = "piper"
)

type Recording struct {
	DurationSeconds float64 `mapstructure:"duration_seconds"`
	SampleRate      int     `mapstructure:"sample_rate"`
	Path            string  `mapstructure:"path"`
}

type HTTPRecognition struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OpenAIRecognition struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type WhisperRecognition struct {
	Model string `mapstructure:"model"`
}

type Recognition struct {
	Backend          string             `mapstructure:"backend"`
	Language         string             `mapstructure:"language"`
	HTTP             HTTPRecognition    `mapstructure:"http"`
	OpenAI           OpenAIRecognition  `mapstructure:"openai"`
	Whisper          WhisperRecognition `mapstructure:"whisper"`
	SilenceGate      bool               `mapstructure:"silence_gate"`
	SilenceThreshold float64            `mapstructure:"silence_threshold"`
}

type Espeak struct {
	Binary         string `mapstructure:"binary"`
	Voice          string `mapstructure:"voice"`
	WordsPerMinute int    `mapstructure:"words_per_minute"`
}

type Piper struct {
	URL   string `mapstructure:"url"`
	Voice string `mapstructure:"voice"`
}

type Synthesis struct {
	Engine string `mapstructure:"engine"`
	Espeak Espeak `mapstructure:"espeak"`
	Piper  Piper  `mapstructure:"piper"`
}

type Search struct {
	BaseURL string `mapstructure:"base_url"`
}

// Application is one allowlist entry: a transcript containing Keyword
// launches Command.
type Application struct {
	Keyword string `mapstructure:"keyword"`
	Command string `mapstructure:"command"`
}

type Journal struct {
	Path string `mapstructure:"path"`
}

type Settings struct {
	Debug        bool          `mapstructure:"debug"`
	Recording    Recording     `mapstructure:"recording"`
	Recognition  Recognition   `mapstructure:"recognition"`
	Synthesis    Synthesis     `mapstructure:"synthesis"`
	Search       Search        `mapstructure:"search"`
	Applications []Application `mapstructure:"applications"`
	Journal      Journal       `mapstructure:"journal"`
}

// flag name -> settings key
var flagKeys = map[string]string{
	"debug":    "debug",
	"backend":  "recognition.backend",
	"engine":   "synthesis.engine",
	"duration": "recording.duration_seconds",
}

// Load reads settings from defaults, an optional yaml file, a .env file,
// ASSISTANT_* environment variables and flags, in increasing priority.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("ASSISTANT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("recognition.openai.api_key", "ASSISTANT_RECOGNITION_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, err
	}

	configFile := ""

	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			configFile = f.Value.String()
		}

		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}

			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("assistant")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/voice-assistant")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("recording.duration_seconds", 4.0)
	v.SetDefault("recording.sample_rate", 44100)
	v.SetDefault("recording.path", "temp_audio.wav")

	v.SetDefault("recognition.backend", BackendHTTP)
	v.SetDefault("recognition.language", "en")
	v.SetDefault("recognition.http.url", "http://localhost:9000")
	v.SetDefault("recognition.http.timeout", 30*time.Second)
	v.SetDefault("recognition.openai.api_key", "")
	v.SetDefault("recognition.openai.model", "whisper-1")
	v.SetDefault("recognition.whisper.model", "")
	v.SetDefault("recognition.silence_gate", false)
	v.SetDefault("recognition.silence_threshold", 0.01)

	v.SetDefault("synthesis.engine", EngineEspeak)
	v.SetDefault("synthesis.espeak.binary", "espeak")
	v.SetDefault("synthesis.espeak.voice", "")
	v.SetDefault("synthesis.espeak.words_per_minute", 0)
	v.SetDefault("synthesis.piper.url", "http://localhost:5000")
	v.SetDefault("synthesis.piper.voice", "")

	v.SetDefault("search.base_url", "https://www.google.com/search?q=")

	v.SetDefault("applications", []map[string]any{
		{"keyword": "notepad", "command": "notepad"},
		{"keyword": "calculator", "command": "calc"},
	})

	v.SetDefault("journal.path", "")
}

func (s *Settings) Validate() error {
	if s.Recording.DurationSeconds <= 0 {
		return fmt.Errorf("recording.duration_seconds must be positive, got %v", s.Recording.DurationSeconds)
	}

	if s.Recording.SampleRate <= 0 {
		return fmt.Errorf("recording.sample_rate must be positive, got %d", s.Recording.SampleRate)
	}

	if s.Recording.Path == "" {
		return errors.New("recording.path is empty")
	}

	switch s.Recognition.Backend {
	case BackendHTTP:
		if s.Recognition.HTTP.URL == "" {
			return errors.New("recognition.http.url is empty")
		}
	case BackendOpenAI:
		if s.Recognition.OpenAI.APIKey == "" {
			return errors.New("recognition.openai.api_key is empty")
		}
	case BackendWhisper:
		if s.Recognition.Whisper.Model == "" {
			return errors.New("recognition.whisper.model is empty")
		}
	default:
		return fmt.Errorf("unknown recognition backend %q", s.Recognition.Backend)
	}

	switch s.Synthesis.Engine {
	case EngineEspeak, EnginePiper:
	default:
		return fmt.Errorf("unknown synthesis engine %q", s.Synthesis.Engine)
	}

	if len(s.Applications) == 0 {
		return errors.New("applications allowlist is empty")
	}

	for i, app := range s.Applications {
		if app.Keyword == "" || app.Command == "" {
			return fmt.Errorf("applications[%d] needs both keyword and command", i)
		}
	}

	return nil
}
