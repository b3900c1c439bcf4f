package actions

import (
	"context"
	"fmt"

	"voice-assistant/logger"

	"github.com/pkg/browser"
)

const DefaultSearchURL = "https://www.google.com/search?q="

// SystemBrowser opens URLs with the platform's default browser.
type SystemBrowser struct{}

func (SystemBrowser) OpenURL(url string) error {
	return browser.OpenURL(url)
}

type Searcher struct {
	speaker Speaker
	browser Browser
	baseURL string
	log     *logger.Logger
}

type SearchConfig struct {
	Speaker Speaker
	Browser Browser
	// BaseURL is followed directly by the query, without escaping.
	BaseURL string
	Log     *logger.Logger
}

func NewSearcher(cfg *SearchConfig) (*Searcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.Speaker == nil {
		return nil, fmt.Errorf("speaker is nil")
	}

	if cfg.Browser == nil {
		return nil, fmt.Errorf("browser is nil")
	}

	s := &Searcher{
		speaker: cfg.Speaker,
		browser: cfg.Browser,
		baseURL: cfg.BaseURL,
		log:     cfg.Log,
	}

	if s.baseURL == "" {
		s.baseURL = DefaultSearchURL
	}

	if s.log == nil {
		s.log = logger.NewNop()
	}

	return s, nil
}

// Search announces and opens a web search for query. Only speech errors are
// returned; a browser that fails to open is logged.
func (s *Searcher) Search(ctx context.Context, query string) error {
	if query == "" {
		return s.speaker.Speak(ctx, "I need a search query.")
	}

	if err := s.speaker.Speak(ctx, fmt.Sprintf("Searching for %s", query)); err != nil {
		return err
	}

	url := s.baseURL + query

	if err := s.browser.OpenURL(url); err != nil {
		s.log.Errorw("error opening browser", "url", url, "error", err)
	}

	return nil
}
