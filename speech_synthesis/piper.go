package speech_synthesis

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-audio/wav"
)

// Piper fetches WAV audio from a Piper HTTP server
// (GET /api/text-to-speech?text=..&voice=..) and plays it.
type Piper struct {
	BaseURL string
	Voice   string
	Client  *http.Client
	Player  Player
}

func NewPiper(baseURL, voice string, player Player) *Piper {
	return &Piper{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Voice:   voice,
		Client:  &http.Client{Timeout: 30 * time.Second},
		Player:  player,
	}
}

func (p *Piper) Say(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}

	body, err := p.fetch(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("%w: %v", ErrEngineFault, err)
	}

	d := wav.NewDecoder(bytes.NewReader(body))
	if !d.IsValidFile() {
		return fmt.Errorf("%w: piper returned invalid wav", ErrEngineFault)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("%w: decode piper wav: %v", ErrEngineFault, err)
	}

	samples := make([]int16, 0, len(buf.Data)/int(d.NumChans))

	// keep the first channel
	for i := 0; i < len(buf.Data); i += int(d.NumChans) {
		samples = append(samples, int16(buf.Data[i]))
	}

	if err = p.Player.Play(ctx, samples, int(d.SampleRate)); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		return fmt.Errorf("%w: play: %v", ErrEngineFault, err)
	}

	return nil
}

func (p *Piper) fetch(ctx context.Context, text string) ([]byte, error) {
	u, err := url.Parse(p.BaseURL + "/api/text-to-speech")
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("text", text)

	if p.Voice != "" {
		q.Set("voice", p.Voice)
	}

	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "audio/wav")

	hc := p.Client
	if hc == nil {
		hc = http.DefaultClient
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts http request failed: %w", err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts http %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}

func (p *Piper) Close() error {
	return nil
}
