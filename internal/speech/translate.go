package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	// Translate TTS rejects long inputs, so text is split into chunks of at
	// most this many characters along sentence boundaries.
	translateChunkLimit = 180
	translateTimeout    = 30 * time.Second
)

// GoogleTranslate is the free fallback synthesis backend. Voices map onto
// regional accent domains (com, co.uk, co.in, ...), which shift the accent of
// the generated speech.
type GoogleTranslate struct {
	httpClient *http.Client
	language   string
	accents    []string
	baseURL    string // format string taking the accent domain
}

func NewGoogleTranslate(language string, accents []string) *GoogleTranslate {
	return &GoogleTranslate{
		httpClient: &http.Client{
			Timeout: translateTimeout,
		},
		language: language,
		accents:  accents,
		baseURL:  "https://translate.google.%s/translate_tts",
	}
}

func (g *GoogleTranslate) Name() string { return "translate" }

func (g *GoogleTranslate) Synthesize(ctx context.Context, text string, voice int, dest string) error {
	if len(g.accents) == 0 {
		return fmt.Errorf("no accents configured")
	}
	accent := g.accents[voice%len(g.accents)]

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	defer func() { _ = out.Close() }()

	// MP3 frames concatenate cleanly, so each chunk is appended raw.
	for _, chunk := range splitChunks(text, translateChunkLimit) {
		if err := g.fetchChunk(ctx, chunk, accent, out); err != nil {
			return err
		}
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("close audio file: %w", err)
	}
	return waitForFile(ctx, dest)
}

func (g *GoogleTranslate) fetchChunk(ctx context.Context, chunk, accent string, out io.Writer) error {
	endpoint := fmt.Sprintf(g.baseURL, accent)
	params := url.Values{
		"ie":     {"UTF-8"},
		"client": {"tw-ob"},
		"tl":     {g.language},
		"q":      {chunk},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("translate tts error: %s", resp.Status)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("stream audio chunk: %w", err)
	}
	return nil
}

// splitChunks breaks text into pieces no longer than limit, preferring
// sentence boundaries and falling back to word boundaries for run-on
// sentences.
func splitChunks(text string, limit int) []string {
	text = strings.TrimSpace(text)
	if len(text) <= limit {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+1+len(word) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)

		if strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?") {
			if current.Len() >= limit/2 {
				chunks = append(chunks, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
