package trends

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelforge/internal/state"
)

const feedPayload = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Daily Search Trends</title>
    <item><title>solar eclipse timings</title></item>
    <item><title>cricket world cup</title></item>
    <item><title></title></item>
    <item><title>monsoon forecast</title></item>
  </channel>
</rss>`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(t *testing.T) *state.Store {
	t.Helper()
	store, err := state.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store
}

func TestTrending(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("geo"); got != "IN" {
			t.Errorf("geo = %q, want IN", got)
		}
		_, _ = w.Write([]byte(feedPayload))
	}))
	defer server.Close()

	client := NewGoogleClient("IN")
	client.baseURL = server.URL

	topics, err := client.Trending(context.Background(), CategoryScience)
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}

	// The empty title is dropped.
	if len(topics) != 3 {
		t.Fatalf("Trending() returned %d topics, want 3", len(topics))
	}
	if topics[0].Title != "solar eclipse timings" {
		t.Errorf("first topic = %q, want feed rank order", topics[0].Title)
	}
	if topics[0].Category != CategoryScience {
		t.Errorf("topic category = %q, want science", topics[0].Category)
	}
}

func TestTrendingFeedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewGoogleClient("IN")
	client.baseURL = server.URL

	if _, err := client.Trending(context.Background(), CategoryScience); err == nil {
		t.Error("Trending() error = nil, want feed failure")
	}
}

func TestSourceUsesLiveFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedPayload))
	}))
	defer server.Close()

	client := NewGoogleClient("IN")
	client.baseURL = server.URL
	store := openStore(t)
	source := NewSource(client, store, discardLogger(), []Category{CategoryScience})

	topic, err := source.Next(context.Background(), 0, true)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if topic.Title != "solar eclipse timings" {
		t.Errorf("Next() = %q, want top trending topic", topic.Title)
	}

	// The same trending topic is not handed out twice.
	second, err := source.Next(context.Background(), 0, true)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if second.Title == topic.Title {
		t.Errorf("Next() repeated topic %q before pool exhaustion", second.Title)
	}
}

func TestSourceMusicCycleKeepsVoicePool(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(feedPayload))
	}))
	defer server.Close()

	client := NewGoogleClient("IN")
	client.baseURL = server.URL
	store := openStore(t)
	source := NewSource(client, store, discardLogger(), []Category{CategoryScience})

	for i := 0; i < 2; i++ {
		topic, err := source.Next(context.Background(), int64(i), false)
		if err != nil {
			t.Fatalf("Next() #%d error = %v", i, err)
		}
		if topic.Title != "solar eclipse timings" {
			t.Errorf("Next() #%d = %q, want top trending topic", i, topic.Title)
		}
	}

	if got := store.Size(state.SetVoiceTopics); got != 0 {
		t.Errorf("voice-topic set size = %d after music cycles, want 0", got)
	}
}

func TestSourceFallsBackWhenFeedDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewGoogleClient("IN")
	client.baseURL = server.URL
	store := openStore(t)
	source := NewSource(client, store, discardLogger(), []Category{CategoryHistory})

	topic, err := source.Next(context.Background(), 0, true)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if topic.Category != CategoryHistory {
		t.Errorf("fallback topic category = %q, want history", topic.Category)
	}

	found := false
	for _, fallback := range FallbackTopics(CategoryHistory) {
		if fallback.Title == topic.Title {
			found = true
		}
	}
	if !found {
		t.Errorf("fallback topic %q not in the static table", topic.Title)
	}
}

func TestSourceWithoutFeedClient(t *testing.T) {
	store := openStore(t)
	source := NewSource(nil, store, discardLogger(), nil)

	topic, err := source.Next(context.Background(), 2, true)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	// Cycle 2 rotates onto the third configured category.
	if topic.Category != CategoryHistory {
		t.Errorf("topic category = %q, want history for cycle 2", topic.Category)
	}
}

func TestSourceCategoryRotation(t *testing.T) {
	store := openStore(t)
	source := NewSource(nil, store, discardLogger(), []Category{CategoryTechnology, CategoryNature})

	first, err := source.Next(context.Background(), 0, true)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	second, err := source.Next(context.Background(), 1, true)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}

	if first.Category != CategoryTechnology || second.Category != CategoryNature {
		t.Errorf("categories = %q, %q; want technology then nature", first.Category, second.Category)
	}
}

func TestFallbackTopicsCoverEveryCategory(t *testing.T) {
	for _, category := range Categories() {
		if len(FallbackTopics(category)) == 0 {
			t.Errorf("category %q has no fallback topics", category)
		}
	}
}
