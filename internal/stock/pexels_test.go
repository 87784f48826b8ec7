package stock

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const searchPayload = `{
	"videos": [
		{
			"id": 101,
			"duration": 32,
			"video_files": [
				{"quality": "sd", "width": 540, "height": 960, "link": "https://cdn.example/101-sd.mp4"},
				{"quality": "hd", "width": 1080, "height": 1920, "link": "https://cdn.example/101-hd.mp4"},
				{"quality": "hd", "width": 720, "height": 1280, "link": "https://cdn.example/101-hd-small.mp4"}
			]
		},
		{
			"id": 102,
			"duration": 15,
			"video_files": [
				{"quality": "sd", "width": 540, "height": 960, "link": "https://cdn.example/102-sd.mp4"}
			]
		},
		{
			"id": 103,
			"duration": 20,
			"video_files": []
		}
	]
}`

func TestSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "api-key" {
			t.Errorf("Authorization = %q, want api-key", got)
		}
		query := r.URL.Query()
		if got := query.Get("orientation"); got != "portrait" {
			t.Errorf("orientation = %q, want portrait", got)
		}
		if got := query.Get("query"); got != "ocean waves" {
			t.Errorf("query = %q, want ocean waves", got)
		}
		_, _ = w.Write([]byte(searchPayload))
	}))
	defer server.Close()

	client := NewPexels("api-key")
	client.baseURL = server.URL

	videos, err := client.Search(context.Background(), "ocean waves", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	// Hit 103 has no renditions and is dropped.
	if len(videos) != 2 {
		t.Fatalf("Search() returned %d videos, want 2", len(videos))
	}
	if videos[0].ID != "101" {
		t.Errorf("first hit ID = %q, want 101 (provider rank order)", videos[0].ID)
	}
	if videos[0].URL != "https://cdn.example/101-hd.mp4" {
		t.Errorf("first hit URL = %q, want tallest hd rendition", videos[0].URL)
	}
	if videos[0].Duration != 32 {
		t.Errorf("first hit duration = %d, want 32", videos[0].Duration)
	}
	if videos[1].URL != "https://cdn.example/102-sd.mp4" {
		t.Errorf("second hit URL = %q, want sd fallback", videos[1].URL)
	}
}

func TestSearchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewPexels("api-key")
	client.baseURL = server.URL

	if _, err := client.Search(context.Background(), "ocean", 5); err == nil {
		t.Error("Search() error = nil, want rate limit failure")
	}
}

func TestBestRendition(t *testing.T) {
	tests := []struct {
		name  string
		files []pexelsFile
		want  string
	}{
		{
			name: "hdBeatsSD",
			files: []pexelsFile{
				{Quality: "sd", Height: 1920, Link: "sd"},
				{Quality: "hd", Height: 1280, Link: "hd"},
			},
			want: "hd",
		},
		{
			name: "tallestHDWins",
			files: []pexelsFile{
				{Quality: "hd", Height: 1280, Link: "small"},
				{Quality: "hd", Height: 1920, Link: "large"},
			},
			want: "large",
		},
		{
			name:  "noFiles",
			files: nil,
			want:  "",
		},
		{
			name: "skipsEmptyLinks",
			files: []pexelsFile{
				{Quality: "hd", Height: 1920, Link: ""},
				{Quality: "sd", Height: 960, Link: "sd"},
			},
			want: "sd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bestRendition(tt.files); got != tt.want {
				t.Errorf("bestRendition() = %q, want %q", got, tt.want)
			}
		})
	}
}
