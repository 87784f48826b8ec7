package music

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"reelforge/pkg/httputil"
)

const (
	jamendoBaseURL = "https://api.jamendo.com/v3.0/tracks/"
	jamendoTimeout = 15 * time.Second
	jamendoLimit   = 30
)

// Jamendo pulls Creative Commons tracks filtered by tag and vocal language.
// It is the fallback behind Spotify since its catalogue is thinner but has no
// preview-length cap.
type Jamendo struct {
	clientID   string
	tag        string
	language   string
	httpClient *http.Client
	downloader *httputil.Downloader
	baseURL    string
}

type jamendoResponse struct {
	Results []jamendoTrack `json:"results"`
}

type jamendoTrack struct {
	Name       string `json:"name"`
	ArtistName string `json:"artist_name"`
	Audio      string `json:"audio"`
}

func NewJamendo(clientID, tag, language string) *Jamendo {
	return &Jamendo{
		clientID: clientID,
		tag:      tag,
		language: language,
		httpClient: &http.Client{
			Timeout: jamendoTimeout,
		},
		downloader: httputil.NewDownloader(nil),
		baseURL:    jamendoBaseURL,
	}
}

func (j *Jamendo) Name() string { return "jamendo" }

func (j *Jamendo) Acquire(ctx context.Context, cycle int64, dir string) (*Track, error) {
	params := url.Values{}
	params.Set("client_id", j.clientID)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(jamendoLimit))
	params.Set("audioformat", "mp32")
	if j.tag != "" {
		params.Set("tags", j.tag)
	}
	if j.language != "" {
		params.Set("lang", j.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, j.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := j.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search jamendo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("jamendo api error: %s, body: %s", resp.Status, string(body))
	}

	var searchResp jamendoResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	playable := make([]jamendoTrack, 0, len(searchResp.Results))
	for _, track := range searchResp.Results {
		if track.Audio != "" {
			playable = append(playable, track)
		}
	}
	if len(playable) == 0 {
		return nil, fmt.Errorf("no playable jamendo tracks for tag %q", j.tag)
	}

	pick := playable[rand.Intn(len(playable))]
	id := TrackID(pick.ArtistName, pick.Name)
	dest := filepath.Join(dir, id+".mp3")
	if err := j.downloader.Fetch(ctx, pick.Audio, dest); err != nil {
		return nil, fmt.Errorf("download track: %w", err)
	}

	return &Track{
		ID:     id,
		Title:  pick.Name,
		Artist: pick.ArtistName,
		Path:   dest,
	}, nil
}
