package music

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"reelforge/pkg/httputil"
)

const (
	spotifyTokenURL  = "https://accounts.spotify.com/api/token"
	spotifySearchURL = "https://api.spotify.com/v1/search"
	spotifyTimeout   = 15 * time.Second
	searchLimit      = 50
)

// Spotify pulls 30-second preview clips for tracks by a rotating list of
// preferred artists. Downloads land in cacheDir so the local fallback source
// grows over time.
type Spotify struct {
	httpClient *http.Client
	downloader *httputil.Downloader
	artists    []string
	cacheDir   string
	searchURL  string
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyTrack struct {
	Name       string `json:"name"`
	PreviewURL string `json:"preview_url"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
}

func NewSpotify(ctx context.Context, clientID, clientSecret string, artists []string, cacheDir string) *Spotify {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	client := config.Client(ctx)
	client.Timeout = spotifyTimeout

	return &Spotify{
		httpClient: client,
		downloader: httputil.NewDownloader(nil),
		artists:    artists,
		cacheDir:   cacheDir,
		searchURL:  spotifySearchURL,
	}
}

func (s *Spotify) Name() string { return "spotify" }

// Acquire searches the cycle's preferred artist and downloads a random track
// that has a preview clip. Already cached tracks are served from disk.
func (s *Spotify) Acquire(ctx context.Context, cycle int64, dir string) (*Track, error) {
	if len(s.artists) == 0 {
		return nil, fmt.Errorf("no preferred artists configured")
	}
	artist := s.artists[int(cycle)%len(s.artists)]

	tracks, err := s.search(ctx, artist)
	if err != nil {
		return nil, err
	}

	playable := make([]spotifyTrack, 0, len(tracks))
	for _, track := range tracks {
		if track.PreviewURL != "" {
			playable = append(playable, track)
		}
	}
	if len(playable) == 0 {
		return nil, fmt.Errorf("no playable tracks for artist %q", artist)
	}

	pick := playable[rand.Intn(len(playable))]
	artistName := artist
	if len(pick.Artists) > 0 {
		artistName = pick.Artists[0].Name
	}

	id := TrackID(artistName, pick.Name)
	cached := filepath.Join(s.cacheDir, id+".mp3")
	if _, err := os.Stat(cached); err != nil {
		if err := s.downloader.Fetch(ctx, pick.PreviewURL, cached); err != nil {
			return nil, fmt.Errorf("download preview: %w", err)
		}
	}

	return &Track{
		ID:     id,
		Title:  pick.Name,
		Artist: artistName,
		Path:   cached,
	}, nil
}

func (s *Spotify) search(ctx context.Context, artist string) ([]spotifyTrack, error) {
	params := url.Values{}
	params.Set("q", "artist:"+artist)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(searchLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search spotify: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("spotify api error: %s, body: %s", resp.Status, string(body))
	}

	var searchResp spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return searchResp.Tracks.Items, nil
}
