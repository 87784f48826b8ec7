// Package stock finds and downloads portrait stock footage for reel
// backgrounds.
package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"reelforge/pkg/httputil"
)

const (
	pexelsBaseURL  = "https://api.pexels.com/videos/search"
	defaultTimeout = 15 * time.Second
	maxPerPage     = 80
)

// Video is one search hit. ID is the stable identifier tracked by the dedup
// store; URL points at the preferred rendition; Image is the provider's
// poster frame, usable as a still.
type Video struct {
	ID       string
	URL      string
	Image    string
	Duration int // seconds
}

// PexelsClient searches the Pexels video library.
type PexelsClient struct {
	apiKey     string
	httpClient *http.Client
	downloader *httputil.Downloader
	baseURL    string
}

type pexelsResponse struct {
	Videos []pexelsVideo `json:"videos"`
}

type pexelsVideo struct {
	ID       int          `json:"id"`
	Duration int          `json:"duration"`
	Image    string       `json:"image"`
	Files    []pexelsFile `json:"video_files"`
}

type pexelsFile struct {
	Quality string `json:"quality"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Link    string `json:"link"`
}

func NewPexels(apiKey string) *PexelsClient {
	return &PexelsClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		downloader: httputil.NewDownloader(nil),
		baseURL:    pexelsBaseURL,
	}
}

// Search returns portrait videos for query in provider rank order. Hits
// without a usable rendition are dropped.
func (c *PexelsClient) Search(ctx context.Context, query string, count int) ([]Video, error) {
	if count > maxPerPage {
		count = maxPerPage
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", "portrait")
	params.Set("per_page", strconv.Itoa(count))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("pexels api error: %s, body: %s", resp.Status, string(body))
	}

	var searchResp pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	results := make([]Video, 0, len(searchResp.Videos))
	for _, video := range searchResp.Videos {
		link := bestRendition(video.Files)
		if link == "" {
			continue
		}
		results = append(results, Video{
			ID:       strconv.Itoa(video.ID),
			URL:      link,
			Image:    video.Image,
			Duration: video.Duration,
		})
	}

	return results, nil
}

// Download streams the rendition at videoURL to dest.
func (c *PexelsClient) Download(ctx context.Context, videoURL, dest string) error {
	return c.downloader.Fetch(ctx, videoURL, dest)
}

// bestRendition prefers the tallest hd rendition, then the tallest of any
// quality.
func bestRendition(files []pexelsFile) string {
	var best pexelsFile
	for _, file := range files {
		if file.Link == "" {
			continue
		}
		if best.Link == "" {
			best = file
			continue
		}
		bestHD := best.Quality == "hd"
		fileHD := file.Quality == "hd"
		if fileHD != bestHD {
			if fileHD {
				best = file
			}
			continue
		}
		if file.Height > best.Height {
			best = file
		}
	}
	return best.Link
}
