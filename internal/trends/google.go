package trends

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	googleTrendsURL = "https://trends.google.com/trending/rss"
	googleTimeout   = 15 * time.Second
)

// GoogleClient reads the daily trending searches RSS feed for a region.
type GoogleClient struct {
	region     string
	httpClient *http.Client
	baseURL    string
}

type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title string `xml:"title"`
}

func NewGoogleClient(region string) *GoogleClient {
	return &GoogleClient{
		region: region,
		httpClient: &http.Client{
			Timeout: googleTimeout,
		},
		baseURL: googleTrendsURL,
	}
}

// Trending returns the feed's topic titles in rank order, tagged with the
// requested category.
func (g *GoogleClient) Trending(ctx context.Context, category Category) ([]Topic, error) {
	params := url.Values{}
	params.Set("geo", g.region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trends feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("trends feed error: %s, body: %s", resp.Status, string(body))
	}

	var feed rssFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parse trends feed: %w", err)
	}

	topics := make([]Topic, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if item.Title == "" {
			continue
		}
		topics = append(topics, Topic{
			Title:    item.Title,
			Category: category,
		})
	}

	if len(topics) == 0 {
		return nil, fmt.Errorf("trends feed returned no topics")
	}
	return topics, nil
}
