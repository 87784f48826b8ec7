package distribution

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	youtubeUploadURL   = "https://www.googleapis.com/upload/youtube/v3/videos"
	youtubeVideosURL   = "https://www.googleapis.com/youtube/v3/videos"
	youtubeCommentsURL = "https://www.googleapis.com/youtube/v3/commentThreads"
	youtubeCategoryID  = "22" // People & Blogs
	youtubePlatform    = "youtube"

	privacyPrivate = "private"
)

var youtubeScopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/youtube",
	"https://www.googleapis.com/auth/youtube.force-ssl",
}

// YouTubeAuth owns the OAuth flow and the on-disk refresh token.
type YouTubeAuth struct {
	config    *oauth2.Config
	token     *oauth2.Token
	tokenPath string
}

func NewYouTubeAuth(clientID, clientSecret, tokenPath string) *YouTubeAuth {
	return &YouTubeAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       youtubeScopes,
			RedirectURL:  "http://localhost:8080/callback",
		},
		tokenPath: tokenPath,
	}
}

func (a *YouTubeAuth) AuthURL() string {
	return a.config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

func (a *YouTubeAuth) Exchange(ctx context.Context, code string) error {
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	a.token = token
	return a.saveToken()
}

func (a *YouTubeAuth) loadToken() error {
	data, err := os.ReadFile(a.tokenPath)
	if err != nil {
		return fmt.Errorf("read token file: %w", err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return fmt.Errorf("parse token: %w", err)
	}
	a.token = &token
	return nil
}

func (a *YouTubeAuth) saveToken() error {
	data, err := json.MarshalIndent(a.token, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(a.tokenPath, data, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (a *YouTubeAuth) Client(ctx context.Context) (*http.Client, error) {
	if a.token == nil {
		if err := a.loadToken(); err != nil {
			return nil, err
		}
	}
	return a.config.Client(ctx, a.token), nil
}

func (a *YouTubeAuth) Authenticated() bool {
	if a.token == nil {
		if err := a.loadToken(); err != nil {
			return false
		}
	}
	return a.token != nil && (a.token.Valid() || a.token.RefreshToken != "")
}

// YouTube uploads reels through the Data API. Reels go up private first and
// flip to the requested privacy only after the upload is confirmed, so a
// half-failed publish never leaves a public artifact.
type YouTube struct {
	auth    *YouTubeAuth
	baseURL string // overrides all endpoint hosts when set, for tests
}

type youtubeUploadResponse struct {
	ID string `json:"id"`
}

type youtubeSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	CategoryID  string   `json:"categoryId"`
}

type youtubeStatus struct {
	PrivacyStatus string `json:"privacyStatus"`
}

type youtubeMetadata struct {
	Snippet youtubeSnippet `json:"snippet"`
	Status  youtubeStatus  `json:"status"`
}

func NewYouTube(auth *YouTubeAuth) *YouTube {
	return &YouTube{auth: auth}
}

func (y *YouTube) Platform() string { return youtubePlatform }

func (y *YouTube) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	httpClient, err := y.auth.Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth client: %w", err)
	}

	videoID, err := y.upload(ctx, httpClient, req)
	if err != nil {
		return nil, err
	}

	if req.Privacy != "" && req.Privacy != privacyPrivate {
		if err := y.SetPrivacy(ctx, videoID, req.Privacy); err != nil {
			return nil, fmt.Errorf("publish uploaded video %s: %w", videoID, err)
		}
	}
	if req.FirstComment != "" {
		if err := y.postComment(ctx, httpClient, videoID, req.FirstComment); err != nil {
			return nil, fmt.Errorf("post first comment on %s: %w", videoID, err)
		}
	}

	return &UploadResponse{
		ID:       videoID,
		URL:      fmt.Sprintf("https://youtube.com/watch?v=%s", videoID),
		Platform: youtubePlatform,
	}, nil
}

func (y *YouTube) upload(ctx context.Context, httpClient *http.Client, req UploadRequest) (string, error) {
	metadata, err := json.Marshal(youtubeMetadata{
		Snippet: youtubeSnippet{
			Title:       req.Title,
			Description: req.Description,
			Tags:        req.Tags,
			CategoryID:  youtubeCategoryID,
		},
		Status: youtubeStatus{PrivacyStatus: privacyPrivate},
	})
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	videoFile, err := os.Open(req.FilePath)
	if err != nil {
		return "", fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = videoFile.Close() }()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	metadataPart, err := writer.CreateFormField("snippet")
	if err != nil {
		return "", fmt.Errorf("create metadata part: %w", err)
	}
	if _, err := metadataPart.Write(metadata); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}

	videoPart, err := writer.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return "", fmt.Errorf("create video part: %w", err)
	}
	if _, err := io.Copy(videoPart, videoFile); err != nil {
		return "", fmt.Errorf("copy video: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	url := fmt.Sprintf("%s?uploadType=multipart&part=snippet,status", y.endpoint(youtubeUploadURL))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("upload video: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if isUploadBlock(resp.StatusCode, respBody) {
			return "", &PlatformBlockError{PlatformName: youtubePlatform}
		}
		return "", fmt.Errorf("upload failed: %s", string(respBody))
	}

	var uploadResp youtubeUploadResponse
	if err := json.Unmarshal(respBody, &uploadResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if uploadResp.ID == "" {
		return "", fmt.Errorf("upload response missing video id")
	}
	return uploadResp.ID, nil
}

func (y *YouTube) SetPrivacy(ctx context.Context, videoID, privacy string) error {
	httpClient, err := y.auth.Client(ctx)
	if err != nil {
		return fmt.Errorf("auth client: %w", err)
	}

	payload, err := json.Marshal(map[string]any{
		"id":     videoID,
		"status": map[string]string{"privacyStatus": privacy},
	})
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	url := fmt.Sprintf("%s?part=status", y.endpoint(youtubeVideosURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("update failed: %s", string(respBody))
	}
	return nil
}

func (y *YouTube) postComment(ctx context.Context, httpClient *http.Client, videoID, text string) error {
	payload, err := json.Marshal(map[string]any{
		"snippet": map[string]any{
			"videoId": videoID,
			"topLevelComment": map[string]any{
				"snippet": map[string]string{"textOriginal": text},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}

	url := fmt.Sprintf("%s?part=snippet", y.endpoint(youtubeCommentsURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post comment: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("comment failed: %s", string(respBody))
	}
	return nil
}

func (y *YouTube) endpoint(canonical string) string {
	if y.baseURL == "" {
		return canonical
	}
	for _, host := range []string{"https://www.googleapis.com"} {
		if strings.HasPrefix(canonical, host) {
			return y.baseURL + strings.TrimPrefix(canonical, host)
		}
	}
	return canonical
}

func isUploadBlock(status int, body []byte) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	text := string(body)
	return strings.Contains(text, "uploadLimitExceeded") || strings.Contains(text, "quotaExceeded")
}
