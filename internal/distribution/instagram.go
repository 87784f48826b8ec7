package distribution

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	instagramBaseURL  = "https://i.instagram.com/api/v1"
	instagramPlatform = "instagram"
	instagramTimeout  = 5 * time.Minute
	instagramUA       = "Instagram 275.0.0.27.98 Android"
)

// instagramSession is the persisted login state exported by a separate login
// step. Its presence on disk is a hard precondition for uploading.
type instagramSession struct {
	SessionID string `json:"sessionid"`
	UserID    string `json:"user_id"`
	CSRFToken string `json:"csrftoken"`
}

// Instagram publishes reels through the mobile API using a stored session.
// It never performs a login itself.
type Instagram struct {
	sessionPath string
	session     *instagramSession
	httpClient  *http.Client
	baseURL     string
}

func NewInstagram(sessionPath string) *Instagram {
	return &Instagram{
		sessionPath: sessionPath,
		httpClient: &http.Client{
			Timeout: instagramTimeout,
		},
		baseURL: instagramBaseURL,
	}
}

func (i *Instagram) Platform() string { return instagramPlatform }

func (i *Instagram) loadSession() error {
	if i.session != nil {
		return nil
	}
	data, err := os.ReadFile(i.sessionPath)
	if err != nil {
		return fmt.Errorf("instagram session file %s missing, run a login first: %w", i.sessionPath, err)
	}
	var session instagramSession
	if err := json.Unmarshal(data, &session); err != nil {
		return fmt.Errorf("parse session file: %w", err)
	}
	if session.SessionID == "" {
		return fmt.Errorf("session file %s has no session id", i.sessionPath)
	}
	i.session = &session
	return nil
}

func (i *Instagram) Upload(ctx context.Context, req UploadRequest) (*UploadResponse, error) {
	if err := i.loadSession(); err != nil {
		return nil, err
	}

	uploadID := fmt.Sprintf("%d", time.Now().UnixMilli())
	if err := i.uploadVideo(ctx, uploadID, req.FilePath); err != nil {
		return nil, err
	}

	mediaID, err := i.configureClip(ctx, uploadID, req)
	if err != nil {
		return nil, err
	}

	if req.FirstComment != "" {
		if err := i.postComment(ctx, mediaID, req.FirstComment); err != nil {
			return nil, fmt.Errorf("post first comment on %s: %w", mediaID, err)
		}
	}

	return &UploadResponse{
		ID:       mediaID,
		URL:      fmt.Sprintf("https://www.instagram.com/reel/%s/", mediaID),
		Platform: instagramPlatform,
	}, nil
}

func (i *Instagram) uploadVideo(ctx context.Context, uploadID, filePath string) error {
	videoFile, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("open video file: %w", err)
	}
	defer func() { _ = videoFile.Close() }()

	body := &strings.Builder{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("video", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("create video part: %w", err)
	}
	if _, err := io.Copy(part, videoFile); err != nil {
		return fmt.Errorf("copy video: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	endpoint := fmt.Sprintf("%s/rupload_igvideo/%s", i.baseURL, uploadID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body.String()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	i.setSessionHeaders(httpReq)

	resp, err := i.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("upload video: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return i.apiError("upload", resp)
	}
	return nil
}

func (i *Instagram) configureClip(ctx context.Context, uploadID string, req UploadRequest) (string, error) {
	caption := req.Title
	if req.Description != "" {
		caption = caption + "\n\n" + req.Description
	}

	form := url.Values{}
	form.Set("upload_id", uploadID)
	form.Set("caption", caption)

	endpoint := fmt.Sprintf("%s/media/configure_to_clips/", i.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	i.setSessionHeaders(httpReq)

	resp, err := i.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("configure clip: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", i.apiError("configure", resp)
	}

	var configureResp struct {
		Media struct {
			Code string `json:"code"`
			ID   string `json:"id"`
		} `json:"media"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&configureResp); err != nil {
		return "", fmt.Errorf("parse configure response: %w", err)
	}
	if configureResp.Media.Code != "" {
		return configureResp.Media.Code, nil
	}
	if configureResp.Media.ID == "" {
		return "", fmt.Errorf("configure response missing media id")
	}
	return configureResp.Media.ID, nil
}

func (i *Instagram) postComment(ctx context.Context, mediaID, text string) error {
	form := url.Values{}
	form.Set("comment_text", text)

	endpoint := fmt.Sprintf("%s/media/%s/comment/", i.baseURL, mediaID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	i.setSessionHeaders(httpReq)

	resp, err := i.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("post comment: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return i.apiError("comment", resp)
	}
	return nil
}

func (i *Instagram) setSessionHeaders(req *http.Request) {
	req.Header.Set("User-Agent", instagramUA)
	req.Header.Set("X-CSRFToken", i.session.CSRFToken)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: i.session.SessionID})
	req.AddCookie(&http.Cookie{Name: "csrftoken", Value: i.session.CSRFToken})
	if i.session.UserID != "" {
		req.AddCookie(&http.Cookie{Name: "ds_user_id", Value: i.session.UserID})
	}
}

// apiError maps the spam-throttle response onto the typed block error so the
// orchestrator can raise the sentinel.
func (i *Instagram) apiError(stage string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	text := string(body)
	if strings.Contains(text, "feedback_required") || resp.StatusCode == http.StatusTooManyRequests {
		return &PlatformBlockError{PlatformName: instagramPlatform}
	}
	return fmt.Errorf("instagram %s failed: %s, body: %s", stage, resp.Status, text)
}
