package distribution

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func writeVideoFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reel.mp4")
	if err := os.WriteFile(path, []byte("fake video bytes"), 0644); err != nil {
		t.Fatalf("write video file: %v", err)
	}
	return path
}

func writeToken(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "token.json")
	token := oauth2.Token{
		AccessToken: "access",
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}
	data, _ := json.Marshal(token)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	return path
}

func TestYouTubeUpload(t *testing.T) {
	var gotPrivacyUpdate bool
	var gotComment string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/upload/youtube/v3/videos":
			if err := r.ParseMultipartForm(32 << 20); err != nil {
				t.Fatalf("parse multipart: %v", err)
			}
			var metadata youtubeMetadata
			if err := json.Unmarshal([]byte(r.FormValue("snippet")), &metadata); err != nil {
				t.Fatalf("parse metadata: %v", err)
			}
			if metadata.Status.PrivacyStatus != "private" {
				t.Errorf("initial upload privacy = %q, want private", metadata.Status.PrivacyStatus)
			}
			if metadata.Snippet.Title != "Why flamingos are pink" {
				t.Errorf("title = %q", metadata.Snippet.Title)
			}
			_, _ = w.Write([]byte(`{"id":"vid123"}`))
		case r.URL.Path == "/youtube/v3/videos" && r.Method == http.MethodPut:
			gotPrivacyUpdate = true
			_, _ = w.Write([]byte(`{}`))
		case r.URL.Path == "/youtube/v3/commentThreads":
			var payload struct {
				Snippet struct {
					TopLevelComment struct {
						Snippet struct {
							Text string `json:"textOriginal"`
						} `json:"snippet"`
					} `json:"topLevelComment"`
				} `json:"snippet"`
			}
			_ = json.NewDecoder(r.Body).Decode(&payload)
			gotComment = payload.Snippet.TopLevelComment.Snippet.Text
			_, _ = w.Write([]byte(`{}`))
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	auth := NewYouTubeAuth("id", "secret", writeToken(t))
	client := NewYouTube(auth)
	client.baseURL = server.URL

	resp, err := client.Upload(context.Background(), UploadRequest{
		FilePath:     writeVideoFile(t),
		Title:        "Why flamingos are pink",
		Description:  "Nature short",
		Tags:         []string{"nature", "shorts"},
		Privacy:      "public",
		FirstComment: "Which bird should we cover next?",
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if resp.ID != "vid123" {
		t.Errorf("response ID = %q, want vid123", resp.ID)
	}
	if resp.Platform != "youtube" {
		t.Errorf("response platform = %q, want youtube", resp.Platform)
	}
	if !gotPrivacyUpdate {
		t.Error("public reel was never flipped from private after upload")
	}
	if gotComment != "Which bird should we cover next?" {
		t.Errorf("first comment = %q", gotComment)
	}
}

func TestYouTubeUploadBlockDetection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"errors":[{"reason":"uploadLimitExceeded"}]}}`))
	}))
	defer server.Close()

	auth := NewYouTubeAuth("id", "secret", writeToken(t))
	client := NewYouTube(auth)
	client.baseURL = server.URL

	_, err := client.Upload(context.Background(), UploadRequest{
		FilePath: writeVideoFile(t),
		Title:    "Blocked",
		Privacy:  "public",
	})

	var blockErr *PlatformBlockError
	if !errors.As(err, &blockErr) {
		t.Fatalf("Upload() error = %v, want *PlatformBlockError", err)
	}
	if blockErr.PlatformName != "youtube" {
		t.Errorf("block platform = %q, want youtube", blockErr.PlatformName)
	}
}

func TestYouTubeAuthMissingToken(t *testing.T) {
	auth := NewYouTubeAuth("id", "secret", filepath.Join(t.TempDir(), "absent.json"))
	if auth.Authenticated() {
		t.Error("Authenticated() = true with no token file")
	}
}

func writeSession(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.json")
	session := instagramSession{SessionID: "sess", UserID: "42", CSRFToken: "csrf"}
	data, _ := json.Marshal(session)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write session: %v", err)
	}
	return path
}

func TestInstagramUpload(t *testing.T) {
	var sawUpload, sawConfigure bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("sessionid"); err != nil || cookie.Value != "sess" {
			t.Error("request missing session cookie")
		}
		switch {
		case r.URL.Path == "/media/configure_to_clips/":
			sawConfigure = true
			_, _ = w.Write([]byte(`{"media":{"code":"ABC123","id":"999_42"}}`))
		case r.URL.Path == "/media/ABC123/comment/":
			_, _ = w.Write([]byte(`{}`))
		default:
			sawUpload = true
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer server.Close()

	client := NewInstagram(writeSession(t))
	client.baseURL = server.URL

	resp, err := client.Upload(context.Background(), UploadRequest{
		FilePath:     writeVideoFile(t),
		Title:        "Why flamingos are pink",
		FirstComment: "Follow for more",
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if !sawUpload || !sawConfigure {
		t.Error("upload and configure steps must both run")
	}
	if resp.ID != "ABC123" {
		t.Errorf("response ID = %q, want ABC123", resp.ID)
	}
}

func TestInstagramMissingSessionFile(t *testing.T) {
	client := NewInstagram(filepath.Join(t.TempDir(), "absent.json"))

	_, err := client.Upload(context.Background(), UploadRequest{FilePath: "reel.mp4"})
	if err == nil {
		t.Fatal("Upload() error = nil, want missing session failure")
	}
}

func TestInstagramBlockDetection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"feedback_required"}`))
	}))
	defer server.Close()

	client := NewInstagram(writeSession(t))
	client.baseURL = server.URL

	_, err := client.Upload(context.Background(), UploadRequest{FilePath: writeVideoFile(t)})

	var blockErr *PlatformBlockError
	if !errors.As(err, &blockErr) {
		t.Fatalf("Upload() error = %v, want *PlatformBlockError", err)
	}
	if blockErr.PlatformName != "instagram" {
		t.Errorf("block platform = %q, want instagram", blockErr.PlatformName)
	}
}

func TestBlockSentinelLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload_block")
	sentinel := NewBlockSentinel(path, time.Hour)

	if active, _ := sentinel.Active(); active {
		t.Fatal("Active() = true before Set()")
	}

	if err := sentinel.Set(); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	active, until := sentinel.Active()
	if !active {
		t.Fatal("Active() = false right after Set()")
	}
	if remaining := time.Until(until); remaining < 55*time.Minute || remaining > time.Hour {
		t.Errorf("cooldown ends in %v, want about an hour", remaining)
	}

	if err := sentinel.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if active, _ := sentinel.Active(); active {
		t.Error("Active() = true after Clear()")
	}
}

func TestBlockSentinelExpiresAndSelfClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload_block")
	stale := time.Now().Add(-2 * time.Hour).UTC().Format(time.RFC3339)
	if err := os.WriteFile(path, []byte(stale+"\n"), 0644); err != nil {
		t.Fatalf("write sentinel: %v", err)
	}

	sentinel := NewBlockSentinel(path, time.Hour)
	if active, _ := sentinel.Active(); active {
		t.Error("Active() = true for an expired sentinel")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expired sentinel file was not removed")
	}
}

func TestBlockSentinelClearIdempotent(t *testing.T) {
	sentinel := NewBlockSentinel(filepath.Join(t.TempDir(), "upload_block"), time.Hour)
	if err := sentinel.Clear(); err != nil {
		t.Errorf("Clear() on absent sentinel error = %v", err)
	}
}
