package cmd

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"reelforge/internal/distribution"
	"reelforge/pkg/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"
)

var (
	authInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	authSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	authErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with external services",
	Long:  `Authenticate with YouTube or check which services are configured.`,
}

var authYouTubeCmd = &cobra.Command{
	Use:   "youtube",
	Short: "Authenticate with YouTube (OAuth)",
	Long:  `Complete the YouTube OAuth flow using credentials from .env.`,
	RunE:  runAuthYouTube,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check authentication status for all services",
	Long:  `Verify which services are configured and authenticated.`,
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authYouTubeCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println(authInfoStyle.Render("\nService Authentication Status:\n"))

	if cfg.PexelsAPIKey != "" {
		fmt.Println(authSuccessStyle.Render("✓ Pexels: API key configured"))
	} else {
		fmt.Println(authErrorStyle.Render("✗ Pexels: missing PEXELS_API_KEY (required)"))
	}

	switch {
	case cfg.GeminiAPIKey != "" && cfg.GroqAPIKey != "":
		fmt.Println(authSuccessStyle.Render("✓ Script generation: Gemini + Groq fallback configured"))
	case cfg.GeminiAPIKey != "":
		fmt.Println(authSuccessStyle.Render("✓ Script generation: Gemini configured"))
	case cfg.GroqAPIKey != "":
		fmt.Println(authSuccessStyle.Render("✓ Script generation: Groq configured"))
	default:
		fmt.Println(authInfoStyle.Render("○ Script generation: no LLM key, voice reels disabled"))
	}

	if cfg.ElevenLabsAPIKey != "" {
		fmt.Println(authSuccessStyle.Render("✓ ElevenLabs: API key configured"))
	} else {
		fmt.Println(authInfoStyle.Render("○ ElevenLabs: not configured, Google Translate voices only"))
	}

	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		fmt.Println(authSuccessStyle.Render("✓ Spotify: client credentials configured"))
	} else {
		fmt.Println(authInfoStyle.Render("○ Spotify: not configured (optional)"))
	}

	if cfg.JamendoClientID != "" {
		fmt.Println(authSuccessStyle.Render("✓ Jamendo: client ID configured"))
	} else {
		fmt.Println(authInfoStyle.Render("○ Jamendo: not configured (optional)"))
	}

	if cfg.YouTubeClientID != "" && cfg.YouTubeClientSecret != "" {
		auth := distribution.NewYouTubeAuth(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTubeTokenPath)
		if auth.Authenticated() {
			fmt.Println(authSuccessStyle.Render("✓ YouTube: authenticated"))
		} else {
			fmt.Println(authErrorStyle.Render("✗ YouTube: credentials set, but not authenticated"))
			fmt.Println(authInfoStyle.Render("  Run: reelforge auth youtube"))
		}
	} else {
		fmt.Println(authInfoStyle.Render("○ YouTube: missing YOUTUBE_CLIENT_ID or YOUTUBE_CLIENT_SECRET"))
	}

	if cfg.Instagram.Enabled {
		if _, err := os.Stat(cfg.InstagramSessionPath); err == nil {
			fmt.Println(authSuccessStyle.Render("✓ Instagram: session file present"))
		} else {
			fmt.Println(authErrorStyle.Render("✗ Instagram: enabled, but session file missing"))
			fmt.Println(authInfoStyle.Render("  Export a browser session to: " + cfg.InstagramSessionPath))
		}
	} else {
		fmt.Println(authInfoStyle.Render("○ Instagram: not enabled"))
	}

	if cfg.Archive.Enabled && cfg.GCSBucket != "" {
		fmt.Println(authSuccessStyle.Render("✓ Archive: GCS bucket " + cfg.GCSBucket))
	} else {
		fmt.Println(authInfoStyle.Render("○ Archive: not configured (optional)"))
	}

	fmt.Println()
	return nil
}

func runAuthYouTube(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.YouTubeClientID == "" || cfg.YouTubeClientSecret == "" {
		return fmt.Errorf("YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET must be set in .env")
	}

	return runYouTubeAuth(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTubeTokenPath)
}

func runYouTubeAuth(clientID, clientSecret, tokenPath string) error {
	auth := distribution.NewYouTubeAuth(clientID, clientSecret, tokenPath)

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	listener, err := net.Listen("tcp", ":8080")
	if err != nil {
		return fmt.Errorf("failed to start callback server: %w", err)
	}

	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
	}

	server.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(w, r)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no code in callback")
			_, _ = fmt.Fprintf(w, "<html><body><h1>Error</h1><p>No authorization code received.</p></body></html>")
			return
		}

		codeChan <- code
		_, _ = fmt.Fprintf(w, "<html><body><h1>Success!</h1><p>You can close this window and return to the terminal.</p></body></html>")
	})

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}()

	authURL := auth.AuthURL()
	fmt.Println(authInfoStyle.Render("\nOpening browser for YouTube authentication..."))
	fmt.Println(authInfoStyle.Render("If browser doesn't open, visit:\n" + authURL))

	_ = browser.OpenURL(authURL)

	fmt.Println(authInfoStyle.Render("\nWaiting for authentication..."))

	select {
	case code := <-codeChan:
		if err := auth.Exchange(context.Background(), code); err != nil {
			return fmt.Errorf("failed to exchange code: %w", err)
		}

		fmt.Println(authSuccessStyle.Render("✓ YouTube authentication complete"))
		fmt.Println(authSuccessStyle.Render("  Token saved to: " + tokenPath))
		return nil

	case err := <-errChan:
		return err

	case <-time.After(5 * time.Minute):
		return fmt.Errorf("authentication timed out")
	}
}
