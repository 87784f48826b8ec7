package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Reelforge",
	Long:  `Configure API keys, create directories, and set up the environment for Reelforge.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("🎬 Reelforge Setup"))

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Checking ffmpeg", checkFfmpeg},
		{"Creating directories", createDirectories},
		{"Configuring environment", configureEnv},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return nil
}

func checkFfmpeg() error {
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if !commandExists(tool) {
			return fmt.Errorf("%s not found - install it from https://ffmpeg.org/download.html", tool)
		}
	}
	fmt.Println(successStyle.Render("✓ ffmpeg and ffprobe found"))
	return nil
}

func createDirectories() error {
	dirs := []string{"output", "work", "music_cache", "state"}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	fmt.Println(successStyle.Render("✓ Created directories"))
	return nil
}

func configureEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return nil
		}
	}

	env := make(map[string]string)

	if err := configureRequiredKeys(env); err != nil {
		return err
	}

	if err := configureScriptKeys(env); err != nil {
		return err
	}

	if err := configureMusicKeys(env); err != nil {
		return err
	}

	if err := configureYouTube(env); err != nil {
		return err
	}

	if err := configureGCP(env); err != nil {
		return err
	}

	return writeEnvFile(env)
}

func configureRequiredKeys(env map[string]string) error {
	var pexelsKey string

	if err := huh.NewInput().
		Title("Pexels API Key").
		Description("https://www.pexels.com/api/ - stock footage, required").
		Value(&pexelsKey).
		Validate(required("Pexels API Key")).
		Run(); err != nil {
		return err
	}

	env["PEXELS_API_KEY"] = strings.TrimSpace(pexelsKey)
	return nil
}

func configureScriptKeys(env map[string]string) error {
	var geminiKey, groqKey, elevenKey string

	fmt.Println(infoStyle.Render(`
Voice reels need at least one LLM key. Without any, only music reels
are produced. ElevenLabs is optional; Google Translate voices are the
free fallback.`))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Gemini API Key").
				Description("https://aistudio.google.com/apikey (optional)").
				Value(&geminiKey),
			huh.NewInput().
				Title("Groq API Key").
				Description("https://console.groq.com/keys (optional)").
				Value(&groqKey),
			huh.NewInput().
				Title("ElevenLabs API Key").
				Description("https://elevenlabs.io/app/settings/api-keys (optional)").
				Value(&elevenKey),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	setIfPresent(env, "GEMINI_API_KEY", geminiKey)
	setIfPresent(env, "GROQ_API_KEY", groqKey)
	setIfPresent(env, "ELEVENLABS_API_KEY", elevenKey)
	return nil
}

func configureMusicKeys(env map[string]string) error {
	var setup bool
	if err := huh.NewConfirm().
		Title("Setup online music sources?").
		Description("Spotify previews and Jamendo tracks (optional)").
		Value(&setup).
		Run(); err != nil {
		return err
	}

	if !setup {
		return nil
	}

	var spotifyID, spotifySecret, jamendoID string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Spotify Client ID").
				Value(&spotifyID),
			huh.NewInput().
				Title("Spotify Client Secret").
				EchoMode(huh.EchoModePassword).
				Value(&spotifySecret),
			huh.NewInput().
				Title("Jamendo Client ID").
				Description("https://devportal.jamendo.com/").
				Value(&jamendoID),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	setIfPresent(env, "SPOTIFY_CLIENT_ID", spotifyID)
	setIfPresent(env, "SPOTIFY_CLIENT_SECRET", spotifySecret)
	setIfPresent(env, "JAMENDO_CLIENT_ID", jamendoID)
	return nil
}

func configureYouTube(env map[string]string) error {
	var setup bool
	if err := huh.NewConfirm().
		Title("Setup YouTube OAuth?").
		Description("Required for uploading reels to YouTube").
		Value(&setup).
		Run(); err != nil || !setup {
		return err
	}

	fmt.Println(infoStyle.Render(`
To create OAuth credentials:
1. Go to https://console.cloud.google.com/apis/credentials
2. Click "Create Credentials" → "OAuth client ID"
3. Choose "Desktop app" as application type
4. Copy the Client ID and Client Secret
`))

	var clientID, clientSecret string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("YouTube Client ID").
				Value(&clientID),
			huh.NewInput().
				Title("YouTube Client Secret").
				EchoMode(huh.EchoModePassword).
				Value(&clientSecret),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)

	setIfPresent(env, "YOUTUBE_CLIENT_ID", clientID)
	setIfPresent(env, "YOUTUBE_CLIENT_SECRET", clientSecret)

	if clientID != "" && clientSecret != "" {
		var authenticate bool
		if err := huh.NewConfirm().
			Title("Authenticate with YouTube now?").
			Description("Opens browser to complete OAuth flow").
			Value(&authenticate).
			Run(); err != nil {
			return err
		}

		if authenticate {
			if err := runYouTubeAuth(clientID, clientSecret, youtubeTokenPath); err != nil {
				fmt.Println(warnStyle.Render(fmt.Sprintf("OAuth flow failed: %v", err)))
				fmt.Println(infoStyle.Render("You can retry later with: reelforge auth youtube"))
			}
		}
	}

	return nil
}

func configureGCP(env map[string]string) error {
	var setup bool
	if err := huh.NewConfirm().
		Title("Setup Google Cloud?").
		Description("For Secret Manager keys and GCS reel archiving (optional)").
		Value(&setup).
		Run(); err != nil || !setup {
		return err
	}

	if !commandExists("gcloud") {
		fmt.Println(warnStyle.Render("gcloud CLI not found - install from https://cloud.google.com/sdk/docs/install"))
		return nil
	}

	project := getActiveProject()
	if project == "" {
		if err := huh.NewInput().
			Title("Google Cloud Project ID").
			Value(&project).
			Run(); err != nil {
			return err
		}
		project = strings.TrimSpace(project)
	}

	if project == "" {
		return nil
	}

	env["GOOGLE_CLOUD_PROJECT"] = project

	if err := enableGCPAPIs(project); err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("API enablement failed: %v", err)))
	}

	var bucket string
	if err := huh.NewInput().
		Title("GCS bucket for reel archive").
		Description("Leave empty to skip archiving").
		Value(&bucket).
		Run(); err != nil {
		return err
	}

	setIfPresent(env, "GCS_BUCKET", bucket)
	return nil
}

func getActiveProject() string {
	out, err := exec.Command("gcloud", "config", "get-value", "project").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func enableGCPAPIs(project string) error {
	apis := []string{
		"youtube.googleapis.com",
		"secretmanager.googleapis.com",
		"storage.googleapis.com",
	}

	return runWithSpinner("Enabling APIs", func() error {
		args := append([]string{"services", "enable"}, apis...)
		args = append(args, "--project", project)
		return runSetupCmd("gcloud", args...)
	})
}

func writeEnvFile(env map[string]string) error {
	f, err := os.Create(".env")
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	order := []string{
		"GOOGLE_CLOUD_PROJECT",
		"PEXELS_API_KEY",
		"GEMINI_API_KEY",
		"GROQ_API_KEY",
		"ELEVENLABS_API_KEY",
		"SPOTIFY_CLIENT_ID",
		"SPOTIFY_CLIENT_SECRET",
		"JAMENDO_CLIENT_ID",
		"YOUTUBE_CLIENT_ID",
		"YOUTUBE_CLIENT_SECRET",
		"GCS_BUCKET",
	}

	for _, key := range order {
		if val, ok := env[key]; ok && val != "" {
			_, _ = fmt.Fprintf(f, "%s=%s\n", key, val)
		}
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	printNextSteps()
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Seed music_cache/ with a few mp3 files for the offline fallback")
	fmt.Println("  2. Review config.yaml for regions, categories, and durations")
	fmt.Println("  3. Run: reelforge once")
}

func setIfPresent(env map[string]string, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		env[key] = v
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runSetupCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %s", err, stderr.String())
	}
	return nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}

const youtubeTokenPath = "./youtube_token.json"
