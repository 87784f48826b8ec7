package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath      = "config.yaml"
	defaultOutputDir       = "./output"
	defaultWorkDir         = "./work"
	defaultStateDir        = "./state"
	defaultMusicCacheDir   = "./assets/music"
	defaultResolution      = "1080x1920"
	defaultFPS             = 30
	defaultDuration        = 60
	defaultReelDuration    = 30
	defaultLanguage        = "en"
	defaultGeminiModel     = "gemini-2.0-flash"
	defaultGroqModel       = "llama-3.3-70b-versatile"
	defaultElevenLabsModel = "eleven_multilingual_v2"
	defaultStability       = 0.5
	defaultSimilarity      = 0.5
	defaultMusicVolume     = 0.2
	defaultJamendoTag      = "lofi"
	defaultVoiceReelEvery  = 5
	defaultInterval        = time.Hour
	defaultUploadTimeout   = 10 * time.Minute
	defaultBlockCooldown   = 24 * time.Hour
	defaultTrendsRegion    = "US"
	defaultPrivacyStatus   = "private"
	defaultTokenPath       = "./youtube_token.json"
	defaultSessionPath     = "./instagram_session.json"
)

type Config struct {
	GeminiAPIKey         string
	GroqAPIKey           string
	ElevenLabsAPIKey     string
	PexelsAPIKey         string
	SpotifyClientID      string
	SpotifyClientSecret  string
	JamendoClientID      string
	YouTubeClientID      string
	YouTubeClientSecret  string
	YouTubeTokenPath     string
	InstagramSessionPath string
	GCSBucket            string
	GoogleCloudProject   string

	Gemini     GeminiConfig     `yaml:"gemini"`
	Groq       GroqConfig       `yaml:"groq"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Speech     SpeechConfig     `yaml:"speech"`
	Content    ContentConfig    `yaml:"content"`
	Video      VideoConfig      `yaml:"video"`
	Music      MusicConfig      `yaml:"music"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Trends     TrendsConfig     `yaml:"trends"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Instagram  InstagramConfig  `yaml:"instagram"`
	Archive    ArchiveConfig    `yaml:"archive"`
}

type GeminiConfig struct {
	Model    string `yaml:"model"`
	Location string `yaml:"location"`
}

type GroqConfig struct {
	Model string `yaml:"model"`
}

type ElevenLabsConfig struct {
	Model      string   `yaml:"model"`
	Stability  float64  `yaml:"stability"`
	Similarity float64  `yaml:"similarity"`
	Voices     []string `yaml:"voices"`
}

type SpeechConfig struct {
	Accents []string `yaml:"accents"`
}

type ContentConfig struct {
	Language          string `yaml:"language"`
	YouTubeDuration   int    `yaml:"youtube_duration"`
	InstagramDuration int    `yaml:"instagram_duration"`
}

type VideoConfig struct {
	OutputDir  string `yaml:"output_dir"`
	WorkDir    string `yaml:"work_dir"`
	Resolution string `yaml:"resolution"`
	FPS        int    `yaml:"fps"`
}

type MusicConfig struct {
	Online           bool     `yaml:"online"`
	Volume           float64  `yaml:"volume"`
	CacheDir         string   `yaml:"cache_dir"`
	PreferredArtists []string `yaml:"preferred_artists"`
	JamendoTag       string   `yaml:"jamendo_tag"`
	JamendoLanguage  string   `yaml:"jamendo_language"`
}

type PipelineConfig struct {
	StateDir       string        `yaml:"state_dir"`
	Interval       time.Duration `yaml:"interval"`
	VoiceReelEvery int           `yaml:"voice_reel_every"`
	UploadTimeout  time.Duration `yaml:"upload_timeout"`
	BlockCooldown  time.Duration `yaml:"block_cooldown"`
}

type TrendsConfig struct {
	Region     string   `yaml:"region"`
	Categories []string `yaml:"categories"`
}

type YouTubeConfig struct {
	DefaultTags   []string `yaml:"default_tags"`
	PrivacyStatus string   `yaml:"privacy_status"`
}

type InstagramConfig struct {
	Enabled      bool   `yaml:"enabled"`
	FirstComment string `yaml:"first_comment"`
}

type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Prefix  string `yaml:"prefix"`
}

// Load reads .env, config.yaml and applies defaults. Secrets missing from the
// environment are looked up in GCP Secret Manager when GOOGLE_CLOUD_PROJECT is set.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GroqAPIKey:           os.Getenv("GROQ_API_KEY"),
		ElevenLabsAPIKey:     os.Getenv("ELEVENLABS_API_KEY"),
		PexelsAPIKey:         os.Getenv("PEXELS_API_KEY"),
		SpotifyClientID:      os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret:  os.Getenv("SPOTIFY_CLIENT_SECRET"),
		JamendoClientID:      os.Getenv("JAMENDO_CLIENT_ID"),
		YouTubeClientID:      os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret:  os.Getenv("YOUTUBE_CLIENT_SECRET"),
		YouTubeTokenPath:     getEnvOrDefault("YOUTUBE_TOKEN_PATH", defaultTokenPath),
		InstagramSessionPath: getEnvOrDefault("INSTAGRAM_SESSION_PATH", defaultSessionPath),
		GCSBucket:            os.Getenv("GCS_BUCKET"),
		GoogleCloudProject:   os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}

	loadYAMLConfig(cfg)
	applyDefaults(cfg)

	if cfg.GoogleCloudProject != "" {
		if err := fillFromSecretManager(ctx, cfg); err != nil {
			slog.Warn("Secret Manager lookup failed", "error", err)
		}
	}

	return cfg, nil
}

func loadYAMLConfig(cfg *Config) {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		slog.Warn("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

// fillFromSecretManager resolves secrets that are absent from the environment.
// Secret names follow the reelforge-<key> convention in the configured project.
func fillFromSecretManager(ctx context.Context, cfg *Config) error {
	targets := map[string]*string{
		"reelforge-gemini-api-key":     &cfg.GeminiAPIKey,
		"reelforge-groq-api-key":       &cfg.GroqAPIKey,
		"reelforge-elevenlabs-api-key": &cfg.ElevenLabsAPIKey,
		"reelforge-pexels-api-key":     &cfg.PexelsAPIKey,
		"reelforge-spotify-client-id":  &cfg.SpotifyClientID,
		"reelforge-spotify-secret":     &cfg.SpotifyClientSecret,
		"reelforge-jamendo-client-id":  &cfg.JamendoClientID,
		"reelforge-youtube-client-id":  &cfg.YouTubeClientID,
		"reelforge-youtube-secret":     &cfg.YouTubeClientSecret,
	}

	missing := false
	for _, dst := range targets {
		if *dst == "" {
			missing = true
		}
	}
	if !missing {
		return nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	for name, dst := range targets {
		if *dst != "" {
			continue
		}
		resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
			Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", cfg.GoogleCloudProject, name),
		})
		if err != nil {
			slog.Debug("Secret not available", "name", name, "error", err)
			continue
		}
		*dst = string(resp.Payload.Data)
	}

	return nil
}

func applyDefaults(cfg *Config) {
	applyGeminiDefaults(cfg)
	applyGroqDefaults(cfg)
	applyElevenLabsDefaults(cfg)
	applySpeechDefaults(cfg)
	applyContentDefaults(cfg)
	applyVideoDefaults(cfg)
	applyMusicDefaults(cfg)
	applyPipelineDefaults(cfg)
	applyTrendsDefaults(cfg)
	applyYouTubeDefaults(cfg)
}

func applyGeminiDefaults(cfg *Config) {
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = defaultGeminiModel
	}
	if cfg.Gemini.Location == "" {
		cfg.Gemini.Location = "us-central1"
	}
}

func applyGroqDefaults(cfg *Config) {
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
}

func applyElevenLabsDefaults(cfg *Config) {
	if cfg.ElevenLabs.Model == "" {
		cfg.ElevenLabs.Model = defaultElevenLabsModel
	}
	if cfg.ElevenLabs.Stability == 0 {
		cfg.ElevenLabs.Stability = defaultStability
	}
	if cfg.ElevenLabs.Similarity == 0 {
		cfg.ElevenLabs.Similarity = defaultSimilarity
	}
	if len(cfg.ElevenLabs.Voices) == 0 {
		cfg.ElevenLabs.Voices = []string{
			"JBFqnCBsd6RMkjVDRZzb",
			"AZnzlk1XvdvUeBnXmlld",
			"EXAVITQu4vr4xnSDxMaL",
			"TxGEqnHWrfWFTfGW9XjX",
		}
	}
}

func applySpeechDefaults(cfg *Config) {
	if len(cfg.Speech.Accents) == 0 {
		cfg.Speech.Accents = []string{"com", "co.uk", "com.au", "co.in", "ie"}
	}
}

func applyContentDefaults(cfg *Config) {
	if cfg.Content.Language == "" {
		cfg.Content.Language = defaultLanguage
	}
	if cfg.Content.YouTubeDuration == 0 {
		cfg.Content.YouTubeDuration = defaultDuration
	}
	if cfg.Content.InstagramDuration == 0 {
		cfg.Content.InstagramDuration = defaultReelDuration
	}
}

func applyVideoDefaults(cfg *Config) {
	if cfg.Video.OutputDir == "" {
		cfg.Video.OutputDir = defaultOutputDir
	}
	if cfg.Video.WorkDir == "" {
		cfg.Video.WorkDir = defaultWorkDir
	}
	if cfg.Video.Resolution == "" {
		cfg.Video.Resolution = defaultResolution
	}
	if cfg.Video.FPS == 0 {
		cfg.Video.FPS = defaultFPS
	}
}

func applyMusicDefaults(cfg *Config) {
	if cfg.Music.Volume == 0 {
		cfg.Music.Volume = defaultMusicVolume
	}
	if cfg.Music.CacheDir == "" {
		cfg.Music.CacheDir = defaultMusicCacheDir
	}
	if cfg.Music.JamendoTag == "" {
		cfg.Music.JamendoTag = defaultJamendoTag
	}
	if cfg.Music.JamendoLanguage == "" {
		cfg.Music.JamendoLanguage = defaultLanguage
	}
}

func applyPipelineDefaults(cfg *Config) {
	if cfg.Pipeline.StateDir == "" {
		cfg.Pipeline.StateDir = defaultStateDir
	}
	if cfg.Pipeline.Interval == 0 {
		cfg.Pipeline.Interval = defaultInterval
	}
	if cfg.Pipeline.VoiceReelEvery == 0 {
		cfg.Pipeline.VoiceReelEvery = defaultVoiceReelEvery
	}
	if cfg.Pipeline.UploadTimeout == 0 {
		cfg.Pipeline.UploadTimeout = defaultUploadTimeout
	}
	if cfg.Pipeline.BlockCooldown == 0 {
		cfg.Pipeline.BlockCooldown = defaultBlockCooldown
	}
}

func applyTrendsDefaults(cfg *Config) {
	if cfg.Trends.Region == "" {
		cfg.Trends.Region = defaultTrendsRegion
	}
	if len(cfg.Trends.Categories) == 0 {
		cfg.Trends.Categories = []string{"technology", "science", "history", "nature", "finance"}
	}
}

func applyYouTubeDefaults(cfg *Config) {
	if len(cfg.YouTube.DefaultTags) == 0 {
		cfg.YouTube.DefaultTags = []string{"shorts", "ai", "trending"}
	}
	if cfg.YouTube.PrivacyStatus == "" {
		cfg.YouTube.PrivacyStatus = defaultPrivacyStatus
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
