package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"reelforge/internal/archive"
	"reelforge/internal/compose"
	"reelforge/internal/distribution"
	"reelforge/internal/music"
	"reelforge/internal/script"
	"reelforge/internal/speech"
	"reelforge/internal/state"
	"reelforge/internal/stock"
	"reelforge/internal/trends"
	"reelforge/pkg/config"
	"reelforge/pkg/prompts"
)

// BuildService assembles a Service from configuration. Components whose
// credentials are absent are left out and the pipeline degrades: no script
// backends means voice reels fail fast, no uploaders means compose-only
// operation. Stock footage is the one hard requirement.
func BuildService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Service, error) {
	if cfg.PexelsAPIKey == "" {
		return nil, fmt.Errorf("PEXELS_API_KEY is required, no visual source without it")
	}

	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	store, err := state.Open(cfg.Pipeline.StateDir)
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{cfg.Video.WorkDir, cfg.Video.OutputDir, cfg.Music.CacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	var generators []script.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := script.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.Gemini.Model, p)
		if err != nil {
			return nil, err
		}
		generators = append(generators, gemini)
	}
	if cfg.GroqAPIKey != "" {
		groq, err := script.NewGroqGenerator(cfg.GroqAPIKey, cfg.Groq.Model, p)
		if err != nil {
			return nil, err
		}
		generators = append(generators, groq)
	}
	var scripts script.Generator
	if len(generators) > 0 {
		scripts = script.NewChain(logger, generators...)
	}

	var backends []speech.Synthesizer
	if cfg.ElevenLabsAPIKey != "" {
		backends = append(backends, speech.NewElevenLabs(cfg.ElevenLabsAPIKey, speech.ElevenLabsOptions{
			Model:      cfg.ElevenLabs.Model,
			Stability:  cfg.ElevenLabs.Stability,
			Similarity: cfg.ElevenLabs.Similarity,
			Voices:     cfg.ElevenLabs.Voices,
		}))
	}
	backends = append(backends, speech.NewGoogleTranslate(cfg.Content.Language, cfg.Speech.Accents))
	voices := speech.NewChain(logger, backends...)

	var sources []music.Source
	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		sources = append(sources, music.NewSpotify(ctx, cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.Music.PreferredArtists, cfg.Music.CacheDir))
	}
	if cfg.JamendoClientID != "" {
		sources = append(sources, music.NewJamendo(cfg.JamendoClientID, cfg.Music.JamendoTag, cfg.Music.JamendoLanguage))
	}
	sources = append(sources, music.NewLocalCache(cfg.Music.CacheDir))
	musicChain := music.NewChain(logger, sources...)

	var feed *trends.GoogleClient
	if cfg.Trends.Region != "" {
		feed = trends.NewGoogleClient(cfg.Trends.Region)
	}
	topics := trends.NewSource(feed, store, logger, categories(cfg.Trends.Categories))

	engine := compose.NewEngine(compose.Options{
		Resolution:  cfg.Video.Resolution,
		FPS:         cfg.Video.FPS,
		MusicVolume: cfg.Music.Volume,
	})

	var uploaders []distribution.Uploader
	if cfg.YouTubeClientID != "" && cfg.YouTubeClientSecret != "" {
		auth := distribution.NewYouTubeAuth(cfg.YouTubeClientID, cfg.YouTubeClientSecret, cfg.YouTubeTokenPath)
		if auth.Authenticated() {
			uploaders = append(uploaders, distribution.NewYouTube(auth))
		} else {
			logger.Warn("youtube credentials present but no token, run the auth command first")
		}
	}
	if cfg.Instagram.Enabled && cfg.InstagramSessionPath != "" {
		uploaders = append(uploaders, distribution.NewInstagram(cfg.InstagramSessionPath))
	}

	sentinel := distribution.NewBlockSentinel(
		filepath.Join(cfg.Pipeline.StateDir, "upload_block"),
		cfg.Pipeline.BlockCooldown,
	)

	var reels reelArchive
	if cfg.Archive.Enabled && cfg.GCSBucket != "" {
		gcs, err := archive.NewGCSArchive(ctx, cfg.GCSBucket, cfg.Archive.Prefix)
		if err != nil {
			return nil, err
		}
		reels = gcs
	}

	return NewService(ServiceOptions{
		Config:    cfg,
		Store:     store,
		Topics:    topics,
		Scripts:   scripts,
		Voices:    voices,
		Visuals:   stock.NewPexels(cfg.PexelsAPIKey),
		Music:     musicChain,
		Engine:    engine,
		Uploaders: uploaders,
		Sentinel:  sentinel,
		Archive:   reels,
		Logger:    logger,
	}), nil
}

func categories(names []string) []trends.Category {
	result := make([]trends.Category, 0, len(names))
	for _, name := range names {
		result = append(result, trends.Category(name))
	}
	return result
}
